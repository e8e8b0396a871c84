package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"webchat-api/internal/idgen"
	"webchat-api/internal/models"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect creates the connection pool and verifies the database is
// reachable.
func Connect(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *PostgresStore) CreateUser(ctx context.Context, u models.User, passwordHash string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, age, sex, country, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`,
		u.ID, u.Username, u.Age, u.Sex, u.Country, passwordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindUser(ctx context.Context, id string) (models.User, bool, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, age, sex, country, created_at FROM users WHERE id = $1`, id))
}

func (s *PostgresStore) FindUserByName(ctx context.Context, username string) (models.User, bool, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, age, sex, country, created_at FROM users WHERE username = $1`, username))
}

func (s *PostgresStore) scanUser(row pgx.Row) (models.User, bool, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Age, &u.Sex, &u.Country, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("scan user: %w", err)
	}
	return u, true, nil
}

func (s *PostgresStore) FindPasswordHash(ctx context.Context, username string) (string, bool, error) {
	var hash *string
	err := s.pool.QueryRow(ctx,
		`SELECT password_hash FROM users WHERE username = $1`, username).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select password hash: %w", err)
	}
	if hash == nil {
		return "", true, nil
	}
	return *hash, true, nil
}

func (s *PostgresStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, created_at FROM rooms ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select rooms: %w", err)
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		var r models.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (s *PostgresStore) FindRoomByName(ctx context.Context, name string) (models.Room, bool, error) {
	var r models.Room
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, created_at FROM rooms WHERE name = $1`, name).
		Scan(&r.ID, &r.Name, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Room{}, false, nil
	}
	if err != nil {
		return models.Room{}, false, fmt.Errorf("select room: %w", err)
	}
	return r, true, nil
}

func (s *PostgresStore) CreateRoom(ctx context.Context, room models.Room) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rooms (id, name, created_at) VALUES ($1, $2, $3)`,
		room.ID, room.Name, room.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	return nil
}

func (s *PostgresStore) RoomExists(ctx context.Context, roomID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM rooms WHERE id = $1)`, roomID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("room exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) SaveRoomMessage(ctx context.Context, senderID, roomID, content, attachmentURL string) (models.Message, error) {
	m := models.Message{
		ID:            idgen.NewULID(),
		Content:       content,
		UserID:        senderID,
		RoomID:        roomID,
		AttachmentURL: attachmentURL,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (id, room_id, user_id, content, attachment_url)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 RETURNING created_at, (SELECT username FROM users WHERE id = $3)`,
		m.ID, roomID, senderID, content, attachmentURL).
		Scan(&m.CreatedAt, &m.Username)
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) ListRoomMessages(ctx context.Context, roomID string, before time.Time, limit int) ([]models.Message, error) {
	q := `SELECT m.id, m.content, m.user_id, u.username, m.room_id,
	             COALESCE(m.attachment_url, ''), m.created_at
	      FROM messages m JOIN users u ON u.id = m.user_id
	      WHERE m.room_id = $1`
	args := []any{roomID}
	if !before.IsZero() {
		q += ` AND m.created_at < $2`
		args = append(args, before)
	}
	q += fmt.Sprintf(` ORDER BY m.created_at DESC LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Content, &m.UserID, &m.Username, &m.RoomID, &m.AttachmentURL, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query is newest-first for the index; clients want oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

const dmColumns = `d.id, d.content, d.sender_id, su.username, d.receiver_id, ru.username,
	COALESCE(d.attachment_url, ''), d.read, d.created_at`

func (s *PostgresStore) SaveDirectMessage(ctx context.Context, senderID, receiverID, content, attachmentURL string) (models.DirectMessage, error) {
	m := models.DirectMessage{
		ID:            idgen.NewULID(),
		Content:       content,
		SenderID:      senderID,
		ReceiverID:    receiverID,
		AttachmentURL: attachmentURL,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO direct_messages (id, sender_id, receiver_id, content, attachment_url)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 RETURNING created_at,
		   (SELECT username FROM users WHERE id = $2),
		   (SELECT username FROM users WHERE id = $3)`,
		m.ID, senderID, receiverID, content, attachmentURL).
		Scan(&m.CreatedAt, &m.SenderName, &m.ReceiverName)
	if err != nil {
		return models.DirectMessage{}, fmt.Errorf("insert direct message: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) ListDirectMessages(ctx context.Context, userID string, limit int) ([]models.DirectMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+dmColumns+`
		 FROM direct_messages d
		 JOIN users su ON su.id = d.sender_id
		 JOIN users ru ON ru.id = d.receiver_id
		 WHERE d.sender_id = $1 OR d.receiver_id = $1
		 ORDER BY d.created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select direct messages: %w", err)
	}
	defer rows.Close()
	return scanDirectMessages(rows)
}

func (s *PostgresStore) ListConversation(ctx context.Context, userID, otherID string, limit int) ([]models.DirectMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT * FROM (
		   SELECT `+dmColumns+`
		   FROM direct_messages d
		   JOIN users su ON su.id = d.sender_id
		   JOIN users ru ON ru.id = d.receiver_id
		   WHERE (d.sender_id = $1 AND d.receiver_id = $2)
		      OR (d.sender_id = $2 AND d.receiver_id = $1)
		   ORDER BY d.created_at DESC LIMIT $3
		 ) latest ORDER BY created_at ASC`,
		userID, otherID, limit)
	if err != nil {
		return nil, fmt.Errorf("select conversation: %w", err)
	}
	defer rows.Close()
	return scanDirectMessages(rows)
}

func scanDirectMessages(rows pgx.Rows) ([]models.DirectMessage, error) {
	msgs := []models.DirectMessage{}
	for rows.Next() {
		var m models.DirectMessage
		if err := rows.Scan(&m.ID, &m.Content, &m.SenderID, &m.SenderName,
			&m.ReceiverID, &m.ReceiverName, &m.AttachmentURL, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan direct message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *PostgresStore) MarkConversationRead(ctx context.Context, readerID, senderID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE direct_messages SET read = TRUE
		 WHERE receiver_id = $1 AND sender_id = $2 AND read = FALSE`,
		readerID, senderID)
	if err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}
	return nil
}

func (s *PostgresStore) BlockUser(ctx context.Context, blockerID, blockedID string) error {
	// Idempotent: re-blocking is a no-op.
	_, err := s.pool.Exec(ctx,
		`INSERT INTO blocked_users (blocker_id, blocked_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("block user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UnblockUser(ctx context.Context, blockerID, blockedID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM blocked_users WHERE blocker_id = $1 AND blocked_id = $2`,
		blockerID, blockedID)
	if err != nil {
		return fmt.Errorf("unblock user: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListBlockedUsers(ctx context.Context, blockerID string) ([]models.PublicUser, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT u.id, u.username, u.age, u.sex
		 FROM blocked_users b JOIN users u ON u.id = b.blocked_id
		 WHERE b.blocker_id = $1`, blockerID)
	if err != nil {
		return nil, fmt.Errorf("select blocked users: %w", err)
	}
	defer rows.Close()

	users := []models.PublicUser{}
	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Age, &u.Sex); err != nil {
			return nil, fmt.Errorf("scan blocked user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PostgresStore) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var blocked bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM blocked_users WHERE blocker_id = $1 AND blocked_id = $2)`,
		blockerID, blockedID).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("is blocked: %w", err)
	}
	return blocked, nil
}
