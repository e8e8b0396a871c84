package handlers

import "testing"

func TestValidateUsername(t *testing.T) {
	valid := []string{"abc", "alice_99", "user-name", "A1234567890123456789"}
	for _, u := range valid {
		if err := validateUsername(u); err != nil {
			t.Errorf("validateUsername(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{"", "ab", "has space", "tooooooooooooooooolong", "émile", "a<b>c"}
	for _, u := range invalid {
		if err := validateUsername(u); err == nil {
			t.Errorf("validateUsername(%q) = nil, want error", u)
		}
	}
}

func TestValidateRoomName(t *testing.T) {
	valid := []string{"general", "General Chat 2", "room_1-a"}
	for _, n := range valid {
		if err := validateRoomName(n); err != nil {
			t.Errorf("validateRoomName(%q) = %v, want nil", n, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		"<script>",
		"drop table users",
		"a UNION b",
		"name; name",
		"123456789012345678901234567890123456789012345678901", // 51 chars
	}
	for _, n := range invalid {
		if err := validateRoomName(n); err == nil {
			t.Errorf("validateRoomName(%q) = nil, want error", n)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	valid := []string{"Abcdef1!", "Str0ng-passphrase", "xY9#aaaa"}
	for _, p := range valid {
		if err := validatePassword(p); err != nil {
			t.Errorf("validatePassword(%q) = %v, want nil", p, err)
		}
	}

	invalid := []string{
		"Ab1!",        // too short
		"abcdefg1!",   // no upper
		"ABCDEFG1!",   // no lower
		"Abcdefgh!",   // no digit
		"Abcdefgh1",   // no symbol
	}
	for _, p := range invalid {
		if err := validatePassword(p); err == nil {
			t.Errorf("validatePassword(%q) = nil, want error", p)
		}
	}
}

func TestValidateAgeAndSex(t *testing.T) {
	if err := validateAge(13); err != nil {
		t.Errorf("age 13 rejected: %v", err)
	}
	if err := validateAge(12); err == nil {
		t.Error("age 12 accepted")
	}
	if err := validateAge(121); err == nil {
		t.Error("age 121 accepted")
	}
	if err := validateSex("F"); err != nil {
		t.Errorf("sex F rejected: %v", err)
	}
	if err := validateSex("x"); err == nil {
		t.Error("sex x accepted")
	}
}
