package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecodeInboundFrame(t *testing.T) {
	raw := []byte(`{"type":"SEND_MESSAGE","payload":{"roomId":"r1","content":"hi"}}`)

	f, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if f.Type != SendMsg {
		t.Errorf("Type = %q, want %q", f.Type, SendMsg)
	}

	var p SendMessagePayload
	if err := json.Unmarshal(f.Payload, &p); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if p.RoomID != "r1" || p.Content != "hi" {
		t.Errorf("payload = %+v, want roomId=r1 content=hi", p)
	}
}

func TestDecodeRejectsMissingType(t *testing.T) {
	if _, err := Decode([]byte(`{"payload":{}}`)); err == nil {
		t.Error("Decode should fail when type is missing")
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("Decode should fail on invalid JSON")
	}
}

func TestFrameEncodeDecode(t *testing.T) {
	f := MustFrame(ErrorFrame, ErrorPayload{Message: "nope"})

	b, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	back, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if back.Type != ErrorFrame {
		t.Errorf("Type = %q, want %q", back.Type, ErrorFrame)
	}
	var p ErrorPayload
	if err := json.Unmarshal(back.Payload, &p); err != nil {
		t.Fatalf("payload unmarshal failed: %v", err)
	}
	if p.Message != "nope" {
		t.Errorf("Message = %q, want %q", p.Message, "nope")
	}
}
