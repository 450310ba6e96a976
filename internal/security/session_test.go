package security

import (
	"testing"
	"time"

	"classquiz/internal/models"
)

func TestSessionCodecRoundtrip(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)

	session := models.Session{
		Account:        "s001",
		Name:           "Student One",
		TotalPoints:    12,
		Teacher:        false,
		LastQuizDate:   "2026-03-01",
		QuizTimesToday: 2,
	}

	token, err := codec.Issue(session)
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	decoded, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if *decoded != session {
		t.Errorf("Decode() = %+v, want %+v", *decoded, session)
	}
}

func TestSessionCodecRejectsBadTokens(t *testing.T) {
	codec := NewSessionCodec("test-secret", time.Hour)

	valid, err := codec.Issue(models.Session{Account: "s001"})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	otherSecret, err := NewSessionCodec("other-secret", time.Hour).Issue(models.Session{Account: "s001"})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	expired, err := NewSessionCodec("test-secret", -time.Minute).Issue(models.Session{Account: "s001"})
	if err != nil {
		t.Fatalf("Issue() failed: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "garbage token", token: "not.a.token"},
		{name: "tampered signature", token: valid + "AAAA"},
		{name: "wrong secret", token: otherSecret},
		{name: "expired token", token: expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.Decode(tt.token); err == nil {
				t.Error("Decode() accepted an invalid token")
			}
		})
	}
}
