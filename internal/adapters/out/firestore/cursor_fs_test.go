package firestore

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"
)

func TestCursorRoundTripPrice(t *testing.T) {
	p := 19.99
	tok := encodeCursor(pageCursor{Price: &p, ID: "item-7"})
	if tok == "" {
		t.Fatal("empty token")
	}

	got, err := decodeCursor(tok)
	if err != nil {
		t.Fatalf("decodeCursor: %v", err)
	}
	if got.ID != "item-7" {
		t.Errorf("ID = %q, want item-7", got.ID)
	}
	if got.Price == nil || *got.Price != p {
		t.Errorf("Price = %v, want %v", got.Price, p)
	}
	if got.CreatedAt != nil {
		t.Error("CreatedAt should be absent on a price cursor")
	}
}

func TestCursorRoundTripCreatedAt(t *testing.T) {
	at := time.Date(2025, 4, 2, 15, 4, 5, 0, time.UTC)
	tok := encodeCursor(pageCursor{CreatedAt: &at, ID: "item-1"})

	got, err := decodeCursor(tok)
	if err != nil {
		t.Fatalf("decodeCursor: %v", err)
	}
	if got.CreatedAt == nil || !got.CreatedAt.Equal(at) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, at)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"not base64", "!!not-base64!!"},
		{"base64 but not json", base64.URLEncoding.EncodeToString([]byte("hello"))},
		{"json without id", base64.URLEncoding.EncodeToString([]byte(`{"p":1.5}`))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeCursor(tc.raw); !errors.Is(err, ErrBadCursor) {
				t.Errorf("decodeCursor(%q) err = %v, want ErrBadCursor", tc.raw, err)
			}
		})
	}
}

func TestCursorTokensAreURLSafe(t *testing.T) {
	p := 1234.56
	tok := encodeCursor(pageCursor{Price: &p, ID: "a/b+c"})
	for _, c := range tok {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '=':
		default:
			t.Fatalf("token contains non-URL-safe byte %q: %s", c, tok)
		}
	}
}
