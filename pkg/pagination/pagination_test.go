package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultLimit},
		{-5, DefaultLimit},
		{10, 10},
		{MaxLimit, MaxLimit},
		{MaxLimit + 1, MaxLimit},
		{1000, MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestEncodeParseCursorRoundtrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2026, 5, 14, 10, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(cursor)
	parsed, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected parsed cursor")
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) {
		t.Fatalf("expected created_at %v, got %v", cursor.CreatedAt, parsed.CreatedAt)
	}
	if parsed.ID != cursor.ID {
		t.Fatalf("expected id %s, got %s", cursor.ID, parsed.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	parsed, err := ParseCursor("   ")
	if err != nil {
		t.Fatalf("parse empty cursor: %v", err)
	}
	if parsed != nil {
		t.Fatal("expected nil cursor for blank input")
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	cases := []string{
		"not base64!!!",
		"bm9zZXBhcmF0b3I",                  // decodes without the separator
		"MjAyNi0wNS0xNHxub3QtYS11dWlk",     // bad uuid
		"bm90LWEtdGltZXwxMjM0NTY3OA",      // bad timestamp
	}
	for _, value := range cases {
		if _, err := ParseCursor(value); err == nil {
			t.Fatalf("expected error for cursor %q", value)
		}
	}
}
