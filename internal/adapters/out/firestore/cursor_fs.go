// internal/adapters/out/firestore/cursor_fs.go
package firestore

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ErrBadCursor is returned when a resume token cannot be decoded or does not
// carry the value the requested sort order needs.
var ErrBadCursor = errors.New("firestore: malformed cursor")

// pageCursor is the opaque resume token handed back to callers.
// It identifies the last-seen document of a page: the sort-field value plus
// the document id (the id is the tie-breaker of every ordered scan).
//
// Scans are strictly forward-only; there is no reverse token.
type pageCursor struct {
	Price     *float64   `json:"p,omitempty"`
	CreatedAt *time.Time `json:"c,omitempty"`
	ID        string     `json:"id"`
}

func encodeCursor(c pageCursor) string {
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

func decodeCursor(raw string) (pageCursor, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return pageCursor{}, ErrBadCursor
	}
	data, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return pageCursor{}, ErrBadCursor
	}
	var c pageCursor
	if err := json.Unmarshal(data, &c); err != nil {
		return pageCursor{}, ErrBadCursor
	}
	if strings.TrimSpace(c.ID) == "" {
		return pageCursor{}, ErrBadCursor
	}
	return c, nil
}
