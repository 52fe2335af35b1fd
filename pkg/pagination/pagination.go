// Package pagination implements the keyset cursors behind the booking and
// wallet transaction feeds. Both feeds page newest first over the same
// (created_at, id) ordering, so they share one cursor shape.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size when the caller does not ask for one.
	DefaultLimit = 25
	// MaxLimit caps a single page of bookings or transactions.
	MaxLimit = 100
)

// Params carries the page inputs from a list request.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor marks the last row a feed page ended on. The id breaks ties
// between rows created in the same instant.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit clamps a requested page size into [1, MaxLimit],
// substituting DefaultLimit for absent or non-positive values.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// FetchLimit is the query limit for a page: one row beyond the normalized
// size, so the feed knows whether to hand out a next cursor.
func FetchLimit(limit int) int {
	return NormalizeLimit(limit) + 1
}

// Encode renders the cursor as an opaque token: base64 over the row's
// creation instant in unix nanoseconds and its id.
func (c Cursor) Encode() string {
	payload := fmt.Sprintf("%d:%s", c.CreatedAt.UTC().UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor reverses Encode. An empty or blank token means the first
// page and yields a nil cursor.
func ParseCursor(token string) (*Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	nanos, rawID, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, fmt.Errorf("malformed cursor")
	}

	at, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cursor timestamp: %w", err)
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("cursor id: %w", err)
	}
	return &Cursor{CreatedAt: time.Unix(0, at).UTC(), ID: id}, nil
}
