// Package refcode generates the human-readable reference codes attached to
// bookings and quotations. Codes are random rather than sequential so they
// stay collision-resistant across processes; uniqueness is still enforced by
// the database at insert time.
package refcode

import (
	"crypto/rand"
	"fmt"
)

// Alphabet drops easily-confused characters (0/O, 1/I/L).
const alphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const codeLength = 8

const (
	BookingPrefix   = "BKG"
	QuotationPrefix = "QUO"
)

// New returns a code like "BKG-7G42KMXQ".
func New(prefix string) (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading randomness: %w", err)
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return fmt.Sprintf("%s-%s", prefix, buf), nil
}
