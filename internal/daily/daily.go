package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// LengthFor picks the day's word length from lengths using
// HMAC(salt, YYYY-MM-DD) so every player gets the same puzzle.
// Returns 0 when lengths is empty.
func LengthFor(date time.Time, salt string, lengths []int) int {
	if len(lengths) == 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for modulus distribution
	n := binary.BigEndian.Uint64(sum[:8])
	return lengths[n%uint64(len(lengths))]
}
