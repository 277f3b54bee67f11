package storage

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// External code prefixes. Codes look like OIS-LAB-493027.
const (
	BookingCodePrefix = "OIS-LAB"
	ReportCodePrefix  = "OIS-REP"
)

// codeAttempts bounds the random draws before falling back to a
// sequence-derived code.
const codeAttempts = 8

var codeSpace = big.NewInt(900000)

// randomCode draws six decimal digits from crypto/rand.
func randomCode(prefix string) string {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		// No entropy source; derive from the clock instead.
		return fmt.Sprintf("%s-%06d", prefix, 100000+time.Now().UnixNano()%900000)
	}
	return fmt.Sprintf("%s-%06d", prefix, 100000+n.Int64())
}

// sequenceCode derives the digits from a monotonic sequence value, unique
// by construction while the code space lasts.
func sequenceCode(prefix string, seq uint64) string {
	return fmt.Sprintf("%s-%06d", prefix, 100000+seq%900000)
}

// uniqueCode produces a code that taken reports as unused. Random draws
// are retried a bounded number of times, then the sequence fallback is
// walked until a free slot is found.
func uniqueCode(prefix string, seq uint64, taken func(string) bool) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code := randomCode(prefix)
		if !taken(code) {
			return code, nil
		}
	}
	for i := uint64(0); i < 900000; i++ {
		code := sequenceCode(prefix, seq+i)
		if !taken(code) {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}
