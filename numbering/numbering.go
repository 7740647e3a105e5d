/*
Package numbering formats user-visible document numbers.

PURPOSE:
  Invoices and quotes carry a printable document number alongside their
  opaque id. The number embeds the creation date, a random component, and
  the zero-padded monotonic sequence supplied by the settings counter:

    DDMMYY RRR SSSS...
    300826 412 0001  ->  "3008264120001"

  Uniqueness comes from the sequence; the random digits only make numbers
  harder to guess. The sequence itself is allocated by the store-backed
  ledger.SequenceAllocator, not here.
*/
package numbering

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// DefaultLength is the total number of digits in a generated number.
const DefaultLength = 13

// datePrefixLen counts the DDMMYY date digits plus the 3 random digits.
const datePrefixLen = 9

// Generate renders the document number for a freshly allocated sequence
// value. length is the total digit count; values at or below the prefix
// length fall back to DefaultLength.
func Generate(seq int64, length int) string {
	return generateAt(seq, length, time.Now())
}

func generateAt(seq int64, length int, now time.Time) string {
	if length <= datePrefixLen {
		length = DefaultLength
	}

	prefix := fmt.Sprintf("%02d%02d%02d%03d",
		now.Day(), int(now.Month()), now.Year()%100, randomDigits())

	return fmt.Sprintf("%s%0*d", prefix, length-datePrefixLen, seq)
}

// randomDigits returns a uniformly distributed value in [100, 999] from
// crypto/rand.
func randomDigits() int {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing means the platform RNG is broken; a
		// constant filler keeps numbers well-formed.
		return 100
	}
	return int(binary.BigEndian.Uint16(b[:]))%900 + 100
}
