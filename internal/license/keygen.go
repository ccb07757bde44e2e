package license

import (
	"crypto/rand"
	"fmt"
	"strings"
)

// keyAlphabet is the 32-symbol alphabet used for key segments. I, O, 0 and 1
// are excluded because they are easy to confuse when read from an email.
const keyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	keySegments   = 4
	keySegmentLen = 4
)

// GenerateKey produces a license key of the form DV<major>-AAAA-BBBB-CCCC-DDDD.
// Each segment character is sampled independently from keyAlphabet using
// crypto/rand. A non-positive major version is treated as 1. Collision
// handling is the caller's responsibility.
func GenerateKey(majorVersion int) string {
	if majorVersion <= 0 {
		majorVersion = 1
	}

	// 32 symbols divide 256 evenly, so taking bytes modulo the alphabet
	// length introduces no bias.
	raw := make([]byte, keySegments*keySegmentLen)
	if _, err := rand.Read(raw); err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		panic(fmt.Sprintf("license: reading random bytes: %v", err))
	}

	var b strings.Builder
	b.Grow(len("DV1") + keySegments*(keySegmentLen+1))
	fmt.Fprintf(&b, "DV%d", majorVersion)
	for i, c := range raw {
		if i%keySegmentLen == 0 {
			b.WriteByte('-')
		}
		b.WriteByte(keyAlphabet[int(c)%len(keyAlphabet)])
	}
	return b.String()
}
