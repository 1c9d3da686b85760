package common

import (
	"crypto/rand"
	"fmt"
)

// Alphanumeric is the 62-symbol alphabet used for verification codes.
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randRead is a seam for tests that need the CSPRNG to fail.
var randRead = rand.Read

// RandomString returns n symbols drawn uniformly from alphabet using the
// system CSPRNG. Bytes that would bias the distribution are rejected and
// redrawn.
func RandomString(n int, alphabet string) (string, error) {
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", fmt.Errorf("alphabet size %d out of range", len(alphabet))
	}
	limit := 256 - 256%len(alphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := randRead(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
