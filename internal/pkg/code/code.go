package code

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeSpan is the number of valid 6-digit codes: 100000..999999 inclusive.
const codeSpan = 900000

// New returns a uniformly random 6-digit verification code. The lower bound
// of 100000 guarantees a fixed width of six characters with no leading zeros.
func New() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
