package service

import (
	"crypto/rand"
	"math/big"
)

// examCodeAlphabet leaves out characters that are easy to misread (0/O, 1/I/L).
const examCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeGenerator produces candidate exam codes. Uniqueness is enforced by the store.
type CodeGenerator func() (string, error)

// RandomCode returns a generator of n-character codes drawn from crypto/rand.
func RandomCode(n int) CodeGenerator {
	max := big.NewInt(int64(len(examCodeAlphabet)))
	return func() (string, error) {
		b := make([]byte, n)
		for i := range b {
			idx, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", err
			}
			b[i] = examCodeAlphabet[idx.Int64()]
		}
		return string(b), nil
	}
}
