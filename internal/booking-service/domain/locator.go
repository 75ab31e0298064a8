package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// LocatorAlphabet leaves out I, O, 0 and 1, which are easy to misread.
const LocatorAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const LocatorLength = 6

// GenerateRecordLocator returns a random 6-character locator.
func GenerateRecordLocator() (string, error) {
	size := big.NewInt(int64(len(LocatorAlphabet)))
	buf := make([]byte, LocatorLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("generate record locator: %w", err)
		}
		buf[i] = LocatorAlphabet[n.Int64()]
	}
	return string(buf), nil
}
