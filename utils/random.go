package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateCode returns n random bytes as upper-case hex.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateReference builds a human readable ticket like "MSG-3FA9C1".
func GenerateReference(prefix string) (string, error) {
	code, err := GenerateCode(3)
	if err != nil {
		return "", fmt.Errorf("generate %s reference: %w", prefix, err)
	}
	return prefix + "-" + code, nil
}
