package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// ResetTokenBytes gives 160 bits of entropy once hex-encoded.
	ResetTokenBytes = 20
	ResetTokenTTL   = time.Hour
)

// GenerateResetToken returns an opaque hex token for password resets.
func GenerateResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
