package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// KeyPrefix starts every searchcond API key.
const KeyPrefix = "sc-v1"

// ParseAPIKey extracts key_id and random_data from API key format.
// Format: sc-v1-<key_id>-<random_data>, key_id 32 hex chars (UUIDv7 without
// hyphens), random_data 64 hex chars.
func ParseAPIKey(key string) (keyID, randomData string, err error) {
	parts := strings.Split(key, "-")
	if len(parts) != 4 || parts[0]+"-"+parts[1] != KeyPrefix {
		return "", "", ErrInvalidKeyFormat
	}

	keyID, randomData = parts[2], parts[3]
	if len(keyID) != 32 || len(randomData) != 64 {
		return "", "", ErrInvalidKeyFormat
	}
	if !isLowerHex(keyID) || !isLowerHex(randomData) {
		return "", "", ErrInvalidKeyFormat
	}

	return keyID, randomData, nil
}

// FormatAPIKey constructs API key from components.
func FormatAPIKey(keyID, randomData string) string {
	return fmt.Sprintf("%s-%s-%s", KeyPrefix, keyID, randomData)
}

// GenerateAPIKey returns a new random key.
func GenerateAPIKey() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate key id: %w", err)
	}
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return "", fmt.Errorf("failed to generate key material: %w", err)
	}
	return FormatAPIKey(strings.ReplaceAll(id.String(), "-", ""), hex.EncodeToString(random)), nil
}

// computeHMAC computes HMAC-SHA256 signature of API key using secret.
func computeHMAC(secret []byte, apiKey string) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(apiKey))
	return h.Sum(nil)
}

func isLowerHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return false
		}
	}
	return true
}
