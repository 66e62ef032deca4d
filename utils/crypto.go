package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// GenerateHMAC crea el HMAC de un dato
func GenerateHMAC(data string, key []byte) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateHMAC verifica el HMAC de un dato
func ValidateHMAC(data string, mac string, key []byte) bool {
	expected := GenerateHMAC(data, key)
	return hmac.Equal([]byte(expected), []byte(mac))
}

// GenerateSecureToken genera un token aleatorio seguro
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %v", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
