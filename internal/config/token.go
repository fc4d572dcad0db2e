package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	tokenService = "docent"
	tokenAccount = "api_token"
)

// GetAPIToken returns the local API bearer token, generating and storing one
// on first use. The token guards the portfolio-editing endpoints; the chat
// endpoint stays public.
func GetAPIToken() (string, error) {
	if out, err := keychainGet(tokenService, tokenAccount); err == nil {
		if token := strings.TrimSpace(string(out)); token != "" {
			return token, nil
		}
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating API token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := keychainSet(tokenService, tokenAccount, token); err != nil {
		return "", fmt.Errorf("storing API token: %w", err)
	}
	return token, nil
}
