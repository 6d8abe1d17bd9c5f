package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// VerifyNombaWebhookSignature checks an HMAC-SHA256 of the raw body. Nomba
// dashboards have shipped both hex and base64 encodings.
func VerifyNombaWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	if decoded, err := hex.DecodeString(strings.ToLower(sig)); err == nil && hmac.Equal(decoded, expected) {
		return true
	}
	if decoded, err := base64.StdEncoding.DecodeString(sig); err == nil && hmac.Equal(decoded, expected) {
		return true
	}
	return false
}
