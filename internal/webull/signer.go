package webull

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// Signer produces the authentication headers for Webull OpenAPI requests.
// Keys are held as byte slices so they can be wiped.
type Signer struct {
	appKey    []byte
	appSecret []byte

	// now is swappable for tests.
	now func() time.Time
}

// NewSigner creates a signer for the given app key pair.
func NewSigner(appKey, appSecret string) *Signer {
	return &Signer{
		appKey:    []byte(appKey),
		appSecret: []byte(appSecret),
		now:       time.Now,
	}
}

// Wipe clears the keys from memory.
func (s *Signer) Wipe() {
	if s == nil {
		return
	}
	for i := range s.appKey {
		s.appKey[i] = 0
	}
	for i := range s.appSecret {
		s.appSecret[i] = 0
	}
}

// Headers returns the signed header set for one request. The signature
// covers timestamp + method + path + query + body, HMAC-SHA256 keyed with
// the app secret, hex encoded.
func (s *Signer) Headers(method, path, query, body string) map[string]string {
	timestamp := strconv.FormatInt(s.now().UnixMilli(), 10)

	payload := timestamp + method + path + query + body
	mac := hmac.New(sha256.New, s.appSecret)
	mac.Write([]byte(payload))
	signature := hex.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"x-app-key":             string(s.appKey),
		"x-timestamp":           timestamp,
		"x-signature":           signature,
		"x-signature-algorithm": "HMAC-SHA256",
		"x-signature-version":   "1.0",
	}
}
