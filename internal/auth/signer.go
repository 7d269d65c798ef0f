package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strconv"
)

// ErrNoPrivateKey is returned by HMACSigner when no private key is configured.
var ErrNoPrivateKey = errors.New("signer: private key is empty")

// Signer produces the signature the vendor expects for a token/expire pair.
type Signer interface {
	Sign(token string, expire int64) (string, error)
}

// HMACSigner signs with HMAC-SHA1 keyed by the vendor private key, over
// token followed by the decimal expire timestamp, hex-encoded.
type HMACSigner struct {
	privateKey []byte
}

// NewHMACSigner creates a signer for the given private key.
func NewHMACSigner(privateKey string) *HMACSigner {
	return &HMACSigner{privateKey: []byte(privateKey)}
}

// Sign implements Signer.
func (s *HMACSigner) Sign(token string, expire int64) (string, error) {
	if len(s.privateKey) == 0 {
		return "", ErrNoPrivateKey
	}
	mac := hmac.New(sha1.New, s.privateKey)
	mac.Write([]byte(token))
	mac.Write([]byte(strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil)), nil
}
