// Package auth mints signed upload authentication parameters.
package auth

import (
	"errors"
	"time"
)

// ErrMalformedParameters is returned when a Parameters value is missing a field.
var ErrMalformedParameters = errors.New("malformed authentication parameters")

// Parameters authorizes a single upload to the vendor until Expire.
type Parameters struct {
	Token     string `json:"token"     example:"b7f6d5c4-3b2a-4f1e-9d8c-7b6a5f4e3d2c"`
	Signature string `json:"signature" example:"0f9e8d7c6b5a4f3e2d1c0b9a8f7e6d5c4b3a2f1e"`
	Expire    int64  `json:"expire"    example:"1700000000"`
}

// Validate checks that every field is present.
func (p Parameters) Validate() error {
	if p.Token == "" || p.Signature == "" || p.Expire <= 0 {
		return ErrMalformedParameters
	}
	return nil
}

// ExpiresAt returns Expire as a time.
func (p Parameters) ExpiresAt() time.Time {
	return time.Unix(p.Expire, 0)
}
