package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service contains the logic for minting authentication parameters.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	signer Signer
	ttl    time.Duration

	now      func() time.Time
	newToken func() (string, error)
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTokenSource overrides how tokens are generated.
func WithTokenSource(f func() (string, error)) Option {
	return func(s *Service) { s.newToken = f }
}

// NewService creates a new auth Service.
func NewService(signer Signer, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		signer:   signer,
		ttl:      ttl,
		now:      time.Now,
		newToken: randomToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parameters returns a fresh token, its expiry and signature.
func (s *Service) Parameters(ctx context.Context) (Parameters, error) {
	if err := ctx.Err(); err != nil {
		return Parameters{}, err
	}

	token, err := s.newToken()
	if err != nil {
		return Parameters{}, fmt.Errorf("generate token: %w", err)
	}
	expire := s.now().Add(s.ttl).Unix()

	sig, err := s.signer.Sign(token, expire)
	if err != nil {
		return Parameters{}, fmt.Errorf("sign token: %w", err)
	}

	return Parameters{Token: token, Signature: sig, Expire: expire}, nil
}

func randomToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
