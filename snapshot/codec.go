package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xraph/keeper/principal"
)

// ErrCorrupt wraps every decode failure.
var ErrCorrupt = errors.New("snapshot: corrupt")

// Codec serializes principals for a Store.
type Codec interface {
	Encode(p *principal.Principal) ([]byte, error)
	Decode(data []byte) (*principal.Principal, error)
}

// JSON is the plain codec. Snapshots are readable and unsigned.
type JSON struct{}

// Compile-time interface checks.
var (
	_ Codec = JSON{}
	_ Codec = (*Signed)(nil)
)

// Encode marshals p as JSON.
func (JSON) Encode(p *principal.Principal) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(p)
}

// Decode unmarshals and validates a JSON snapshot.
func (JSON) Decode(data []byte) (*principal.Principal, error) {
	var p principal.Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if p.Permissions == nil {
		p.Permissions = principal.NewPermissionSet()
	}
	return &p, nil
}

// Signed encodes snapshots as HS256 JWTs. A snapshot edited outside the
// process fails signature verification and decodes as corrupt.
type Signed struct {
	key    []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// SignedOption configures a Signed codec.
type SignedOption func(*Signed)

// WithIssuer sets the iss claim that is written and required.
func WithIssuer(iss string) SignedOption {
	return func(s *Signed) { s.issuer = iss }
}

// WithTTL bounds how long a snapshot stays restorable. Zero means forever.
func WithTTL(ttl time.Duration) SignedOption {
	return func(s *Signed) { s.ttl = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) SignedOption {
	return func(s *Signed) { s.now = now }
}

// NewSigned creates a signing codec. key must be at least 32 bytes.
func NewSigned(key []byte, opts ...SignedOption) (*Signed, error) {
	if len(key) < 32 {
		return nil, errors.New("snapshot: signing key must be at least 32 bytes")
	}
	s := &Signed{
		key:    append([]byte(nil), key...),
		issuer: "keeper",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type claims struct {
	jwt.RegisteredClaims
	Principal *principal.Principal `json:"principal"`
}

// Encode signs p.
func (s *Signed) Encode(p *principal.Principal) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   s.issuer,
			Subject:  p.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Principal: p,
	}
	if s.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.key)
	if err != nil {
		return nil, fmt.Errorf("snapshot: sign: %w", err)
	}
	return []byte(token), nil
}

// Decode verifies and unpacks a signed snapshot.
func (s *Signed) Decode(data []byte) (*principal.Principal, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(string(data), c,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := c.Principal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if c.Subject != c.Principal.ID {
		return nil, fmt.Errorf("%w: subject does not match principal", ErrCorrupt)
	}
	if c.Principal.Permissions == nil {
		c.Principal.Permissions = principal.NewPermissionSet()
	}
	return c.Principal, nil
}
