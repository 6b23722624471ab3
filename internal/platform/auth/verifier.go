package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// VerifierConfig configures bearer-token validation.
type VerifierConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
}

// Verifier validates bearer tokens. It is used both by the HTTP auth
// middleware and by the push-channel handshake, which is the only
// authentication point for a channel's whole lifetime and therefore must
// reject invalid credentials before the channel opens.
type Verifier struct {
	cfg  VerifierConfig
	opts []jwt.ParserOption
}

// NewVerifier creates a Verifier for HS256 tokens signed with the shared
// clinic secret.
func NewVerifier(cfg VerifierConfig) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{cfg: cfg, opts: opts}
}

// Verify parses and validates a token string and returns its claims.
func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, fmt.Errorf("empty token")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.cfg.Secret, nil
	}, v.opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Role == "" {
		return nil, fmt.Errorf("token has no role claim")
	}
	if claims.Role == RoleDoctor && claims.DoctorID == "" {
		return nil, fmt.Errorf("doctor token has no doctor_id claim")
	}

	return claims, nil
}
