package services

import (
	"errors"
	"fmt"
	"time"

	"ezwallet/model"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultAccessTTL  = 60 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

type TokenConfig struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenErrorKind names a verification failure. The value is reported to
// clients as the authorization cause.
type TokenErrorKind string

const (
	ExpiredError   TokenErrorKind = "ExpiredError"
	SignatureError TokenErrorKind = "SignatureError"
	MalformedError TokenErrorKind = "MalformedError"
)

type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// IsExpired reports whether err is a verification failure caused only by the
// token expiry. The signature of such a token has already been checked.
func IsExpired(err error) bool {
	var tokenErr *TokenError
	return errors.As(err, &tokenErr) && tokenErr.Kind == ExpiredError
}

func errorKind(err error) string {
	var tokenErr *TokenError
	if errors.As(err, &tokenErr) {
		return string(tokenErr.Kind)
	}
	return string(MalformedError)
}

// TokenCodec signs and verifies the claim sets carried by access and refresh
// tokens with a single shared HMAC secret.
type TokenCodec struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	return &TokenCodec{cfg: cfg, now: time.Now}, nil
}

// WithClock returns a copy of the codec reading the current time from now.
func (tc *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	clone := *tc
	clone.now = now
	return &clone
}

func (tc *TokenCodec) AccessTTL() time.Duration  { return tc.cfg.AccessTTL }
func (tc *TokenCodec) RefreshTTL() time.Duration { return tc.cfg.RefreshTTL }

// Mint signs claims with an expiry ttl from now. The identity fields are not
// validated here.
func (tc *TokenCodec) Mint(claims model.TokenClaims, ttl time.Duration) (string, error) {
	now := tc.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    tc.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tc.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (tc *TokenCodec) MintAccess(claims model.TokenClaims) (string, error) {
	return tc.Mint(claims, tc.cfg.AccessTTL)
}

func (tc *TokenCodec) MintRefresh(claims model.TokenClaims) (string, error) {
	return tc.Mint(claims, tc.cfg.RefreshTTL)
}

// Verify checks the signature and the expiry of token and returns its claims.
// Failures are always a *TokenError.
func (tc *TokenCodec) Verify(token string) (*model.TokenClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tc.now),
	}
	if tc.cfg.Issuer != "" {
		options = append(options, jwt.WithIssuer(tc.cfg.Issuer))
	}

	claims := &model.TokenClaims{}
	parsed, err := jwt.NewParser(options...).ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.cfg.Secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, &TokenError{Kind: MalformedError, Err: jwt.ErrTokenInvalidClaims}
	}
	return claims, nil
}

func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: ExpiredError, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &TokenError{Kind: SignatureError, Err: err}
	default:
		return &TokenError{Kind: MalformedError, Err: err}
	}
}
