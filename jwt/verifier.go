package jwt

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the token algorithm.
type SigningMethod string

const (
	MethodEd25519 SigningMethod = "ed25519"
	MethodHS256   SigningMethod = "hs256"
	// MethodJWKS verifies against the identity provider's published key set.
	MethodJWKS SigningMethod = "jwks"
)

var (
	// ErrTokenInvalid is returned for every token that fails verification.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrSigningDisabled is returned by Issue when no private key is configured.
	ErrSigningDisabled = errors.New("token signing not configured")
)

// Config describes how the identity provider signs its tokens.
type Config struct {
	SigningMethod SigningMethod
	// PrivateKey is the HS256 secret, or an optional Ed25519 private key
	// (raw or PEM) used by Issue.
	PrivateKey []byte
	// PublicKey is the Ed25519 verification key, raw or PEM.
	PublicKey []byte
	Issuer    string
	Audience  string
	Leeway    time.Duration
	// MaxFutureIAT bounds how far in the future iat may be. Defaults to 10m.
	MaxFutureIAT time.Duration
	KeyID        string
	// VerifyKeys maps kid to verification key for key rotation.
	VerifyKeys map[string][]byte

	// JWKSURL is the key set endpoint used by MethodJWKS.
	JWKSURL string
	// JWKSRefreshInterval defaults to one hour.
	JWKSRefreshInterval time.Duration
	// Logger receives key set refresh failures.
	Logger *slog.Logger
}

// Claims is the identity asserted by a bearer token: sub is the account id
// and sid the session id.
type Claims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// AccountID returns the subject.
func (c *Claims) AccountID() string { return c.Subject }

// Verifier checks identity-provider tokens.
type Verifier struct {
	config Config
	now    func() time.Time
	// jwks is set for MethodJWKS.
	jwks keyfunc.Keyfunc
	stop context.CancelFunc
}

func checkTimeBounds(cfg *Config) error {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return errors.New("invalid leeway configuration")
	}
	if cfg.MaxFutureIAT == 0 {
		cfg.MaxFutureIAT = 10 * time.Minute
	}
	if cfg.MaxFutureIAT < 0 || cfg.MaxFutureIAT > 24*time.Hour {
		return errors.New("invalid MaxFutureIAT configuration")
	}
	return nil
}

// NewVerifier validates cfg and returns a Verifier. A MethodJWKS verifier
// refreshes its key set in the background until [Verifier.Close].
func NewVerifier(cfg Config) (*Verifier, error) {
	if err := checkTimeBounds(&cfg); err != nil {
		return nil, err
	}
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	switch cfg.SigningMethod {
	case MethodJWKS:
		ctx, cancel := context.WithCancel(context.Background())
		kf, err := newRemoteKeyfunc(ctx, cfg)
		if err != nil {
			cancel()
			return nil, err
		}
		return &Verifier{config: cfg, now: time.Now, jwks: kf, stop: cancel}, nil
	case MethodHS256:
		if len(cfg.PrivateKey) < 32 {
			return nil, errors.New("hs256 requires a secret of at least 32 bytes")
		}
	case MethodEd25519:
		if len(cfg.PrivateKey) > 0 {
			if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
		if len(cfg.VerifyKeys) == 0 && len(cfg.PublicKey) == 0 {
			return nil, errors.New("ed25519 requires public key or verify key set")
		}
		for kid, key := range cfg.VerifyKeys {
			if strings.TrimSpace(kid) == "" {
				return nil, errors.New("verify key map contains empty kid")
			}
			if _, err := parseEdPublicKey(key); err != nil {
				return nil, fmt.Errorf("invalid ed25519 verify key for kid %q: %w", kid, err)
			}
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	if cfg.KeyID != "" && len(cfg.VerifyKeys) > 0 {
		if _, ok := cfg.VerifyKeys[cfg.KeyID]; !ok {
			return nil, errors.New("KeyID is not present in VerifyKeys")
		}
	}

	return &Verifier{config: cfg, now: time.Now, stop: func() {}}, nil
}

// Close stops the key set refresh. Copies made by WithClock share it.
func (v *Verifier) Close() {
	if v != nil && v.stop != nil {
		v.stop()
	}
}

// WithClock returns a copy of v that reads time from now.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	cp := *v
	if now != nil {
		cp.now = now
	}
	return &cp
}

// Verify parses token and returns its claims. Tokens without sub or sid are
// rejected. Every failure wraps ErrTokenInvalid.
func (v *Verifier) Verify(token string) (*Claims, error) {
	valid := []string{v.method().Alg()}
	keyFunc := v.keyFunc
	if v.jwks != nil {
		valid = jwksAlgorithms
		keyFunc = v.jwks.Keyfunc
	}
	options := []jwt.ParserOption{
		jwt.WithValidMethods(valid),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(v.config.Leeway))
	}
	if v.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		options = append(options, jwt.WithAudience(v.config.Audience))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, keyFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" || claims.SID == "" {
		return nil, fmt.Errorf("%w: missing sub or sid", ErrTokenInvalid)
	}
	if claims.IssuedAt != nil && claims.IssuedAt.Time.After(v.now().Add(v.config.MaxFutureIAT)) {
		return nil, fmt.Errorf("%w: iat too far in the future", ErrTokenInvalid)
	}

	return claims, nil
}

// Issue signs a token for accountID and sessionID. Production tokens come
// from the identity provider; Issue serves tests, examples and load tools.
func (v *Verifier) Issue(accountID, sessionID string, ttl time.Duration) (string, error) {
	if v.jwks != nil || len(v.config.PrivateKey) == 0 {
		return "", ErrSigningDisabled
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be > 0")
	}

	now := v.now()
	claims := Claims{
		SID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    v.config.Issuer,
		},
	}
	if v.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{v.config.Audience}
	}

	tok := jwt.NewWithClaims(v.method(), claims)
	if v.config.KeyID != "" {
		tok.Header["kid"] = v.config.KeyID
	}

	key, err := v.signKey()
	if err != nil {
		return "", err
	}
	return tok.SignedString(key)
}

func (v *Verifier) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != v.method().Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}

	if len(v.config.VerifyKeys) > 0 {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		key, ok := v.config.VerifyKeys[kid]
		if !ok {
			return nil, errors.New("unknown kid")
		}
		return v.verifyKeyFrom(key)
	}

	if v.config.KeyID != "" {
		kid, _ := t.Header["kid"].(string)
		if kid != v.config.KeyID {
			return nil, errors.New("unknown kid")
		}
	}

	if v.config.SigningMethod == MethodHS256 {
		return v.config.PrivateKey, nil
	}
	return parseEdPublicKey(v.config.PublicKey)
}

func (v *Verifier) method() jwt.SigningMethod {
	if v.config.SigningMethod == MethodHS256 {
		return jwt.SigningMethodHS256
	}
	return jwt.SigningMethodEdDSA
}

func (v *Verifier) signKey() (interface{}, error) {
	if v.config.SigningMethod == MethodHS256 {
		return v.config.PrivateKey, nil
	}
	return parseEdPrivateKey(v.config.PrivateKey)
}

func (v *Verifier) verifyKeyFrom(key []byte) (interface{}, error) {
	if v.config.SigningMethod == MethodHS256 {
		return key, nil
	}
	return parseEdPublicKey(key)
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
