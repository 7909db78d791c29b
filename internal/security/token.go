package security

import (
	"crypto/rsa"
	"fmt"
	"os"
	"time"

	"github.com/challengelist/listd/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tags a token with its intended use.
type TokenType string

// Token kinds carried in the token_type claim.
const (
	// TokenTypeSession is issued at login and recorded for audit.
	TokenTypeSession TokenType = "SESSION"
	// TokenTypeAPI is issued on demand and replaces any prior API token.
	TokenTypeAPI TokenType = "API"
)

// TokenLifetime is the fixed validity window for every issued token.
const TokenLifetime = 7 * 24 * time.Hour

// Claims is the signed claim set carried by every bearer token.
type Claims struct {
	AccountID uint64    `json:"id"`
	Username  string    `json:"username"`
	TokenType TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies bearer tokens.
//
// The symmetric secret is always present. When an RSA key pair is loaded,
// issuance uses RS256 and verification tries RS256 first, falling back to
// the symmetric secret so tokens issued under either scheme stay valid.
type TokenIssuer struct {
	secret    []byte
	rsaKey    *rsa.PrivateKey
	rsaPublic *rsa.PublicKey
}

// NewTokenIssuer builds a TokenIssuer from JWT config, loading RSA key
// material from disk when the config enables it. Unreadable or malformed
// key files are returned as errors; callers treat them as startup-fatal.
func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("security: jwt secret is empty")
	}
	issuer := &TokenIssuer{secret: []byte(cfg.Secret)}
	if !cfg.UseRSA {
		return issuer, nil
	}

	keyPEM, errKey := os.ReadFile(cfg.RSAKeyFile)
	if errKey != nil {
		return nil, fmt.Errorf("security: read rsa key: %w", errKey)
	}
	publicPEM, errPublic := os.ReadFile(cfg.RSAPublicFile)
	if errPublic != nil {
		return nil, fmt.Errorf("security: read rsa public key: %w", errPublic)
	}
	return NewTokenIssuerFromKeys(cfg.Secret, keyPEM, publicPEM)
}

// NewTokenIssuerFromKeys builds an RSA-signing TokenIssuer from PEM bytes.
func NewTokenIssuerFromKeys(secret string, keyPEM, publicPEM []byte) (*TokenIssuer, error) {
	rsaKey, errParse := jwt.ParseRSAPrivateKeyFromPEM(keyPEM)
	if errParse != nil {
		return nil, fmt.Errorf("security: parse rsa key: %w", errParse)
	}
	rsaPublic, errParsePublic := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if errParsePublic != nil {
		return nil, fmt.Errorf("security: parse rsa public key: %w", errParsePublic)
	}
	return &TokenIssuer{
		secret:    []byte(secret),
		rsaKey:    rsaKey,
		rsaPublic: rsaPublic,
	}, nil
}

// Issue signs a token for the account under the active scheme, expiring
// TokenLifetime from now. Every token carries a unique jti; without it two
// tokens issued within the same second would be identical, which would make
// API key rotation a no-op.
func (i *TokenIssuer) Issue(accountID uint64, username string, tokenType TokenType) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		AccountID: accountID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	}

	if i.rsaKey != nil {
		signed, errSign := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.rsaKey)
		if errSign != nil {
			return "", fmt.Errorf("security: sign token: %w", errSign)
		}
		return signed, nil
	}

	signed, errSign := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if errSign != nil {
		return "", fmt.Errorf("security: sign token: %w", errSign)
	}
	return signed, nil
}

// Verify decodes a bearer token and reports whether it is valid.
//
// Authentication failure is not exceptional: malformed, expired, or
// mis-signed tokens all yield (zero, false) and the request degrades to
// anonymous. When RSA is configured the asymmetric check runs first and any
// failure falls through to the symmetric secret.
func (i *TokenIssuer) Verify(token string) (Claims, bool) {
	if i.rsaPublic != nil {
		if claims, ok := i.parse(token, jwt.SigningMethodRS256.Alg(), i.rsaPublic); ok {
			return claims, true
		}
	}
	return i.parse(token, jwt.SigningMethodHS256.Alg(), i.secret)
}

// parse validates a token against a single signing method and key.
func (i *TokenIssuer) parse(token, method string, key any) (Claims, bool) {
	var claims Claims
	parsed, errParse := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{method}), jwt.WithExpirationRequired())
	if errParse != nil || !parsed.Valid {
		return Claims{}, false
	}
	return claims, true
}
