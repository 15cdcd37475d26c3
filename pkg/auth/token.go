package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/aquaflow-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// ErrTokenExpired is returned by ParseAdminToken when the token was valid but has expired.
var ErrTokenExpired = errors.New("admin token expired")

// AdminClaims represents the typed JWT issued to back-office users.
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// MintAdminToken issues a signed JWT with a fixed expiry of cfg.SessionTTL.
func MintAdminToken(cfg config.AdminConfig, now time.Time, username string) (string, *AdminClaims, error) {
	if cfg.JWTSecret == "" {
		return "", nil, fmt.Errorf("jwt secret is required")
	}
	if cfg.JWTIssuer == "" {
		return "", nil, fmt.Errorf("jwt issuer is required")
	}
	if cfg.SessionTTL <= 0 {
		return "", nil, fmt.Errorf("admin session ttl must be positive")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil, fmt.Errorf("username is required")
	}

	claims := &AdminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.SessionTTL)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("signing jwt: %w", err)
	}
	return signed, claims, nil
}

// ParseAdminToken validates the JWT string and returns typed claims. Expired
// tokens yield ErrTokenExpired.
func ParseAdminToken(cfg config.AdminConfig, tokenString string, now time.Time) (*AdminClaims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &AdminClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	_, err := parser.ParseWithClaims(tokenString, claims, keyFunc(cfg))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, ErrTokenExpired
		}
		return nil, err
	}
	return claims, nil
}

// ParseAdminTokenAllowExpired parses the JWT without validating exp so logout can inspect jti.
func ParseAdminTokenAllowExpired(cfg config.AdminConfig, tokenString string) (*AdminClaims, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	claims := &AdminClaims{}
	parser := jwt.NewParser(
		jwt.WithoutClaimsValidation(),
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
	)
	if _, err := parser.ParseWithClaims(tokenString, claims, keyFunc(cfg)); err != nil {
		return nil, err
	}
	return claims, nil
}

func keyFunc(cfg config.AdminConfig) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtSigningMethod {
			return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
		}
		return []byte(cfg.JWTSecret), nil
	}
}
