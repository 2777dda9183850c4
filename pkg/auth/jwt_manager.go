package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongTokenUse = errors.New("token is not an access token")
)

// Claims are the registered claims plus the token's intended use.
type Claims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

// JWTManager verifies tokens minted by the auth service. Generate exists for
// tooling and tests; this service does not issue tokens to clients.
type JWTManager struct {
	secretKey     string
	tokenDuration time.Duration
}

func NewJWTManager(secret string, duration time.Duration) *JWTManager {
	return &JWTManager{secretKey: secret, tokenDuration: duration}
}

// Generate creates an access token for userID.
func (m *JWTManager) Generate(userID string) (string, error) {
	return m.generate(userID, TokenUseAccess, m.tokenDuration)
}

func (m *JWTManager) generate(userID, use string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Verify checks signature, expiry and that the token is an access token.
func (m *JWTManager) Verify(accessToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenUse != TokenUseAccess {
		return nil, ErrWrongTokenUse
	}
	return claims, nil
}

// Expiry returns the expiry of a valid access token.
func (m *JWTManager) Expiry(accessToken string) (time.Time, error) {
	claims, err := m.Verify(accessToken)
	if err != nil {
		return time.Time{}, err
	}
	return claims.ExpiresAt.Time, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// ExtractTokenFromHeader extracts the bearer token of a request.
func ExtractTokenFromHeader(r *http.Request) (string, error) {
	token, ok := BearerToken(r.Header.Get("Authorization"))
	if !ok {
		return "", errors.New("invalid Authorization header")
	}
	return token, nil
}
