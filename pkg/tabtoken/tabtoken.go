package tabtoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents tab token custom claims
type Claims struct {
	TabID string `json:"tab_id"`
	jwt.RegisteredClaims
}

// Manager issues and validates tab identity tokens. A tab token binds a
// browser tab to a stable tab ID so ownership checks can tell tabs apart.
type Manager struct {
	secret string
	expiry time.Duration
	issuer string
}

// NewManager creates a new tab token manager
func NewManager(secret string, expiry time.Duration) *Manager {
	return &Manager{
		secret: secret,
		expiry: expiry,
		issuer: "inkline",
	}
}

// NewTabID generates a fresh tab identifier
func NewTabID() string {
	return uuid.New().String()
}

// Issue generates a signed token carrying the given tab ID
func (m *Manager) Issue(tabID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		TabID: tabID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   tabID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secret))
}

// Verify validates a token and returns the tab ID it carries
func (m *Manager) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.TabID == "" {
		return "", fmt.Errorf("token missing tab ID")
	}

	return claims.TabID, nil
}
