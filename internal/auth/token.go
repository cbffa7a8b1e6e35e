package auth

import (
	"fmt"
	"strconv"
	"time"

	"tintuc/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind discriminates access tokens from refresh tokens. A token of one
// kind is never accepted where the other is required.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

const (
	issuer   = "tintuc-api"
	audience = "tintuc-client"
)

// Claims is the payload embedded in every issued token.
type Claims struct {
	Email string    `json:"email"`
	Role  string    `json:"role"`
	Kind  TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim as the user ID.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid subject claim: %w", err)
	}
	return uint(id), nil
}

// TokenManager issues and verifies signed tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager creates a TokenManager. Zero TTLs fall back to 15 minutes
// for access and 7 days for refresh tokens.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Issue signs a token of the given kind for the user.
func (m *TokenManager) Issue(user *models.User, kind TokenKind) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("JWT secret not configured")
	}

	ttl := m.accessTTL
	if kind == TokenRefresh {
		ttl = m.refreshTTL
	}

	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Role:  user.Role,
		Kind:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateJTI(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// IssuePair issues an access+refresh token pair for the user.
func (m *TokenManager) IssuePair(user *models.User) (access, refresh string, err error) {
	if access, err = m.Issue(user, TokenAccess); err != nil {
		return "", "", err
	}
	if refresh, err = m.Issue(user, TokenRefresh); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Verify parses and validates a token and enforces the expected kind.
// Malformed, expired, wrong-signature, and wrong-kind tokens all surface as
// an unauthorized AppError.
func (m *TokenManager) Verify(tokenString string, wantKind TokenKind) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	if claims.Kind != wantKind {
		return nil, models.NewUnauthorizedError("Invalid token type")
	}
	return claims, nil
}

// generateJTI creates a unique JWT ID to prevent replay attacks.
func generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
