package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"barrierbet/domain"
	"barrierbet/domain/entities"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "barrierbet"

// Claims are the registered claims plus the caller's username and role
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// JWTIdentityProvider issues and verifies HS256 bearer tokens
type JWTIdentityProvider struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTIdentityProvider creates an identity provider signing with secret
func NewJWTIdentityProvider(secret string, ttl time.Duration) *JWTIdentityProvider {
	return &JWTIdentityProvider{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueToken signs a token identifying the user
func (p *JWTIdentityProvider) IssueToken(user *entities.User) (string, error) {
	now := p.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
		},
		Username: user.Username,
		Role:     user.Role(),
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token for user %s: %w", user.ID, err)
	}
	return signed, nil
}

// VerifyToken checks the signature and expiry and returns the identity.
// Every failure maps to domain.ErrInvalidToken.
func (p *JWTIdentityProvider) VerifyToken(ctx context.Context, tokenString string) (*entities.Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return p.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", domain.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, domain.ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject %q: %w", claims.Subject, domain.ErrInvalidToken)
	}

	role := claims.Role
	if role != entities.RoleAdmin {
		role = entities.RolePlayer
	}
	return &entities.Identity{
		UserID:   userID,
		Username: claims.Username,
		Role:     role,
	}, nil
}
