package auth

import (
	"context"
	"fmt"

	"github.com/destinyy00/skillswap/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the immutable binding record produced by a successful
// verification. It is created once at handshake and never mutated
// afterwards.
type Identity struct {
	SubjectID string
	Email     string
	Roles     []string
}

// IdentityVerifier turns an opaque bearer token into a verified subject
// identity. The verification call may itself fail or time out; both map to
// a verification failure for the caller.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// JWTVerifier validates tokens signed by our own TokenIssuer. It stands in
// the place a remote identity-provider call would occupy, which is why it
// honors context cancellation: a handshake abandoned mid-verification must
// not produce an identity.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the signature and expiration of a JWT string.
func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	if tokenString == "" {
		return Identity{}, errors.ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return Identity{}, errors.ErrInvalidToken
	}

	// A late result for an already-abandoned handshake must be discarded.
	if err := ctx.Err(); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}

	return Identity{
		SubjectID: claims.UserID,
		Email:     claims.Email,
		Roles:     claims.Roles,
	}, nil
}
