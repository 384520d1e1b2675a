// Package auth issues and verifies access credentials. The rest of the
// backend only sees the Verifier interface and the user id it yields.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sociable/messenger-backend/faults"
)

const tokenTTL = 2 * time.Hour

// Verifier validates a bearer credential and returns the user id it was
// issued for.
type Verifier interface {
	Verify(credential string) (uint, error)
}

// JWTVerifier verifies HS256 access tokens minted by GenAccessToken.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) Verify(credential string) (uint, error) {
	t, err := jwt.Parse(credential, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, faults.Wrap(faults.Unauthenticated, "credential expired", err)
		}
		return 0, faults.Wrap(faults.Unauthenticated, "invalid credential", err)
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return 0, faults.New(faults.Unauthenticated, "invalid credential")
	}
	sub, _ := claims["sub"].(string)
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, faults.New(faults.Unauthenticated, "invalid credential")
	}
	return uint(uid), nil
}

// GenAccessToken mints a short-lived HS256 token for the user.
func GenAccessToken(secret []byte, userID uint) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    "messenger-backend",
		Subject:   strconv.FormatUint(uint64(userID), 10),
	})
	return token.SignedString(secret)
}

func HashPassword(pass string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, pass string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
}
