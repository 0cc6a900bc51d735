package helpers

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure classes. The middleware surfaces these as advisory
// detail; none of them ever carry the secret or the raw token.
var (
	ErrTokenMalformed  = errors.New("token malformed")
	ErrTokenSignature  = errors.New("token signature invalid")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenBadSubject = errors.New("token subject invalid")
)

// JWTManager verifies (and, for tests and tooling, issues) HS256 tokens.
// The user id rides in the registered `sub` claim.
type JWTManager struct {
	Secret    []byte
	AccessTTL time.Duration
}

func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{Secret: []byte(secret), AccessTTL: accessTTL}
}

// Claims is the verified view of a token: the subject as a numeric user id
// plus the registered timestamps.
type Claims struct {
	UserID   int64
	IssuedAt time.Time
	Expiry   time.Time
}

func (m *JWTManager) Generate(userID int64) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.AccessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(m.Secret)
	return s, exp, err
}

// Verify parses and validates the token and returns its claims. Failures are
// classified so callers can report why a present token was rejected.
func (m *JWTManager) Verify(tokenStr string) (*Claims, error) {
	reg := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, reg, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.Secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !tkn.Valid {
		return nil, ErrTokenSignature
	}

	uid, err := strconv.ParseInt(reg.Subject, 10, 64)
	if err != nil || uid <= 0 {
		return nil, ErrTokenBadSubject
	}
	c := &Claims{UserID: uid}
	if reg.IssuedAt != nil {
		c.IssuedAt = reg.IssuedAt.Time
	}
	if reg.ExpiresAt != nil {
		c.Expiry = reg.ExpiresAt.Time
	}
	return c, nil
}
