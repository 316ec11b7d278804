package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// SeatTokens issues and verifies HS256 credentials binding a seat to a session.
type SeatTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSeatTokens returns nil when secret is empty, which disables signed tokens.
func NewSeatTokens(secret string, ttl time.Duration, now func() time.Time) *SeatTokens {
	if secret == "" {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	return &SeatTokens{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue signs a token for seatID in sessionID.
func (t *SeatTokens) Issue(sessionID, seatID string) (string, error) {
	if t == nil {
		return "", fmt.Errorf("seat tokens are disabled")
	}
	if sessionID == "" || seatID == "" {
		return "", fmt.Errorf("session and seat are required")
	}

	now := t.now()
	claims := jwt.MapClaims{
		"sub": seatID,
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(t.ttl).Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks signature and expiry and returns the session and seat the token was issued for.
func (t *SeatTokens) Verify(tokenString string) (sessionID, seatID string, err error) {
	if t == nil {
		return "", "", fmt.Errorf("seat tokens are disabled")
	}
	// Expiry is checked below against the injected clock.
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: seat token: %v", ErrForbidden, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("%w: seat token is invalid", ErrForbidden)
	}
	if !claims.VerifyExpiresAt(t.now().Unix(), true) {
		return "", "", fmt.Errorf("%w: seat token expired", ErrForbidden)
	}

	sessionID, _ = claims["sid"].(string)
	seatID, _ = claims["sub"].(string)
	if sessionID == "" || seatID == "" {
		return "", "", fmt.Errorf("%w: seat token is missing claims", ErrForbidden)
	}
	return sessionID, seatID, nil
}
