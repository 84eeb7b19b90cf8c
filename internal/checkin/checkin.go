// Package checkin issues and verifies the signed tokens printed as QR codes on registrations.
package checkin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/skip2/go-qrcode"
)

const audience = "club-checkin"

var ErrInvalidTicket = errors.New("invalid check-in token")

type Ticket struct {
	RegistrationID string
	WorkshopID     string
	UserID         string
}

type ticketClaims struct {
	WorkshopID string `json:"wid"`
	UserID     string `json:"uid"`
	jwt.RegisteredClaims
}

type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Signer) Issue(t Ticket) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("check-in secret not configured")
	}
	now := s.now()
	claims := ticketClaims{
		WorkshopID: t.WorkshopID,
		UserID:     t.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   t.RegistrationID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign ticket: %w", err)
	}
	return signed, nil
}

func (s *Signer) Verify(token string) (Ticket, error) {
	var claims ticketClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Ticket{}, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if claims.Subject == "" || claims.WorkshopID == "" {
		return Ticket{}, ErrInvalidTicket
	}
	return Ticket{RegistrationID: claims.Subject, WorkshopID: claims.WorkshopID, UserID: claims.UserID}, nil
}

// QRCode renders content as a 256px PNG.
func QRCode(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
