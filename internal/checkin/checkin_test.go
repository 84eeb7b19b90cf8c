package checkin

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSigner(secret string, now time.Time) *Signer {
	s := NewSigner(secret, time.Hour)
	s.now = func() time.Time { return now }
	return s
}

func TestSigner_RoundTrip(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	s := fixedSigner("secret", now)
	want := Ticket{RegistrationID: "r1", WorkshopID: "w1", UserID: "u1"}

	token, err := s.Issue(want)
	require.NoError(t, err)

	got, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSigner_Rejects(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	token, err := fixedSigner("secret", now).Issue(Ticket{RegistrationID: "r1", WorkshopID: "w1"})
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := fixedSigner("other", now).Verify(token)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})
	t.Run("expired", func(t *testing.T) {
		_, err := fixedSigner("secret", now.Add(2*time.Hour)).Verify(token)
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := fixedSigner("secret", now).Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidTicket)
	})
}

func TestSigner_NoSecret(t *testing.T) {
	_, err := NewSigner("", time.Hour).Issue(Ticket{RegistrationID: "r1"})
	assert.Error(t, err)
}

func TestQRCode(t *testing.T) {
	png, err := QRCode("token")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
