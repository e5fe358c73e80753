package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"officedesk/internal/models"
	"officedesk/internal/session"
)

var (
	secret = []byte("test-secret")
	now    = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
)

func mint(t *testing.T, sess session.Session) string {
	t.Helper()
	token, err := session.Issue(secret, sess)
	require.NoError(t, err)
	return token
}

func TestParser_VerifiedToken(t *testing.T) {
	token := mint(t, session.Session{UserID: "42", Name: "Lan", Role: models.RoleLeader, ExpiresAt: now.Add(time.Hour)})

	sess, err := session.NewParser(string(secret)).FromHeader("Bearer "+token, now)

	require.NoError(t, err)
	assert.Equal(t, "42", sess.UserID)
	assert.Equal(t, "Lan", sess.Name)
	assert.Equal(t, models.RoleLeader, sess.Role)
	assert.Equal(t, token, sess.Token)
	assert.Equal(t, "Bearer "+token, sess.AuthorizationHeader())
	assert.True(t, sess.ExpiresAt.Equal(now.Add(time.Hour)))
	assert.True(t, sess.Verified)
}

func TestParser_WrongSecret(t *testing.T) {
	token := mint(t, session.Session{UserID: "42"})

	_, err := session.NewParser("other").Parse(token, now)
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestParser_UnverifiedReadsClaims(t *testing.T) {
	token := mint(t, session.Session{UserID: "7", Role: "unknown-role"})

	sess, err := session.NewParser("").Parse(token, now)

	require.NoError(t, err)
	assert.Equal(t, "7", sess.UserID)
	assert.Equal(t, models.RoleStaff, sess.Role)
	assert.True(t, sess.ExpiresAt.IsZero())
	assert.False(t, sess.Verified)
}

func TestParser_Expiry(t *testing.T) {
	token := mint(t, session.Session{UserID: "42", ExpiresAt: now.Add(time.Minute)})

	for _, p := range []*session.Parser{session.NewParser(string(secret)), session.NewParser("")} {
		_, err := p.Parse(token, now)
		require.NoError(t, err)

		_, err = p.Parse(token, now.Add(2*time.Minute))
		assert.ErrorIs(t, err, session.ErrExpired)
	}
}

func TestParser_NumericUserIDClaim(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 15, "role": "admin"}).SignedString(secret)
	require.NoError(t, err)

	sess, err := session.NewParser(string(secret)).Parse(token, now)

	require.NoError(t, err)
	assert.Equal(t, "15", sess.UserID)
	assert.Equal(t, models.RoleAdmin, sess.Role)
}

func TestParser_Rejects(t *testing.T) {
	p := session.NewParser(string(secret))

	_, err := p.FromHeader("", now)
	assert.ErrorIs(t, err, session.ErrMissingToken)

	_, err = p.FromHeader("Basic abc", now)
	assert.ErrorIs(t, err, session.ErrMissingToken)

	_, err = p.FromHeader("Bearer not-a-jwt", now)
	assert.ErrorIs(t, err, session.ErrInvalidToken)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin"}).SignedString(secret)
	require.NoError(t, err)
	_, err = p.Parse(noSubject, now)
	assert.ErrorIs(t, err, session.ErrInvalidToken)
}

func TestSession_Expired(t *testing.T) {
	assert.False(t, session.Session{}.Expired(now))
	assert.False(t, session.Session{ExpiresAt: now.Add(time.Second)}.Expired(now))
	assert.True(t, session.Session{ExpiresAt: now}.Expired(now))
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := session.FromContext(context.Background())
	assert.False(t, ok)

	ctx := session.WithSession(context.Background(), session.Session{UserID: "9"})
	sess, ok := session.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "9", sess.UserID)
}
