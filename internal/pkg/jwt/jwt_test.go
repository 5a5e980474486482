package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	svc := New("secret", time.Hour, "identity")

	token, err := svc.Issue(42, "a@b.c")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
}

func TestParse_Rejects(t *testing.T) {
	svc := New("secret", time.Hour, "identity")

	other, err := New("other", time.Hour, "identity").Issue(1, "")
	require.NoError(t, err)
	_, err = svc.Parse(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongIssuer, err := New("secret", time.Hour, "someone-else").Issue(1, "")
	require.NoError(t, err)
	_, err = svc.Parse(wrongIssuer)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := New("secret", -time.Minute, "identity").Issue(1, "")
	require.NoError(t, err)
	_, err = svc.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
