package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordTokens(t *testing.T) {
	s := setupRedis(t)
	ctx := context.Background()

	token, err := IssuePasswordToken(ctx, 42, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Only the digest is stored
	assert.False(t, s.Exists("pwtoken:"+token))

	id, err := RedeemPasswordToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = RedeemPasswordToken(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken, "tokens are single use")

	_, err = RedeemPasswordToken(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidToken)

	t.Run("reissue revokes the previous token", func(t *testing.T) {
		first, err := IssuePasswordToken(ctx, 7, time.Hour)
		require.NoError(t, err)
		second, err := IssuePasswordToken(ctx, 7, time.Hour)
		require.NoError(t, err)

		_, err = RedeemPasswordToken(ctx, first)
		assert.ErrorIs(t, err, ErrInvalidToken)

		id, err := RedeemPasswordToken(ctx, second)
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
	})

	t.Run("revoke", func(t *testing.T) {
		token, err := IssuePasswordToken(ctx, 11, time.Hour)
		require.NoError(t, err)
		require.NoError(t, RevokePasswordToken(ctx, 11))
		require.NoError(t, RevokePasswordToken(ctx, 11), "nothing left to revoke")

		_, err = RedeemPasswordToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expiry", func(t *testing.T) {
		token, err := IssuePasswordToken(ctx, 9, time.Minute)
		require.NoError(t, err)
		s.FastForward(2 * time.Minute)
		_, err = RedeemPasswordToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSessions(t *testing.T) {
	setupRedis(t)
	ctx := context.Background()

	user := User{ID: 3, Login: "admin"}
	token, err := IssueSession(ctx, user, "10.0.0.1", time.Hour)
	require.NoError(t, err)

	sess, err := GetSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), sess.UserID)
	assert.Equal(t, "admin", sess.Login)
	assert.Equal(t, "10.0.0.1", sess.IP)

	require.NoError(t, DeleteSession(ctx, token))
	_, err = GetSession(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}
