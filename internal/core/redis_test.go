package core

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
)

func TestInitRedis(t *testing.T) {
	s := miniredis.RunT(t)

	cfg := &Config{
		RedisHost: "127.0.0.1",
		RedisPort: s.Port(),
	}

	err := InitRedis(context.Background(), cfg)
	assert.NoError(t, err)

	// Verify they point to different DBs
	assert.Equal(t, 0, UserDB.Options().DB)
	assert.Equal(t, 1, TokenDB.Options().DB)
	assert.Equal(t, 2, RateLimitDB.Options().DB)
	assert.Equal(t, 3, AuditDB.Options().DB)
	assert.Equal(t, 4, ContentDB.Options().DB)
}

func TestInitRedisUnreachable(t *testing.T) {
	s := miniredis.RunT(t)
	port := s.Port()
	s.Close()

	err := InitRedis(context.Background(), &Config{RedisHost: "127.0.0.1", RedisPort: port})
	assert.Error(t, err)
}
