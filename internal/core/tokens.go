package core

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// IssuePasswordToken creates a single-use password setup token for userID.
// Issuing a new token revokes the previous one.
func IssuePasswordToken(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	token, err := RandomToken(20)
	if err != nil {
		return "", err
	}

	ownerKey := passwordOwnerKey(userID)
	if old, err := TokenDB.Get(ctx, ownerKey).Result(); err == nil {
		TokenDB.Del(ctx, "pwtoken:"+old)
	}

	digest := tokenDigest(token)
	pipe := TokenDB.TxPipeline()
	pipe.Set(ctx, "pwtoken:"+digest, userID, ttl)
	pipe.Set(ctx, ownerKey, digest, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return token, nil
}

// RevokePasswordToken drops any outstanding setup token of userID.
func RevokePasswordToken(ctx context.Context, userID int64) error {
	ownerKey := passwordOwnerKey(userID)
	digest, err := TokenDB.GetDel(ctx, ownerKey).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	return TokenDB.Del(ctx, "pwtoken:"+digest).Err()
}

func passwordOwnerKey(userID int64) string {
	return "pwtoken_user:" + strconv.FormatInt(userID, 10)
}

// RedeemPasswordToken consumes token and returns the user it was issued for.
func RedeemPasswordToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	raw, err := TokenDB.GetDel(ctx, "pwtoken:"+tokenDigest(token)).Result()
	if err == redis.Nil {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt password token: %w", err)
	}
	TokenDB.Del(ctx, passwordOwnerKey(id))
	return id, nil
}

type Session struct {
	UserID    int64  `redis:"user_id"`
	Login     string `redis:"login"`
	IP        string `redis:"ip"`
	Status    string `redis:"status"`
	CreatedAt int64  `redis:"created_at"`
}

func IssueSession(ctx context.Context, user User, ip string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	key := sessionPrefix + token
	err := TokenDB.HSet(ctx, key, map[string]interface{}{
		"user_id":    user.ID,
		"login":      user.Login,
		"ip":         ip,
		"status":     "valid",
		"created_at": time.Now().Unix(),
	}).Err()
	if err != nil {
		return "", err
	}
	return token, TokenDB.Expire(ctx, key, ttl).Err()
}

func GetSession(ctx context.Context, token string) (Session, error) {
	var s Session
	if err := TokenDB.HGetAll(ctx, sessionPrefix+token).Scan(&s); err != nil {
		return s, err
	}
	if s.Status != "valid" {
		return s, fmt.Errorf("session: %w", ErrNotFound)
	}
	return s, nil
}

func DeleteSession(ctx context.Context, token string) error {
	return TokenDB.Del(ctx, sessionPrefix+token).Err()
}
