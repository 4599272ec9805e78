package core

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type User struct {
	ID         int64  `json:"id" redis:"id"`
	Login      string `json:"login" redis:"login"`
	Email      string `json:"email" redis:"email"`
	IsAdmin    string `json:"is_admin" redis:"is_admin"`
	Password   string `json:"-" redis:"password"`
	TOTPSecret string `json:"-" redis:"totp_secret"`
	CreatedAt  int64  `json:"created_at" redis:"created_at"`
}

func (u User) Admin() bool { return u.IsAdmin == "1" }

func userKey(id int64) string { return "user:" + strconv.FormatInt(id, 10) }

func ListUsers(ctx context.Context) ([]User, error) {
	ids, err := UserDB.SMembers(ctx, "users").Result()
	if err != nil {
		return nil, err
	}

	var users []User
	for _, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		user, err := GetUser(ctx, id)
		if err == nil {
			users = append(users, user)
		}
	}
	return users, nil
}

func GetUser(ctx context.Context, id int64) (User, error) {
	var user User
	if err := UserDB.HGetAll(ctx, userKey(id)).Scan(&user); err != nil {
		return user, err
	}
	if user.Login == "" {
		return user, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, nil
}

func GetUserByLogin(ctx context.Context, login string) (User, error) {
	raw, err := UserDB.Get(ctx, "login:"+login).Result()
	if err == redis.Nil {
		return User{}, fmt.Errorf("user %q: %w", login, ErrNotFound)
	}
	if err != nil {
		return User{}, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return User{}, fmt.Errorf("corrupt login index for %q: %w", login, err)
	}
	return GetUser(ctx, id)
}

// ParseEmail returns the bare address of a single RFC 5322 mailbox.
func ParseEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", fmt.Errorf("%q: %w", email, ErrInvalidEmail)
	}
	return addr.Address, nil
}

// CreateUser stores a user without a password. Admins set theirs through a
// password setup token.
func CreateUser(ctx context.Context, login, email string, isAdmin bool) (User, error) {
	email, err := ParseEmail(email)
	if err != nil {
		return User{}, err
	}

	id, err := UserDB.Incr(ctx, "next_user_id").Result()
	if err != nil {
		return User{}, err
	}

	claimed, err := UserDB.SetNX(ctx, "login:"+login, id, 0).Result()
	if err != nil {
		return User{}, err
	}
	if !claimed {
		return User{}, ErrUserExists
	}

	adminVal := "0"
	if isAdmin {
		adminVal = "1"
	}

	user := User{
		ID:        id,
		Login:     login,
		Email:     email,
		IsAdmin:   adminVal,
		CreatedAt: time.Now().Unix(),
	}
	err = UserDB.HSet(ctx, userKey(id), map[string]interface{}{
		"id":         user.ID,
		"login":      user.Login,
		"email":      user.Email,
		"is_admin":   user.IsAdmin,
		"created_at": user.CreatedAt,
	}).Err()
	if err != nil {
		UserDB.Del(ctx, "login:"+login)
		return User{}, err
	}

	return user, UserDB.SAdd(ctx, "users", id).Err()
}

func DeleteUser(ctx context.Context, id int64) error {
	user, err := GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := UserDB.Del(ctx, userKey(id), "login:"+user.Login).Err(); err != nil {
		return err
	}
	if err := UserDB.SRem(ctx, "users", id).Err(); err != nil {
		return err
	}
	return RevokePasswordToken(ctx, id)
}

func UpdateUser(ctx context.Context, id int64, updates map[string]interface{}) error {
	return UserDB.HSet(ctx, userKey(id), updates).Err()
}

func SetPassword(ctx context.Context, id int64, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return UpdateUser(ctx, id, map[string]interface{}{"password": hash})
}

// ResolveLogin returns the login for a user id, or ErrNotFound once the
// account is gone.
func ResolveLogin(ctx context.Context, id int64) (string, error) {
	user, err := GetUser(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Login, nil
}
