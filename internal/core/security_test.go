package core

import (
	"testing"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealToken(t *testing.T) {
	key := "12345678901234567890123456789012"
	plaintext := "session-token-value"

	sealed, err := SealToken(plaintext, key)
	require.NoError(t, err)
	assert.NotContains(t, sealed, plaintext)

	opened, err := OpenToken(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)

	t.Run("wrong key", func(t *testing.T) {
		_, err := OpenToken(sealed, "abcdefghijklmnopqrstuvwxyz123456")
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := OpenToken("not-base64!!", key)
		assert.Error(t, err)
		_, err = OpenToken("YQ", key)
		assert.Error(t, err)
	})
}

func TestPasswordHashing(t *testing.T) {
	password := "mypassword"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Hashing failed: %v", err)
	}

	if !CheckPasswordHash(password, hash) {
		t.Error("Password check failed for correct password")
	}

	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("Password check succeeded for wrong password")
	}

	if CheckPasswordHash("", "") {
		t.Error("Empty hash must never match")
	}
}

func TestValidatePassword(t *testing.T) {
	cfg := &Config{MinPasswordLength: 10}

	tests := []struct {
		password string
		valid    bool
	}{
		{"correct-horse-battery", true},
		{"abc123def4", true},
		{"short1!", false},
		{"onlyletterslong", false},
		{"1234567890123", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password, cfg)
		if tt.valid {
			assert.NoError(t, err, tt.password)
		} else {
			assert.Error(t, err, tt.password)
		}
	}
}

func TestValidateTOTP(t *testing.T) {
	assert.True(t, ValidateTOTP("", ""), "no secret means no second factor")

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "archivemail", AccountName: "admin"})
	require.NoError(t, err)

	assert.False(t, ValidateTOTP("000000x", key.Secret()))
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(16)
	require.NoError(t, err)
	b, err := RandomToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
