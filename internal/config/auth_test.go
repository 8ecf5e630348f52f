package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func envFunc(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestJWTConfig(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantHours int
		wantErr   bool
	}{
		{name: "default expiration", env: map[string]string{"JWT_SECRET": testSecret}, wantHours: 24},
		{name: "custom expiration", env: map[string]string{"JWT_SECRET": testSecret, "JWT_EXPIRATION_HOURS": "48"}, wantHours: 48},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}, wantErr: true},
		{name: "zero hours", env: map[string]string{"JWT_SECRET": testSecret, "JWT_EXPIRATION_HOURS": "0"}, wantErr: true},
		{name: "non-numeric hours", env: map[string]string{"JWT_SECRET": testSecret, "JWT_EXPIRATION_HOURS": "day"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := jwtConfigFrom(envFunc(tt.env))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHours, cfg.ExpirationHours)
			assert.Equal(t, time.Duration(tt.wantHours)*time.Hour, cfg.Expiration())
		})
	}
}

func TestJWTConfig_MissingSecret(t *testing.T) {
	_, err := jwtConfigFrom(envFunc(nil))

	var missing *MissingConfigurationError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "JWT_SECRET", missing.Key)
}

func TestPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		wantCost int
		wantErr  bool
	}{
		{name: "default", wantCost: DefaultBcryptCost},
		{name: "min", cost: "10", wantCost: 10},
		{name: "too low", cost: "9", wantErr: true},
		{name: "too high", cost: "15", wantErr: true},
		{name: "invalid", cost: "abc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := passwordConfigFrom(envFunc(map[string]string{"BCRYPT_COST": tt.cost}))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))

	again, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "salts differ")
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: MinBcryptCost, Pepper: "pepper-1"}
	hash, err := peppered.HashPassword("secret-password")
	require.NoError(t, err)
	assert.True(t, peppered.VerifyPassword("secret-password", hash))

	rotated := &PasswordConfig{BcryptCost: MinBcryptCost, Pepper: "pepper-2"}
	assert.False(t, rotated.VerifyPassword("secret-password", hash))

	plain := &PasswordConfig{BcryptCost: MinBcryptCost}
	assert.False(t, plain.VerifyPassword("secret-password", hash))
}

func TestPasswordConfig_TooLong(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: MinBcryptCost}
	_, err := cfg.HashPassword(strings.Repeat("a", 73))
	assert.Error(t, err)
}
