package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequests_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     interface{ Validate() error }
		wantTag string
	}{
		{"register ok", &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "12345678"}, ""},
		{"register no name", &CreateUserRequest{Email: "ada@example.com", Password: "12345678"}, "required"},
		{"register long name", &CreateUserRequest{Name: strings.Repeat("a", 101), Email: "ada@example.com", Password: "12345678"}, "max"},
		{"register bad email", &CreateUserRequest{Name: "Ada", Email: "ada", Password: "12345678"}, "email"},
		{"register short password", &CreateUserRequest{Name: "Ada", Email: "ada@example.com", Password: "1234567"}, "min"},
		{"login ok", &LoginRequest{Email: "ada@example.com", Password: "x"}, ""},
		{"login no password", &LoginRequest{Email: "ada@example.com"}, "required"},
		{"login bad email", &LoginRequest{Email: "@", Password: "x"}, "email"},
		{"password ok", &UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "brand-new-pass"}, ""},
		{"password missing current", &UpdatePasswordRequest{NewPassword: "brand-new-pass"}, "required"},
		{"password new too short", &UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "short"}, "min"},
		{"profile ok", &UpdateProfileRequest{Name: "Ada Lovelace"}, ""},
		{"profile empty", &UpdateProfileRequest{}, "required"},
		{"profile long", &UpdateProfileRequest{Name: strings.Repeat("a", 101)}, "max"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), "'"+tt.wantTag+"'")
		})
	}
}

func TestLoginResponse_JSON(t *testing.T) {
	unlocked := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resp := LoginResponse{
		User: &User{
			ID:     uuid.New(),
			Name:   "Ada",
			Email:  "ada@example.com",
			Points: 150,
			Level:  2,
			Badges: []Badge{{ID: "novice", Name: "Novice Explorer", UnlockedAt: unlocked}},
		},
		Token:     "header.payload.signature",
		ExpiresAt: unlocked.Add(24 * time.Hour),
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var raw struct {
		User map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(150), raw.User["points"])
	assert.NotContains(t, raw.User, "password_hash")

	var back LoginResponse
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "header.payload.signature", back.Token)
	assert.Equal(t, []string{"novice"}, back.User.BadgeIDs())
}

func TestUser_BadgeIDsEmpty(t *testing.T) {
	u := &User{}
	assert.NotNil(t, u.BadgeIDs())
	assert.Empty(t, u.BadgeIDs())
}
