package db

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@example.com", NormalizeEmail("  Ada@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestUser_PublicOmitsHash(t *testing.T) {
	u := &User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", PasswordHash: "secret", Points: 120, Level: 2}

	pub := u.Public()
	assert.Equal(t, u.ID, pub.ID)
	assert.Equal(t, 120, pub.Points)
	assert.NotNil(t, pub.Badges)
	assert.Empty(t, pub.Badges)
}
