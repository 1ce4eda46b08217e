package auth

import (
	"testing"

	domainerrors "cravlr/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasher()

	password := "correct-horse-battery-1"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	// Test correct password
	assert.True(t, hasher.Check(password, hash))

	// Test incorrect password
	assert.False(t, hasher.Check("wrong-password-2", hash))

	// Test empty password
	assert.False(t, hasher.Check("", hash))

	// Test with invalid hash
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	hasher := NewBcryptHasher()

	validPasswords := []string{
		"tacotuesday1",
		"Br1sket4life",
		"queso and chips 9",
	}
	for _, password := range validPasswords {
		assert.NoError(t, hasher.ValidatePasswordStrength(password), "expected no error for: %s", password)
	}

	invalidPasswords := []string{
		"short1",       // Too short
		"lettersonly",  // No digit
		"12345678",     // No letter
		"",             // Empty
		"!!!!####2222", // No letter
	}
	for _, password := range invalidPasswords {
		err := hasher.ValidatePasswordStrength(password)
		assert.Error(t, err, "expected error for: %s", password)
		assert.True(t, errors.Is(err, domainerrors.ErrWeakPassword))
	}
}
