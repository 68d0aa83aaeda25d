package infrastructure

import (
	"testing"

	"barrierbet/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, hasher.Compare(hash, "hunter22"))
	assert.ErrorIs(t, hasher.Compare(hash, "hunter23"), domain.ErrInvalidCredentials)
	assert.Error(t, hasher.Compare("not-a-hash", "hunter22"))
}
