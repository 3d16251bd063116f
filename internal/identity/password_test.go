package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainPasswords(t *testing.T) {
	p := PlainPasswords{}
	stored, err := p.Hash("secret")
	require.NoError(t, err)
	assert.Equal(t, "secret", stored)
	assert.True(t, p.Matches(stored, "secret"))
	assert.False(t, p.Matches(stored, "Secret"))
	assert.False(t, p.Matches(stored, "secret "))
}

func TestBcryptPasswords(t *testing.T) {
	p := BcryptPasswords{Cost: 4}
	stored, err := p.Hash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", stored)
	assert.True(t, p.Matches(stored, "secret"))
	assert.False(t, p.Matches(stored, "wrong"))
}

func TestPasswordsFor(t *testing.T) {
	p, err := PasswordsFor("")
	require.NoError(t, err)
	assert.IsType(t, PlainPasswords{}, p)

	p, err = PasswordsFor("bcrypt")
	require.NoError(t, err)
	assert.IsType(t, BcryptPasswords{}, p)

	_, err = PasswordsFor("md5")
	assert.Error(t, err)
}
