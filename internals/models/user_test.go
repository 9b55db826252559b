package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPasswordHashes(t *testing.T) {
	var u User
	require.NoError(t, u.SetPassword("secret1"))

	assert.NotEqual(t, "secret1", u.Password)
	assert.NotEmpty(t, u.Password)
}

func TestCheckPassword(t *testing.T) {
	var u User
	require.NoError(t, u.SetPassword("secret1"))

	assert.True(t, u.CheckPassword("secret1"))
	assert.False(t, u.CheckPassword("secret2"))
	assert.False(t, u.CheckPassword(""))
}

func TestCheckPasswordFederatedAccount(t *testing.T) {
	// A federated-only account has no digest at all; comparison must
	// return false rather than erroring.
	googleID := "google-sub-123"
	u := User{Email: "alice@x.com", GoogleID: &googleID, AuthProvider: ProviderGoogle}

	assert.False(t, u.CheckPassword("anything"))
}

func TestProject(t *testing.T) {
	u := User{Username: "alice", Email: "alice@x.com", Role: RoleUser, IsVerified: true}
	u.ID = 7

	p := u.Project()
	assert.EqualValues(t, 7, p.ID)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "alice@x.com", p.Email)
	assert.True(t, p.IsVerified)
	assert.Equal(t, RoleUser, p.Role)
}
