package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)
	assert.True(t, role.IsAdministrative())

	role, err = ParseRole("PARENT")
	require.NoError(t, err)
	assert.False(t, role.IsAdministrative())

	_, err = ParseRole("janitor")
	assert.Error(t, err)
}

func TestRoleJSON(t *testing.T) {
	payload, err := json.Marshal(Caller{UserID: "u-1", Role: RoleSuperAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":"u-1","role":"SUPERADMIN"}`, string(payload))

	var decoded Caller
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, RoleSuperAdmin, decoded.Role)
	assert.Equal(t, "UNKNOWN", RoleUnknown.String())
}
