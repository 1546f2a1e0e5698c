package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"admin", RoleAdmin, true},
		{" user ", RoleUser, true},
		{"editor", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
	}
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	assert.True(t, Anonymous.IsAnonymous())
	assert.False(t, Anonymous.IsAdmin())
	assert.Nil(t, Anonymous.CallerID())

	admin := Identity{UserID: 7, Email: "a@example.com", Role: RoleAdmin}
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, uint(7), *admin.CallerID())

	user := Identity{UserID: 8, Role: RoleUser}
	assert.False(t, user.IsAdmin())

	// a role without a user id is still anonymous
	assert.False(t, Identity{Role: RoleAdmin}.IsAdmin())
}
