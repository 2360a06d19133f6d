package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/webpot/internal/domain/model"
)

func TestDefaultPolicy(t *testing.T) {
	policy, err := NewPolicy(DefaultRules)
	require.NoError(t, err)

	cases := []struct {
		role    model.UserRole
		action  string
		allowed bool
	}{
		{model.RoleAnonymous, "login", true},
		{model.RoleAnonymous, "order", true},
		{model.RoleAnonymous, "get_user_data", false},
		{model.RoleAnonymous, "get_all_orders", false},
		{model.RoleCustomer, "login", true},
		{model.RoleCustomer, "update_payment", true},
		{model.RoleCustomer, "submit_review", true},
		{model.RoleCustomer, "ban_user", false},
		{model.RoleAdmin, "ban_user", true},
		{model.RoleAdmin, "get_all_users", true},
		{model.RoleAdmin, "get_public_reviews", true},
		{model.RoleAdmin, "update_payment", false},
		{model.RoleAdmin, "drop_tables", false},
	}
	for _, tc := range cases {
		t.Run(string(tc.role)+"/"+tc.action, func(t *testing.T) {
			assert.Equal(t, tc.allowed, policy.Allowed(tc.role, tc.action))
		})
	}
}

func TestPolicyUnknownRoleDenied(t *testing.T) {
	policy, err := NewPolicy([]Rule{{model.RoleAnonymous, "ping"}})
	require.NoError(t, err)
	assert.True(t, policy.Allowed(model.RoleCustomer, "ping"))
	assert.False(t, policy.Allowed(model.UserRole("guest"), "ping"))
}
