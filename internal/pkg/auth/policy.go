package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	domainModel "github.com/polkiloo/webpot/internal/domain/model"
)

const rbacModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.act == p.act
`

// Rule grants action to role and every role inheriting from it.
type Rule struct {
	Role   domainModel.UserRole
	Action string
}

// DefaultRules is the access table of the backend actions.
var DefaultRules = []Rule{
	{domainModel.RoleAnonymous, "register"},
	{domainModel.RoleAnonymous, "login"},
	{domainModel.RoleAnonymous, "verify_login_otp"},
	{domainModel.RoleAnonymous, "request_reset"},
	{domainModel.RoleAnonymous, "verify_reset"},
	{domainModel.RoleAnonymous, "order"},
	{domainModel.RoleAnonymous, "contact"},
	{domainModel.RoleAnonymous, "get_public_reviews"},
	{domainModel.RoleAnonymous, "admin_login"},
	{domainModel.RoleCustomer, "update_payment"},
	{domainModel.RoleCustomer, "submit_review"},
	{domainModel.RoleCustomer, "get_user_data"},
	{domainModel.RoleAdmin, "get_all_orders"},
	{domainModel.RoleAdmin, "get_all_users"},
	{domainModel.RoleAdmin, "get_all_reviews"},
	{domainModel.RoleAdmin, "update_status"},
	{domainModel.RoleAdmin, "ban_user"},
	{domainModel.RoleAdmin, "approve_review"},
}

// Policy decides whether a role may invoke an action.
type Policy struct {
	enforcer *casbin.Enforcer
}

// NewPolicy builds in-memory RBAC enforcer. Customers and admins inherit
// anonymous permissions; admins do not inherit customer ones.
func NewPolicy(rules []Rule) (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("policy model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("policy enforcer: %w", err)
	}
	for _, r := range rules {
		if _, err := e.AddPolicy(string(r.Role), r.Action); err != nil {
			return nil, fmt.Errorf("add rule %s/%s: %w", r.Role, r.Action, err)
		}
	}
	for _, role := range []domainModel.UserRole{domainModel.RoleCustomer, domainModel.RoleAdmin} {
		if _, err := e.AddGroupingPolicy(string(role), string(domainModel.RoleAnonymous)); err != nil {
			return nil, fmt.Errorf("add role %s: %w", role, err)
		}
	}
	return &Policy{enforcer: e}, nil
}

// Allowed reports whether role may invoke action. Unknown actions are denied.
func (p *Policy) Allowed(role domainModel.UserRole, action string) bool {
	ok, err := p.enforcer.Enforce(string(role), action)
	return err == nil && ok
}
