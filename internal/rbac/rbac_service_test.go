package rbac

import (
	"testing"

	"go-tams/internal/domain"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/stretchr/testify/assert"
)

// =========================================
// Helper: Test Enforcer
// =========================================

func newTestEnforcer(t *testing.T) *casbin.Enforcer {
	modelText := `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

	m, err := model.NewModelFromString(modelText)
	assert.NoError(t, err)

	e, err := casbin.NewEnforcer(m)
	assert.NoError(t, err)

	_, err = e.AddPolicies([][]string{
		{"student", "application", "submit"},
		{"student", "salary", "read"},
		{"faculty", "application", "review"},
		{"faculty", "salary", "generate"},
		{"admin", "salary", "manage"},
	})
	assert.NoError(t, err)

	_, err = e.AddGroupingPolicies([][]string{
		{"admin", "faculty"},
		{"admin", "student"},
	})
	assert.NoError(t, err)

	return e
}

// =========================================
// TEST: Enforce
// =========================================

func TestRBACService_Enforce(t *testing.T) {
	service := NewService(newTestEnforcer(t))

	t.Run("direct policy allowed", func(t *testing.T) {
		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     "student",
			Resource: "application",
			Action:   "submit",
		})
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("missing policy denied", func(t *testing.T) {
		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     "student",
			Resource: "application",
			Action:   "review",
		})
		assert.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("admin inherits faculty and student", func(t *testing.T) {
		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     "admin",
			Resource: "salary",
			Action:   "generate",
		})
		assert.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = service.Enforce(domain.EnforceRequest{
			Role:     "admin",
			Resource: "application",
			Action:   "submit",
		})
		assert.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("faculty does not get admin-only action", func(t *testing.T) {
		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     "faculty",
			Resource: "salary",
			Action:   "manage",
		})
		assert.NoError(t, err)
		assert.False(t, allowed)
	})
}

// =========================================
// TEST: ListPermissions
// =========================================

func TestRBACService_ListPermissions(t *testing.T) {
	service := NewService(newTestEnforcer(t))

	perms, err := service.ListPermissions("admin")
	assert.NoError(t, err)

	var hasManage, hasInheritedSubmit bool
	for _, p := range perms {
		if p.Resource == "salary" && p.Action == "manage" {
			hasManage = true
		}
		if p.Resource == "application" && p.Action == "submit" {
			hasInheritedSubmit = true
		}
	}
	assert.True(t, hasManage)
	assert.True(t, hasInheritedSubmit)
}
