package services

import (
	"context"
	"testing"

	"deptsurvey/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvision_Idempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	seed := Seed{
		Departments:   []string{"IT", " HR ", "", "it"},
		AdminUsername: "admin",
		AdminPassword: "changeme",
	}

	require.NoError(t, Provision(ctx, e.departments, e.users, seed, e.log))
	require.NoError(t, Provision(ctx, e.departments, e.users, seed, e.log))

	depts, err := e.departments.List(ctx)
	require.NoError(t, err)
	require.Len(t, depts, 2)
	assert.Equal(t, "HR", depts[0].Name)

	admin, err := e.users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin@localhost", admin.Email)
	assert.True(t, utils.IsAdminRole(admin.Role))
	assert.True(t, utils.ValidatePassword(admin.HashedPassword, "changeme"))

	users, err := e.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestProvision_NoAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, Provision(ctx, e.departments, e.users, Seed{Departments: []string{"Ops"}}, e.log))
	users, err := e.users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
