package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleNames(t *testing.T) {
	for in, want := range map[string]Role{
		"student":     RoleStudent,
		" Aluno ":     RoleStudent,
		"responsavel": RoleParent,
		"guardian":    RoleParent,
		"ADMIN":       RoleAdmin,
		"user":        RoleUser,
	} {
		got, ok := LookupRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
		assert.Equal(t, want, ParseRole(in), in)
	}

	_, ok := LookupRole("superadmin")
	assert.False(t, ok)
	assert.Equal(t, RoleUser, ParseRole("superadmin"))
}
