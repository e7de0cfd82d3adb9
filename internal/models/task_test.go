package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTaskStatus(t *testing.T) {
	cases := map[string]TaskStatus{
		"COMP":        StatusCompleted,
		"completed":   StatusCompleted,
		" Testing ":   StatusTesting,
		"dev":         StatusDevelopment,
		"Development": StatusDevelopment,
		"STUCK":       StatusStuck,
	}
	for in, want := range cases {
		got, ok := ParseTaskStatus(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}

	_, ok := ParseTaskStatus("done")
	require.False(t, ok)
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("manager")
	require.True(t, ok)
	require.Equal(t, RoleManager, r)

	_, ok = ParseRole("owner")
	require.False(t, ok)
}
