package cmd

import (
	"bytes"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

const listsProblem = "../problem/testdata/lists.yaml"

func execute(t *testing.T, c *cobra.Command, args ...string) string {
	t.Helper()
	out := &bytes.Buffer{}
	c.SetOut(out)
	c.SetErr(out)
	c.SetArgs(append([]string{"--color", "never"}, args...))
	require.NoError(t, c.Execute())
	return out.String()
}

func TestSolveCmd(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name: "occurrences and casts",
			args: []string{"--all=false", "--dump=false", listsProblem},
			contains: []string{
				"ArrayList (to) List",
				"Main.java",
				"12+9",
				"30+9",
				"150+11",
				"obsolete cast to List",
				"3 occurrences, 1 obsolete casts",
			},
			excludes: []string{"80+9", "Pops"},
		},
		{
			name:     "kept locations",
			args:     []string{"--all", "--dump=false", listsProblem},
			contains: []string{"80+9", "[Main.run()/sorted:ArrayList]"},
		},
		{
			name:     "dump",
			args:     []string{"--all=false", "--dump", listsProblem},
			contains: []string{"statistics", "Pops:", "estimates", "{ArrayList, List}"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := execute(t, SolveCmd, tc.args...)
			for _, s := range tc.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tc.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestInspectCmd(t *testing.T) {
	out := execute(t, InspectCmd, listsProblem)
	assert.Contains(t, out, "variables (6)")
	assert.Contains(t, out, "constraints (2)")
	assert.Contains(t, out, "[Main.make(int)] <= [Main#items:ArrayList]")
	assert.Contains(t, out, "Immutable[ArrayList]")
}

func TestUnknownColorMode(t *testing.T) {
	SolveCmd.SetArgs([]string{"--color", "sometimes", listsProblem})
	SolveCmd.SetOut(&bytes.Buffer{})
	SolveCmd.SetErr(&bytes.Buffer{})
	err := SolveCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown color mode")
}

func TestWithoutColor(t *testing.T) {
	withoutColor(func() {
		assert.Equal(t, "(to)", extra("to"))
		assert.Equal(t, "List", rewritten("List"))
	})
}
