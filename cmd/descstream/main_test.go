package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "agent", "mcp", "demo", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCommand(t *testing.T) {
	assert.Equal(t, version+"\n", execute(t, "version"))
}

func TestDemoCommand(t *testing.T) {
	out := execute(t, "demo", "--config-dir", t.TempDir(), "--delay", "0", "--locales", "fr", "--log-level", "error")

	assert.Contains(t, out, "[en_US] title: This is a title ! ")
	assert.Contains(t, out, "[fr_FR] title: Ceci est un titre ! ")
	assert.Contains(t, out, "== en_US ==\n\n# title\n\nThis is a title !\n")
	assert.Contains(t, out, "== fr_FR ==")
	// The status is rendered in the presented locale.
	assert.Contains(t, out, "* fr_FR : 3/3 blocs remplis")
	assert.Contains(t, out, "en_UK : pas encore traduit")
}

func TestDemoCommand_UnknownLocale(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"demo", "--config-dir", t.TempDir(), "--delay", "0", "--locales", "de"})
	require.Error(t, root.Execute())
}
