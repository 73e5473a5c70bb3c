package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommandMetadata(t *testing.T) {
	assert.Equal(t, "dreamctl", rootCmd.Use)
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)

	for _, flag := range []string{"root", "verbose", "quiet", "log-format", "log-file"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing persistent flag %s", flag)
	}

	for _, name := range []string{"dist", "component", "search", "gen-doc"} {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
			}
		}
		assert.True(t, found, "missing subcommand %s", name)
	}
}

func TestDistCommandMetadata(t *testing.T) {
	subs := map[string]bool{}
	for _, sub := range distCmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, name := range []string{"list", "show", "validate", "clone", "new"} {
		assert.True(t, subs[name], "missing dist subcommand %s", name)
	}

	assert.NotNil(t, distListCmd.Flags().Lookup("json"))
	assert.NotNil(t, distCloneCmd.Flags().Lookup("display-name"))
}

func TestComponentCommandMetadata(t *testing.T) {
	subs := map[string]bool{}
	for _, sub := range componentCmd.Commands() {
		subs[sub.Name()] = true
	}
	for _, name := range []string{"list", "add", "remove"} {
		assert.True(t, subs[name], "missing component subcommand %s", name)
	}

	assert.NotNil(t, componentAddCmd.Flags().Lookup("card"))
	assert.NotNil(t, componentRemoveCmd.Flags().Lookup("force"))
	assert.NotNil(t, componentRemoveCmd.Flags().Lookup("prune"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "this is...", truncate("this is too long", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
