package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommands(t *testing.T) {
	root := newRootCmd(context.Background())

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"form", "register", "watch", "resume", "status"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "prefs", "surface", "debug"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestWatchAndStatusRequireCode(t *testing.T) {
	for _, name := range []string{"watch", "status"} {
		root := newRootCmd(context.Background())
		root.SetArgs([]string{name})
		root.SetOut(&discard{})
		root.SetErr(&discard{})
		require.Error(t, root.Execute(), name)
	}
}

func TestRegisterFlags(t *testing.T) {
	root := newRootCmd(context.Background())
	cmd, _, err := root.Find([]string{"register"})
	require.NoError(t, err)
	for _, flag := range []string{"first-name", "last-name", "phone", "email", "dni"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
