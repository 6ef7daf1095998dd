package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeAdminRequiresEmail(t *testing.T) {
	cmd := newCommand()
	cmd.SetArgs([]string{"--email", "   "})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()

	assert.EqualError(t, err, "--email is required")
}
