package version

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/promptradar/cmd/application"
)

func TestVersionCommand(t *testing.T) {
	mock := &application.Mock{
		VersionFunc: func() string { return "1.2.3" },
		CommitFunc:  func() string { return "abc123" },
	}
	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "promptradar version 1.2.3\n")
	assert.Contains(t, out.String(), "commit: abc123\n")
	assert.Contains(t, out.String(), "built by: unknown\n")
}
