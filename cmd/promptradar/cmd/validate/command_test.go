package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/promptradar/cmd/application"
	"github.com/agentstation/promptradar/pkg/errors"
)

const toolsYAML = `tools:
  - id: cursor
    name: Cursor
    aliases: [cursor-ide]
    sources:
      - type: github_file
        url: https://raw.githubusercontent.com/example/prompts/main/cursor.txt
        weight: 0.9
      - type: forum_post
        url: https://forum.example.com/cursor
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(mock *application.Mock, args ...string) (string, error) {
	cmd := NewCommand(mock)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	path := writeFile(t, "tools.yaml", toolsYAML)
	mock := &application.Mock{ToolsFileValue: path}

	out, err := run(mock)
	require.NoError(t, err)
	assert.Contains(t, out, "warning: ")
	assert.Contains(t, out, "forum_post")
	assert.Contains(t, out, path+" is valid: 1 tool(s), 2 source(s).")
	assert.Contains(t, out, "cursor-ide")
}

func TestValidateCommandJSON(t *testing.T) {
	path := writeFile(t, "tools.yaml", toolsYAML)
	mock := &application.Mock{OutputFormatFunc: func() string { return "json" }}

	out, err := run(mock, path)
	require.NoError(t, err)

	var result Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, path, result.File)
	assert.Equal(t, 1, result.Tools)
	assert.Equal(t, 2, result.Sources)
	assert.Len(t, result.Warnings, 1)
}

func TestValidateCommandInvalid(t *testing.T) {
	path := writeFile(t, "tools.json", `{"tools": [{"id": "", "name": "", "sources": []}]}`)

	_, err := run(&application.Mock{}, path)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	_, err = run(&application.Mock{}, filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
