package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersScript = `
steps:
  - {op: kv.add, key: users, args: [table]}
  - {op: table.addfield, key: users, args: [id, int, primary]}
  - {op: table.addfield, key: users, args: [name, text]}
  - {op: table.add, key: users, args: ["1,John"]}
  - {op: table.add, key: users, args: ["2,Jane"]}
  - {op: table.get, key: users, args: [name, "1"]}
  - {op: list.rpush, key: queue, args: [a, b]}
  - {op: list.lpop, key: queue}
`

func TestRunCommand(t *testing.T) {
	tests := []struct {
		name        string
		script      string
		json        bool
		cont        bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:   "users table",
			script: usersScript,
			wantContain: []string{
				"[4] table.add users: 1",
				"[5] table.get users: Jane",
				"[7] list.lpop queue: a",
				"8 step(s), 0 failed, 2 key(s)",
			},
		},
		{
			name:        "json output",
			script:      usersScript,
			json:        true,
			wantContain: []string{`"op": "table.get"`, `"output": "Jane"`},
		},
		{
			name: "stops at first error",
			script: `
steps:
  - {op: stream.set, key: s, args: [x]}
  - {op: list.lpop, key: s}
  - {op: stream.get, key: s}
`,
			wantErr:     true,
			wantContain: []string{"[1] list.lpop s: error:", "2 step(s), 1 failed"},
		},
		{
			name: "continue after error",
			script: `
steps:
  - {op: stream.set, key: s, args: [x]}
  - {op: bogus.op, key: s}
  - {op: stream.get, key: s}
`,
			cont:        true,
			wantErr:     true,
			wantContain: []string{"[2] stream.get s: x", "3 step(s), 1 failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			jsonOut = tt.json
			runContinue = tt.cont
			path := writeFile(t, "script.yaml", tt.script)

			output, err := captureOutput(t, func() error {
				return runRun([]string{path})
			})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestRunCommand_JSONCarriesErrors(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	path := writeFile(t, "script.yaml", `
continue_on_error: true
steps:
  - {op: kv.find, key: missing}
`)
	output, err := captureOutput(t, func() error {
		return runRun([]string{path})
	})
	require.Error(t, err)

	var results []stepResult
	require.NoError(t, json.Unmarshal([]byte(output), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "kv.find", results[0].Op)
	assert.NotEmpty(t, results[0].Error)
}

func TestRunCommand_MissingScript(t *testing.T) {
	resetFlags(t)
	_, err := captureOutput(t, func() error {
		return runRun([]string{"/nonexistent/script.yaml"})
	})
	require.Error(t, err)
}
