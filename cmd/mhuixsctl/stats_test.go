package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsCommand(t *testing.T) {
	resetFlags(t)
	path := writeFile(t, "script.yaml", usersScript+`
  - {op: bitvec.setrange, key: flags, args: ["0", "10", "1"]}
  - {op: stream.set, key: note, args: [hello]}
`)
	output, err := captureOutput(t, func() error {
		return runStats([]string{path})
	})
	require.NoError(t, err)
	assertContains(t, output, []string{
		"Keys:          4",
		"Buckets:       1,024",
		"Keys by type:",
		"table    1",
		"users",
		"2 fields",
		"flags",
		"10 set",
		"level fast",
	})
}

func TestStatsCommand_JSON(t *testing.T) {
	resetFlags(t)
	jsonOut = true
	path := writeFile(t, "script.yaml", usersScript)

	output, err := captureOutput(t, func() error {
		return runStats([]string{path})
	})
	require.NoError(t, err)
	assertJSON(t, output)

	var st StoreStats
	require.NoError(t, json.Unmarshal([]byte(output), &st))
	assert.Equal(t, 2, st.Keys)
	assert.Equal(t, 1, st.ByType["table"])
	assert.Equal(t, 1, st.ByType["list"])
	require.Len(t, st.KeyDetails, 2)
	assert.Equal(t, "users", st.KeyDetails[0].Name)
	assert.Equal(t, 2, st.KeyDetails[0].Items, "two rows")
	assert.Equal(t, "queue", st.KeyDetails[1].Name)
	assert.Equal(t, 1, st.KeyDetails[1].Items, "one element left after lpop")
}

func TestStatsCommand_PartialScript(t *testing.T) {
	resetFlags(t)
	path := writeFile(t, "script.yaml", `
steps:
  - {op: stream.set, key: a, args: [x]}
  - {op: kv.remove, key: missing}
`)
	output, err := captureOutput(t, func() error {
		return runStats([]string{path})
	})
	require.NoError(t, err, "stats reports whatever the script built")
	assertContains(t, output, []string{"Keys:          1"})
}

func TestStatsCommand_OutFile(t *testing.T) {
	resetFlags(t)
	quiet = true
	statsOut = filepath.Join(t.TempDir(), "report.json")
	path := writeFile(t, "script.yaml", usersScript)

	output, err := captureOutput(t, func() error {
		return runStats([]string{path})
	})
	require.NoError(t, err)
	assert.Empty(t, output)

	data, err := os.ReadFile(statsOut)
	require.NoError(t, err)
	var st StoreStats
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, 2, st.Keys)
}
