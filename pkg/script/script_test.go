package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hujiyo/Mhuixs-sub001/engine/arena"
	"github.com/hujiyo/Mhuixs-sub001/engine/bitvec"
	"github.com/hujiyo/Mhuixs-sub001/engine/kvstore"
	"github.com/hujiyo/Mhuixs-sub001/engine/list"
	"github.com/hujiyo/Mhuixs-sub001/engine/table"
)

func newRunner(t *testing.T) *Runner {
	t.Helper()
	small := arena.Options{BlockSize: 16, Blocks: 16, GrowBlocks: 16}
	s := kvstore.New(kvstore.Options{
		Buckets: 16,
		List:    list.Options{Arena: small},
		Table:   table.Options{Arena: small},
	})
	t.Cleanup(s.Clear)
	return NewRunner(s)
}

func outputs(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Output
	}
	return out
}

const usersScript = `
steps:
  - {op: kv.add, key: users, args: [table]}
  - {op: table.addfield, key: users, args: [id, int, primary]}
  - {op: table.addfield, key: users, args: [name, text]}
  - {op: table.addfield, key: users, args: [age, int]}
  - {op: table.add, key: users, args: ["1,John,30"]}
  - {op: table.add, key: users, args: ["2,Jane,25"]}
  - {op: table.remove, key: users, args: ["0"]}
  - {op: table.record, key: users, args: ["0"]}
  - {op: table.get, key: users, args: [name, "0"]}
`

func TestRun_UsersScenario(t *testing.T) {
	s, err := Parse([]byte(usersScript))
	require.NoError(t, err)
	r := newRunner(t)

	res, err := r.Run(s)
	require.NoError(t, err)
	require.Len(t, res, 9)
	assert.Equal(t, "1", res[5].Output, "second row gets virtual index 1")
	assert.Equal(t, "2,Jane,25", res[7].Output)
	assert.Equal(t, "Jane", res[8].Output)

	tb, err := r.Store().Table("users")
	require.NoError(t, err)
	assert.Equal(t, 1, tb.RowCount())
}

func TestRun_StreamsListsBitvecs(t *testing.T) {
	s, err := Parse([]byte(`
steps:
  - {op: stream.set, key: greeting, args: [hello]}
  - {op: stream.append, key: greeting, args: [" world"]}
  - {op: stream.get, key: greeting}
  - {op: list.rpush, key: q, args: [a, b, c]}
  - {op: list.lpush, key: q, args: [z]}
  - {op: list.lpop, key: q}
  - {op: list.rpop, key: q}
  - {op: list.get, key: q, args: ["-1"]}
  - {op: bitvec.setrange, key: bits, args: ["3", "4", "1"]}
  - {op: bitvec.set, key: bits, args: ["100", "1"]}
  - {op: bitvec.count, key: bits}
  - {op: bitvec.find, key: bits, args: ["1", "7", "100"]}
  - {op: bitvec.get, key: bits, args: ["4"]}
  - {op: kv.link, key: q, args: [bits, "0.5"]}
  - {op: kv.find, key: bits}
`))
	require.NoError(t, err)
	r := newRunner(t)

	res, err := r.Run(s)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"", "", "hello world",
		"3", "4", "z", "c", "b",
		"", "", "5", "100", "1",
		"", "bitvec",
	}, outputs(res))

	links, err := r.Store().Links("q")
	require.NoError(t, err)
	assert.Equal(t, []kvstore.Link{{Target: "bits", Coef: 0.5}}, links)
}

func TestRun_StopsAtFirstError(t *testing.T) {
	s, err := Parse([]byte(`
steps:
  - {op: list.lpop, key: missing}
  - {op: stream.set, key: x, args: [v]}
`))
	require.NoError(t, err)
	r := newRunner(t)

	res, err := r.Run(s)
	require.ErrorIs(t, err, kvstore.ErrNotFound)
	assert.Len(t, res, 1)
	assert.False(t, r.Store().Exists("x"))

	s.ContinueOnError = true
	res, err = r.Run(s)
	require.NoError(t, err)
	require.Len(t, res, 2)
	require.Error(t, res[0].Err)
	assert.True(t, r.Store().Exists("x"))
}

func TestExec_Errors(t *testing.T) {
	r := newRunner(t)
	_, err := r.Exec(Step{Op: "kv.explode", Key: "k"})
	require.ErrorIs(t, err, ErrUnknownOp)
	_, err = r.Exec(Step{Op: "stream.set", Key: "k"})
	require.ErrorIs(t, err, ErrArgs)
	_, err = r.Exec(Step{Op: "stream.get"})
	require.ErrorIs(t, err, ErrArgs)
	_, err = r.Exec(Step{Op: "bitvec.set", Key: "b", Args: []string{"x", "1"}})
	require.ErrorIs(t, err, ErrArgs)
	_, err = r.Exec(Step{Op: "kv.add", Key: "k", Args: []string{"graph"}})
	require.ErrorIs(t, err, kvstore.ErrBadType)

	_, err = r.Exec(Step{Op: "stream.set", Key: "s", Args: []string{"v"}})
	require.NoError(t, err)
	_, err = r.Exec(Step{Op: "list.rpush", Key: "s", Args: []string{"v"}})
	require.ErrorIs(t, err, kvstore.ErrWrongType)
	_, err = r.Exec(Step{Op: "table.add", Key: "nope", Args: []string{"1"}})
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}

func TestExec_BitvecPastLimit(t *testing.T) {
	r := newRunner(t)
	_, err := r.Exec(Step{Op: "bitvec.set", Key: "b", Args: []string{"4611686018427387904", "1"}})
	require.ErrorIs(t, err, bitvec.ErrGrowFail)
	_, err = r.Exec(Step{Op: "bitvec.setrange", Key: "b", Args: []string{"4611686018427387904", "4", "1"}})
	require.ErrorIs(t, err, bitvec.ErrGrowFail)

	v, err := r.Store().BitVec("b")
	require.NoError(t, err)
	assert.Zero(t, v.Len())
}

func TestRun_TableRender(t *testing.T) {
	r := newRunner(t)
	for _, st := range []Step{
		{Op: "table.addfield", Key: "t", Args: []string{"id", "u8"}},
		{Op: "table.addfield", Key: "t", Args: []string{"when", "date"}},
		{Op: "table.add", Key: "t", Args: []string{"7,2024.10.23"}},
	} {
		_, err := r.Exec(st)
		require.NoError(t, err)
	}
	out, err := r.Exec(Step{Op: "table.render", Key: "t"})
	require.NoError(t, err)
	assert.Equal(t, "id | when\n-- | ----------\n7  | 2024.10.23\n", out)

	_, err = r.Exec(Step{Op: "table.removefield", Key: "t", Args: []string{"0"}})
	require.NoError(t, err)
	out, err = r.Exec(Step{Op: "table.record", Key: "t", Args: []string{"0"}})
	require.NoError(t, err)
	assert.Equal(t, "2024.10.23", out)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte(usersScript), 0o644))
	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 9)

	_, err = Parse([]byte("steps:\n  - {key: k}\n"))
	require.Error(t, err)
	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
}

func TestOps(t *testing.T) {
	names := strings.Join(Ops(), " ")
	for _, want := range []string{"kv.add", "list.lpush", "bitvec.find", "table.render"} {
		assert.Contains(t, names, want)
	}
}
