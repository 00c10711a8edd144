package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hujiyo/Mhuixs-sub001/engine/bitvec"
	"github.com/hujiyo/Mhuixs-sub001/engine/kvstore"
	"github.com/hujiyo/Mhuixs-sub001/engine/stream"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 16, c.Arena.BlockSize)
	assert.Equal(t, 256, c.Arena.Blocks)
	assert.Equal(t, 1024, c.Store.Buckets)
	assert.Equal(t, ",", c.Table.Separator)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mhuixs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
arena:
  block_size: 32
store:
  hasher: xxhash
  buckets: 4096
table:
  separator: "|"
disable_compression: true
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, 32, c.Arena.BlockSize)
	assert.Equal(t, 3200, c.Arena.Blocks, "unset keys keep defaults")
	assert.Equal(t, 4096, c.Store.Buckets)

	so := c.StoreOptions()
	assert.Equal(t, kvstore.HashXX([]byte("k")), so.Hasher([]byte("k")))
	assert.Equal(t, stream.LevelNone, so.Stream.Level, "compression disabled")
	assert.Equal(t, byte('|'), so.Table.Separator)
	assert.Equal(t, 32, so.List.Arena.BlockSize)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = Parse([]byte("arena:\n  bogus: 1\n"))
	require.Error(t, err, "unknown keys are rejected")

	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"block size":  func(c *Config) { c.Arena.BlockSize = 12 },
		"blocks":      func(c *Config) { c.Arena.Blocks = 0 },
		"deque":       func(c *Config) { c.Deque.MinBlockSize = c.Deque.BlockSize },
		"separator":   func(c *Config) { c.Table.Separator = ",," },
		"buckets":     func(c *Config) { c.Store.MaxBuckets = 1 },
		"bloom":       func(c *Config) { c.Store.BloomFP = 1 },
		"hasher":      func(c *Config) { c.Store.Hasher = "crc" },
		"level":       func(c *Config) { c.Stream.Level = "zstd" },
		"log level":   func(c *Config) { c.Log.Level = "loud" },
		"memory":      func(c *Config) { c.MemoryLimit = -1 },
		"rows grow":   func(c *Config) { c.Table.RowsGrow = 0 },
		"stride step": func(c *Config) { c.Table.StrideStep = -16 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			require.ErrorIs(t, c.Validate(), ErrInvalid)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MHUIXS_MEMORY_LIMIT":        "1048576",
		"MHUIXS_USE_MMAP":            "true",
		"MHUIXS_HASHER":              "xxhash",
		"MHUIXS_LOG_LEVEL":           "debug",
		"MHUIXS_DISABLE_COMPRESSION": "1",
	}
	c := Default()
	require.NoError(t, c.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	require.NoError(t, c.Validate())
	assert.Equal(t, 1048576, c.MemoryLimit)
	assert.True(t, c.UseMmap)
	assert.True(t, c.DisableCompression)
	assert.Equal(t, "xxhash", c.Store.Hasher)

	ao := c.ArenaOptions()
	assert.Equal(t, 1048576, ao.MaxBytes)
	assert.True(t, ao.Mmap)

	lo := c.LoggerOptions()
	assert.Equal(t, "DEBUG", lo.Level.String())
}

func TestApplyEnv_BadValue(t *testing.T) {
	t.Setenv("MHUIXS_BUCKETS", "many")
	c := Default()
	require.ErrorIs(t, c.ApplyEnv(), ErrInvalid)
}

func TestBitVecOptions_MemoryLimit(t *testing.T) {
	c := Default()
	assert.Equal(t, uint64(bitvec.DefaultMaxBits), c.BitVecOptions().MaxBits)

	c.MemoryLimit = 1024
	assert.Equal(t, uint64(8192), c.BitVecOptions().MaxBits)
	assert.Equal(t, uint64(8192), c.StoreOptions().BitVec.MaxBits)
}

func TestMarshalRoundTrip(t *testing.T) {
	c := Default()
	c.Store.Hasher = "xxhash"
	data, err := c.Marshal()
	require.NoError(t, err)
	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}
