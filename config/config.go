// Package config loads the engine configuration.
//
// A Config starts from Default(), is overlaid by a YAML file with Load and by
// MHUIXS_* environment variables with ApplyEnv, and is checked by Validate.
// The translator methods turn it into the Options each engine takes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hujiyo/Mhuixs-sub001/engine/arena"
	"github.com/hujiyo/Mhuixs-sub001/engine/bitvec"
	"github.com/hujiyo/Mhuixs-sub001/engine/deque"
	"github.com/hujiyo/Mhuixs-sub001/engine/kvstore"
	"github.com/hujiyo/Mhuixs-sub001/engine/list"
	"github.com/hujiyo/Mhuixs-sub001/engine/stream"
	"github.com/hujiyo/Mhuixs-sub001/engine/table"
	"github.com/hujiyo/Mhuixs-sub001/internal/logger"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the process-level engine configuration.
type Config struct {
	Arena  ArenaConfig  `yaml:"arena"`
	Deque  DequeConfig  `yaml:"deque"`
	Table  TableConfig  `yaml:"table"`
	Store  StoreConfig  `yaml:"store"`
	Stream StreamConfig `yaml:"stream"`
	Log    LogConfig    `yaml:"log"`

	MemoryLimit        int  `yaml:"memory_limit"` // max bytes per arena, 0 = unlimited
	DisableCompression bool `yaml:"disable_compression"`
	UseMmap            bool `yaml:"use_mmap"`
}

// ArenaConfig sizes the arenas behind lists and table text.
type ArenaConfig struct {
	BlockSize  int `yaml:"block_size"`
	Blocks     int `yaml:"blocks"`
	GrowBlocks int `yaml:"grow_blocks"`
}

// DequeConfig sizes list index blocks.
type DequeConfig struct {
	BlockSize    int `yaml:"block_size"`
	MinBlockSize int `yaml:"min_block_size"`
}

// TableConfig holds table growth and record parsing settings.
type TableConfig struct {
	InitialRows int    `yaml:"initial_rows"`
	RowsGrow    int    `yaml:"rows_grow"`
	StrideStep  int    `yaml:"stride_step"`
	Separator   string `yaml:"separator"`
}

// StoreConfig holds key store settings.
type StoreConfig struct {
	Buckets      int     `yaml:"buckets"`
	MaxBuckets   int     `yaml:"max_buckets"`
	FixedBuckets bool    `yaml:"fixed_buckets"`
	KeyPoolGrow  int     `yaml:"key_pool_grow"`
	BloomFP      float64 `yaml:"bloom_fp"`
	Hasher       string  `yaml:"hasher"`
}

// StreamConfig holds byte-stream compression settings.
type StreamConfig struct {
	Level           string `yaml:"level"`
	MinCompressSize int    `yaml:"min_compress_size"`
}

// LogConfig configures internal/logger.
type LogConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Dir     string `yaml:"dir"`
	JSON    bool   `yaml:"json"`
}

// Default returns the built-in configuration.
func Default() Config {
	a := list.DefaultOptions().Arena
	d := deque.DefaultOptions()
	t := table.DefaultOptions()
	s := kvstore.DefaultOptions()
	return Config{
		Arena: ArenaConfig{BlockSize: a.BlockSize, Blocks: a.Blocks, GrowBlocks: a.GrowBlocks},
		Deque: DequeConfig{BlockSize: d.BlockSize, MinBlockSize: d.MinBlockSize},
		Table: TableConfig{
			InitialRows: t.InitialRows,
			RowsGrow:    t.RowsGrow,
			StrideStep:  t.StrideStep,
			Separator:   string(t.Separator),
		},
		Store: StoreConfig{
			Buckets:     s.Buckets,
			MaxBuckets:  s.MaxBuckets,
			KeyPoolGrow: s.KeyPoolGrow,
			BloomFP:     s.BloomFP,
			Hasher:      "murmur3",
		},
		Stream: StreamConfig{Level: stream.LevelFast.String(), MinCompressSize: stream.DefaultMinCompressSize},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads a YAML file on top of Default(). Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default().
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks every setting and reports the first problem.
func (c Config) Validate() error {
	bad := func(field string, v any) error {
		return fmt.Errorf("%w: %s = %v", ErrInvalid, field, v)
	}
	switch {
	case c.Arena.BlockSize <= 0 || c.Arena.BlockSize%8 != 0:
		return bad("arena.block_size", c.Arena.BlockSize)
	case c.Arena.Blocks <= 0:
		return bad("arena.blocks", c.Arena.Blocks)
	case c.Arena.GrowBlocks <= 0:
		return bad("arena.grow_blocks", c.Arena.GrowBlocks)
	case c.Deque.BlockSize < 4:
		return bad("deque.block_size", c.Deque.BlockSize)
	case c.Deque.MinBlockSize < 0 || c.Deque.MinBlockSize >= c.Deque.BlockSize:
		return bad("deque.min_block_size", c.Deque.MinBlockSize)
	case c.Table.InitialRows <= 0:
		return bad("table.initial_rows", c.Table.InitialRows)
	case c.Table.RowsGrow <= 0:
		return bad("table.rows_grow", c.Table.RowsGrow)
	case c.Table.StrideStep <= 0:
		return bad("table.stride_step", c.Table.StrideStep)
	case len(c.Table.Separator) != 1:
		return bad("table.separator", fmt.Sprintf("%q", c.Table.Separator))
	case c.Store.Buckets <= 0:
		return bad("store.buckets", c.Store.Buckets)
	case c.Store.MaxBuckets < c.Store.Buckets:
		return bad("store.max_buckets", c.Store.MaxBuckets)
	case c.Store.KeyPoolGrow <= 0:
		return bad("store.key_pool_grow", c.Store.KeyPoolGrow)
	case c.Store.BloomFP <= 0 || c.Store.BloomFP >= 1:
		return bad("store.bloom_fp", c.Store.BloomFP)
	case c.Stream.MinCompressSize < 0:
		return bad("stream.min_compress_size", c.Stream.MinCompressSize)
	case c.MemoryLimit < 0:
		return bad("memory_limit", c.MemoryLimit)
	}
	if _, err := kvstore.ParseHasher(c.Store.Hasher); err != nil {
		return fmt.Errorf("%w: store.hasher: %w", ErrInvalid, err)
	}
	if _, err := stream.ParseLevel(c.Stream.Level); err != nil {
		return fmt.Errorf("%w: stream.level: %w", ErrInvalid, err)
	}
	if _, ok := logger.ParseLevel(c.Log.Level); !ok {
		return bad("log.level", c.Log.Level)
	}
	return nil
}

// ArenaOptions returns the allocator options.
func (c Config) ArenaOptions() arena.Options {
	return arena.Options{
		BlockSize:  c.Arena.BlockSize,
		Blocks:     c.Arena.Blocks,
		GrowBlocks: c.Arena.GrowBlocks,
		MaxBytes:   c.MemoryLimit,
		Mmap:       c.UseMmap,
	}
}

// DequeOptions returns the list index options.
func (c Config) DequeOptions() deque.Options {
	return deque.Options{BlockSize: c.Deque.BlockSize, MinBlockSize: c.Deque.MinBlockSize}
}

// ListOptions returns the list options.
func (c Config) ListOptions() list.Options {
	return list.Options{Arena: c.ArenaOptions(), Deque: c.DequeOptions()}
}

// TableOptions returns the table options. Call Validate first.
func (c Config) TableOptions() table.Options {
	o := table.Options{
		InitialRows: c.Table.InitialRows,
		RowsGrow:    c.Table.RowsGrow,
		StrideStep:  c.Table.StrideStep,
		Arena:       c.ArenaOptions(),
	}
	if len(c.Table.Separator) == 1 {
		o.Separator = c.Table.Separator[0]
	}
	return o
}

// BitVecOptions returns the bit vector options. MemoryLimit caps a vector at
// the same number of bytes an arena may hold.
func (c Config) BitVecOptions() bitvec.Options {
	o := bitvec.DefaultOptions()
	if c.MemoryLimit > 0 {
		o.MaxBits = uint64(c.MemoryLimit) * 8
	}
	return o
}

// StreamOptions returns the stream options. DisableCompression wins over
// the configured level.
func (c Config) StreamOptions() stream.Options {
	level, _ := stream.ParseLevel(c.Stream.Level)
	if c.DisableCompression {
		level = stream.LevelNone
	}
	return stream.Options{Level: level, MinCompressSize: c.Stream.MinCompressSize}
}

// StoreOptions returns the key store options, including the payload options
// for keys it creates. Call Validate first.
func (c Config) StoreOptions() kvstore.Options {
	h, err := kvstore.ParseHasher(c.Store.Hasher)
	if err != nil {
		h = kvstore.HashMurmur
	}
	return kvstore.Options{
		Buckets:      c.Store.Buckets,
		MaxBuckets:   c.Store.MaxBuckets,
		FixedBuckets: c.Store.FixedBuckets,
		KeyPoolGrow:  c.Store.KeyPoolGrow,
		BloomFP:      c.Store.BloomFP,
		Hasher:       h,
		Stream:       c.StreamOptions(),
		List:         c.ListOptions(),
		Table:        c.TableOptions(),
		BitVec:       c.BitVecOptions(),
	}
}

// LoggerOptions returns the logger settings.
func (c Config) LoggerOptions() logger.Options {
	level, _ := logger.ParseLevel(c.Log.Level)
	return logger.Options{Enabled: c.Log.Enabled, LogDir: c.Log.Dir, Level: level, JSON: c.Log.JSON}
}
