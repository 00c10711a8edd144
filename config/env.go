package config

import (
	"fmt"
	"os"
	"strconv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MHUIXS_"

// ApplyEnv overlays MHUIXS_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"MEMORY_LIMIT":     &c.MemoryLimit,
		"ARENA_BLOCK_SIZE": &c.Arena.BlockSize,
		"ARENA_BLOCKS":     &c.Arena.Blocks,
		"BUCKETS":          &c.Store.Buckets,
		"MAX_BUCKETS":      &c.Store.MaxBuckets,
	}
	bools := map[string]*bool{
		"DISABLE_COMPRESSION": &c.DisableCompression,
		"USE_MMAP":            &c.UseMmap,
		"FIXED_BUCKETS":       &c.Store.FixedBuckets,
		"LOG":                 &c.Log.Enabled,
	}
	strs := map[string]*string{
		"HASHER":       &c.Store.Hasher,
		"STREAM_LEVEL": &c.Stream.Level,
		"SEPARATOR":    &c.Table.Separator,
		"LOG_LEVEL":    &c.Log.Level,
		"LOG_DIR":      &c.Log.Dir,
	}

	for name, p := range ints {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s = %q", ErrInvalid, EnvPrefix, name, v)
			}
			*p = n
		}
	}
	for name, p := range bools {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s = %q", ErrInvalid, EnvPrefix, name, v)
			}
			*p = b
		}
	}
	for name, p := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*p = v
		}
	}
	return nil
}
