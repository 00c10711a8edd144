package kvstore

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/twmb/murmur3"
)

// Hasher maps a key name to a 32-bit hash. The bucket is hash mod bucket count.
type Hasher func(name []byte) uint32

// MurmurSeed is the seed used by HashMurmur.
const MurmurSeed = 0x9747b28c

// HashMurmur is murmur3 x86_32 seeded with MurmurSeed.
func HashMurmur(name []byte) uint32 {
	return murmur3.SeedSum32(MurmurSeed, name)
}

// HashXX is xxhash64 folded to 32 bits.
func HashXX(name []byte) uint32 {
	h := xxhash.Sum64(name)
	return uint32(h ^ h>>32)
}

// ParseHasher returns the hasher called name: "murmur3" or "xxhash".
func ParseHasher(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "murmur", "murmur3":
		return HashMurmur, nil
	case "xx", "xxhash":
		return HashXX, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadHasher, name)
}
