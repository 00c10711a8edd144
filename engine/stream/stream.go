// Package stream holds byte-stream values with optional compression.
//
// A Stream keeps its payload either verbatim (LevelNone) or snappy-encoded
// (LevelFast). Payloads shorter than MinCompressSize are always kept
// verbatim.
package stream

import (
	"fmt"
	"strings"

	"github.com/golang/snappy"
)

// Level selects how a stream stores its bytes.
type Level uint8

const (
	LevelNone Level = iota // lv0: stored as is
	LevelFast              // lv1: snappy
)

// DefaultMinCompressSize is the smallest payload LevelFast compresses.
const DefaultMinCompressSize = 64

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelFast:
		return "fast"
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// ParseLevel accepts "none"/"lv0"/"0" and "fast"/"snappy"/"lv1"/"1".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "lv0", "0":
		return LevelNone, nil
	case "fast", "snappy", "lv1", "1":
		return LevelFast, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadLevel, s)
}

// Options configures a Stream.
type Options struct {
	Level           Level
	MinCompressSize int // 0 uses DefaultMinCompressSize
}

// Stream is a byte payload.
type Stream struct {
	level      Level
	min        int
	stored     []byte
	compressed bool
	n          int
}

// New returns an empty stream.
func New(opts Options) *Stream {
	if opts.MinCompressSize <= 0 {
		opts.MinCompressSize = DefaultMinCompressSize
	}
	if opts.Level > LevelFast {
		opts.Level = LevelNone
	}
	return &Stream{level: opts.Level, min: opts.MinCompressSize}
}

// Set replaces the payload with a copy of b.
func (s *Stream) Set(b []byte) {
	s.n = len(b)
	if s.level == LevelFast && len(b) >= s.min {
		s.stored = snappy.Encode(nil, b)
		s.compressed = true
		return
	}
	s.stored = append([]byte(nil), b...)
	s.compressed = false
}

// Append adds b to the end of the payload.
func (s *Stream) Append(b []byte) error {
	if !s.compressed && (s.level == LevelNone || s.n+len(b) < s.min) {
		s.stored = append(s.stored, b...)
		s.n += len(b)
		return nil
	}
	cur, err := s.Bytes()
	if err != nil {
		return err
	}
	s.Set(append(cur, b...))
	return nil
}

// Bytes returns a decompressed copy of the payload.
func (s *Stream) Bytes() ([]byte, error) {
	if !s.compressed {
		return append([]byte(nil), s.stored...), nil
	}
	out, err := snappy.Decode(nil, s.stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return out, nil
}

// Len returns the logical payload length.
func (s *Stream) Len() int { return s.n }

// StoredLen returns the number of bytes held after compression.
func (s *Stream) StoredLen() int { return len(s.stored) }

// Level returns the configured compression level.
func (s *Stream) Level() Level { return s.level }

// Compressed reports whether the payload is currently held compressed.
func (s *Stream) Compressed() bool { return s.compressed }

// Clone returns an independent copy.
func (s *Stream) Clone() *Stream {
	c := *s
	c.stored = append([]byte(nil), s.stored...)
	return &c
}
