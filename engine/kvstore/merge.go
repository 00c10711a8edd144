package kvstore

import (
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/hujiyo/Mhuixs-sub001/engine/bitvec"
	"github.com/hujiyo/Mhuixs-sub001/engine/list"
	"github.com/hujiyo/Mhuixs-sub001/engine/stream"
	"github.com/hujiyo/Mhuixs-sub001/engine/table"
)

// clonePayload returns a deep copy of a payload.
func clonePayload(payload any) (any, error) {
	switch p := payload.(type) {
	case *stream.Stream:
		return p.Clone(), nil
	case *list.List:
		return p.Clone()
	case *bitvec.Vector:
		return p.Clone(), nil
	case *table.Table:
		return p.Clone()
	case *Store:
		return p.Clone()
	}
	return nil, fmt.Errorf("%w: payload %T", ErrBadType, payload)
}

// Merge copies every key of src into s. Keys absent from s are added; keys
// present in both are overwritten with a deep copy of src's payload. Links
// are carried over by name. Capacity is reserved up front, so a merge that
// would exceed the load factor changes nothing.
func (s *Store) Merge(src *Store) error {
	if src == s {
		return nil
	}
	absent := 0
	for _, k := range src.keys {
		if s.lookup(k.name) < 0 {
			absent++
		}
	}
	if err := s.reserve(len(s.keys) + absent); err != nil {
		return err
	}

	copies := make([]any, len(src.keys))
	for i, k := range src.keys {
		c, err := clonePayload(k.payload)
		if err != nil {
			for _, done := range copies[:i] {
				s.release(done)
			}
			return fmt.Errorf("kvstore: merge %q: %w", k.name, err)
		}
		copies[i] = c
	}

	for i, k := range src.keys {
		if j := s.lookup(k.name); j >= 0 {
			s.release(s.keys[j].payload)
			s.keys[j].typ, s.keys[j].payload = k.typ, copies[i]
			continue
		}
		s.insert(k.name, k.typ, copies[i])
	}
	for _, k := range src.keys {
		from := s.lookup(k.name)
		for _, l := range k.links {
			if to := s.lookup(src.keys[l.to].name); to >= 0 {
				s.setLink(from, to, l.coef)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the store with a new ID.
func (s *Store) Clone() (*Store, error) {
	c := &Store{
		id:      uuid.New(),
		opts:    s.opts,
		log:     s.log,
		keys:    make([]key, len(s.keys), cap(s.keys)),
		buckets: make([][]int, len(s.buckets)),
		resizes: s.resizes,
	}
	for i, k := range s.keys {
		p, err := clonePayload(k.payload)
		if err != nil {
			c.Clear()
			return nil, fmt.Errorf("kvstore: clone %q: %w", k.name, err)
		}
		k.payload = p
		k.links = slices.Clone(k.links)
		k.backlinks = slices.Clone(k.backlinks)
		c.keys[i] = k
	}
	for b, idx := range s.buckets {
		if len(idx) > 0 {
			c.buckets[b] = append([]int(nil), idx...)
		}
	}
	c.rebuildFilter()
	return c, nil
}
