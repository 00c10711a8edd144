package kvstore

import "github.com/google/uuid"

// Stats is a point-in-time summary of a store.
type Stats struct {
	ID           uuid.UUID
	Keys         int
	Buckets      int
	LoadFactor   float64
	EmptyBuckets int
	MaxChain     int // longest bucket
	Resizes      int
	Links        int
	ByType       map[Type]int

	BloomBits     uint // filter size in bits
	BloomK        uint // hash functions per filter entry
	BloomRebuilds int
}

// Stats returns the current store statistics.
func (s *Store) Stats() Stats {
	st := Stats{
		ID:         s.id,
		Keys:       len(s.keys),
		Buckets:    len(s.buckets),
		LoadFactor: s.LoadFactor(),
		Resizes:    s.resizes,
		ByType:     make(map[Type]int),
		BloomBits:  s.filter.Cap(),
		BloomK:     s.filter.K(),

		BloomRebuilds: s.rebuilds,
	}
	for _, b := range s.buckets {
		if len(b) == 0 {
			st.EmptyBuckets++
		}
		st.MaxChain = max(st.MaxChain, len(b))
	}
	for _, k := range s.keys {
		st.ByType[k.typ]++
		st.Links += len(k.links)
	}
	return st
}
