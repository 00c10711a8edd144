package kvstore

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/hujiyo/Mhuixs-sub001/engine/bitvec"
	"github.com/hujiyo/Mhuixs-sub001/engine/list"
	"github.com/hujiyo/Mhuixs-sub001/engine/stream"
	"github.com/hujiyo/Mhuixs-sub001/engine/table"
	"github.com/hujiyo/Mhuixs-sub001/internal/logger"
)

const (
	// DefaultBuckets is the initial bucket tier.
	DefaultBuckets = 1024

	// DefaultMaxBuckets is the largest bucket tier.
	DefaultMaxBuckets = 16777216

	// DefaultKeyPoolGrow is the number of key slots added when the pool is full.
	DefaultKeyPoolGrow = 256

	// DefaultBloomFP is the target false-positive rate of the name filter.
	DefaultBloomFP = 0.01

	// ResizeFactor is the bucket growth factor between tiers.
	ResizeFactor = 4
)

// Options configures a Store. Zero fields take the package defaults.
type Options struct {
	Buckets      int
	MaxBuckets   int
	FixedBuckets bool // never resize; Add fails with ErrLoadFactor instead
	KeyPoolGrow  int
	BloomFP      float64
	Hasher       Hasher // nil uses HashMurmur

	// Payload options for keys created by Add.
	Stream stream.Options
	List   list.Options
	Table  table.Options
	BitVec bitvec.Options

	Logger *slog.Logger // nil uses logger.L
}

// DefaultOptions returns the default store configuration.
func DefaultOptions() Options {
	return Options{
		Buckets:     DefaultBuckets,
		MaxBuckets:  DefaultMaxBuckets,
		KeyPoolGrow: DefaultKeyPoolGrow,
		BloomFP:     DefaultBloomFP,
		Hasher:      HashMurmur,
		List:        list.DefaultOptions(),
		Table:       table.DefaultOptions(),
		BitVec:      bitvec.DefaultOptions(),
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Buckets <= 0 {
		o.Buckets = d.Buckets
	}
	if o.MaxBuckets < o.Buckets {
		o.MaxBuckets = max(d.MaxBuckets, o.Buckets)
	}
	if o.KeyPoolGrow <= 0 {
		o.KeyPoolGrow = d.KeyPoolGrow
	}
	if o.BloomFP <= 0 || o.BloomFP >= 1 {
		o.BloomFP = d.BloomFP
	}
	if o.Hasher == nil {
		o.Hasher = d.Hasher
	}
	return o
}

type link struct {
	to   int // pool index
	coef float64
}

type key struct {
	name      string
	typ       Type
	payload   any
	links     []link
	backlinks []int // pool indices of keys linking here, one per link
	bucket    int
}

// Store is a hash-indexed collection of typed keys.
type Store struct {
	id   uuid.UUID
	opts Options
	log  *slog.Logger

	keys     []key
	buckets  [][]int
	filter   *bloom.BloomFilter
	stale    int // removed names still set in filter
	rebuilds int
	resizes  int
}

// New returns an empty store.
func New(opts Options) *Store {
	opts = opts.withDefaults()
	s := &Store{
		id:      uuid.New(),
		opts:    opts,
		log:     logger.Or(opts.Logger),
		buckets: make([][]int, opts.Buckets),
	}
	s.rebuildFilter()
	return s
}

// ID returns the store's identity.
func (s *Store) ID() uuid.UUID { return s.id }

// Len returns the number of keys.
func (s *Store) Len() int { return len(s.keys) }

// Buckets returns the bucket count.
func (s *Store) Buckets() int { return len(s.buckets) }

// LoadFactor returns Len()/Buckets().
func (s *Store) LoadFactor() float64 {
	return float64(len(s.keys)) / float64(len(s.buckets))
}

func normalize(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	return norm.NFC.String(name), nil
}

func (s *Store) bucketOf(name string) int {
	return int(s.opts.Hasher([]byte(name)) % uint32(len(s.buckets)))
}

// lookup returns the pool index of name, or -1.
func (s *Store) lookup(name string) int {
	if !s.filter.TestString(name) {
		return -1
	}
	for _, i := range s.buckets[s.bucketOf(name)] {
		if s.keys[i].name == name {
			return i
		}
	}
	return -1
}

func (s *Store) rebuildFilter() {
	n := max(uint(len(s.buckets)), uint(len(s.keys)))
	s.filter = bloom.NewWithEstimates(n, s.opts.BloomFP)
	for _, k := range s.keys {
		s.filter.AddString(k.name)
	}
	s.stale = 0
	s.rebuilds++
}

// minStale is the smallest number of removed names that triggers a filter
// rebuild.
const minStale = 64

// noteRemoved counts a name left behind in the filter and rebuilds it once
// stale names pass a quarter of the live keys.
func (s *Store) noteRemoved() {
	s.stale++
	if s.stale > max(len(s.keys)/4, minStale) {
		s.rebuildFilter()
	}
}

// overloaded reports whether n keys would reach a 0.75 load factor over
// the given bucket count.
func overloaded(n, buckets int) bool {
	return 4*n >= 3*buckets
}

// reserve makes room for n keys in total, resizing if allowed.
func (s *Store) reserve(n int) error {
	if !overloaded(n, len(s.buckets)) {
		return nil
	}
	if s.opts.FixedBuckets {
		return fmt.Errorf("%w: %d keys over %d buckets", ErrLoadFactor, n, len(s.buckets))
	}
	target := len(s.buckets)
	for overloaded(n, target) {
		if target*ResizeFactor > s.opts.MaxBuckets {
			return fmt.Errorf("%w: %d keys over %d buckets at max tier", ErrLoadFactor, n, target)
		}
		target *= ResizeFactor
	}
	return s.Resize(target)
}

// Resize rehashes every key into buckets buckets, in pool order. It fails
// with ErrLoadFactor if the current keys would not fit below 0.75.
func (s *Store) Resize(buckets int) error {
	if buckets <= 0 || overloaded(len(s.keys), buckets) {
		return fmt.Errorf("%w: %d keys do not fit %d buckets", ErrLoadFactor, len(s.keys), buckets)
	}
	from := len(s.buckets)
	s.buckets = make([][]int, buckets)
	for i := range s.keys {
		b := s.bucketOf(s.keys[i].name)
		s.keys[i].bucket = b
		s.buckets[b] = append(s.buckets[b], i)
	}
	s.rebuildFilter()
	s.resizes++
	s.log.Debug("kvstore resized", "store", s.id, "from", from, "to", buckets, "keys", len(s.keys))
	return nil
}

// newPayload allocates an empty payload of type t.
func (s *Store) newPayload(name string, t Type) (any, error) {
	switch t {
	case TypeStream:
		return stream.New(s.opts.Stream), nil
	case TypeList:
		return list.New(s.opts.List)
	case TypeBitVec:
		return bitvec.NewWithOptions(0, s.opts.BitVec)
	case TypeTable:
		return table.New(name, nil, s.opts.Table)
	case TypeStore:
		child := s.opts
		child.Buckets = DefaultOptions().Buckets
		return New(child), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrBadType, t)
}

// insert appends a key whose name is known to be absent. Capacity must
// have been reserved.
func (s *Store) insert(name string, t Type, payload any) {
	if len(s.keys) == cap(s.keys) {
		s.keys = slices.Grow(s.keys, s.opts.KeyPoolGrow)
	}
	b := s.bucketOf(name)
	s.keys = append(s.keys, key{name: name, typ: t, payload: payload, bucket: b})
	s.buckets[b] = append(s.buckets[b], len(s.keys)-1)
	s.filter.AddString(name)
}

// Add creates a key of type t with an empty payload and returns the payload.
func (s *Store) Add(name string, t Type) (any, error) {
	name, err := normalize(name)
	if err != nil {
		return nil, err
	}
	if s.lookup(name) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrExists, name)
	}
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrBadType, t)
	}
	if err := s.reserve(len(s.keys) + 1); err != nil {
		return nil, err
	}
	payload, err := s.newPayload(name, t)
	if err != nil {
		return nil, err
	}
	s.insert(name, t, payload)
	return payload, nil
}

// AddStream creates a stream key holding data.
func (s *Store) AddStream(name string, data []byte) (*stream.Stream, error) {
	p, err := s.Add(name, TypeStream)
	if err != nil {
		return nil, err
	}
	st := p.(*stream.Stream)
	st.Set(data)
	return st, nil
}

// Put adds a key that adopts an existing payload.
func (s *Store) Put(name string, payload any) error {
	t, ok := typeOf(payload)
	if !ok {
		return fmt.Errorf("%w: payload %T", ErrBadType, payload)
	}
	name, err := normalize(name)
	if err != nil {
		return err
	}
	if s.lookup(name) >= 0 {
		return fmt.Errorf("%w: %q", ErrExists, name)
	}
	if err := s.reserve(len(s.keys) + 1); err != nil {
		return err
	}
	s.insert(name, t, payload)
	return nil
}

// Exists reports whether name is a key.
func (s *Store) Exists(name string) bool {
	name, err := normalize(name)
	return err == nil && s.lookup(name) >= 0
}

func (s *Store) find(name string) (int, error) {
	name, err := normalize(name)
	if err != nil {
		return 0, err
	}
	i := s.lookup(name)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return i, nil
}

// Find returns a detached view of the named key.
func (s *Store) Find(name string) (Entry, error) {
	i, err := s.find(name)
	if err != nil {
		return Entry{}, err
	}
	return s.entry(i), nil
}

func (s *Store) entry(i int) Entry {
	k := s.keys[i]
	e := Entry{Name: k.name, Type: k.typ, Payload: k.payload}
	for _, l := range k.links {
		e.Links = append(e.Links, Link{Target: s.keys[l.to].name, Coef: l.coef})
	}
	return e
}

// Get returns the payload of the named key.
func (s *Store) Get(name string) (any, error) {
	i, err := s.find(name)
	if err != nil {
		return nil, err
	}
	return s.keys[i].payload, nil
}

func getAs[T any](s *Store, name string, want Type) (T, error) {
	var zero T
	p, err := s.Get(name)
	if err != nil {
		return zero, err
	}
	v, ok := p.(T)
	if !ok {
		got, _ := typeOf(p)
		return zero, fmt.Errorf("%w: %q is %s, not %s", ErrWrongType, name, got, want)
	}
	return v, nil
}

// Stream returns the named stream payload.
func (s *Store) Stream(name string) (*stream.Stream, error) {
	return getAs[*stream.Stream](s, name, TypeStream)
}

// List returns the named list payload.
func (s *Store) List(name string) (*list.List, error) {
	return getAs[*list.List](s, name, TypeList)
}

// BitVec returns the named bit vector payload.
func (s *Store) BitVec(name string) (*bitvec.Vector, error) {
	return getAs[*bitvec.Vector](s, name, TypeBitVec)
}

// Table returns the named table payload.
func (s *Store) Table(name string) (*table.Table, error) {
	return getAs[*table.Table](s, name, TypeTable)
}

// Sub returns the named nested store.
func (s *Store) Sub(name string) (*Store, error) {
	return getAs[*Store](s, name, TypeStore)
}

// release frees the storage behind a payload.
func (s *Store) release(payload any) {
	var err error
	switch p := payload.(type) {
	case *list.List:
		err = p.Release()
	case *table.Table:
		err = p.Release()
	case *Store:
		p.Clear()
	}
	if err != nil {
		s.log.Warn("kvstore: release payload", "store", s.id, "error", err)
	}
}

// Remove deletes the named key, releasing its payload and dropping every
// link that pointed at it. The last key in the pool moves into the freed
// slot, so the cost depends on the bucket chain and the links involved, not
// on the number of keys.
func (s *Store) Remove(name string) error {
	i, err := s.find(name)
	if err != nil {
		return err
	}
	k := &s.keys[i]
	s.release(k.payload)
	s.unbucket(k.bucket, i)

	for _, l := range k.links {
		if l.to != i {
			s.dropBacklink(l.to, i)
		}
	}
	for _, from := range k.backlinks {
		if from != i {
			f := &s.keys[from]
			f.links = slices.DeleteFunc(f.links, func(l link) bool { return l.to == i })
		}
	}

	last := len(s.keys) - 1
	if i != last {
		s.move(last, i)
	}
	s.keys[last] = key{}
	s.keys = s.keys[:last]
	s.noteRemoved()
	return nil
}

// unbucket swap-removes pool index i from bucket b.
func (s *Store) unbucket(b, i int) {
	chain := s.buckets[b]
	if j := slices.Index(chain, i); j >= 0 {
		chain[j] = chain[len(chain)-1]
		s.buckets[b] = chain[:len(chain)-1]
	}
}

// dropBacklink removes one record of from linking to key to.
func (s *Store) dropBacklink(to, from int) {
	t := &s.keys[to]
	if j := slices.Index(t.backlinks, from); j >= 0 {
		t.backlinks = slices.Delete(t.backlinks, j, j+1)
	}
}

// move relocates the key at pool index src to dst, repointing its bucket
// entry and every link into or out of it. dst must hold no live key.
func (s *Store) move(src, dst int) {
	m := &s.keys[src]
	if j := slices.Index(s.buckets[m.bucket], src); j >= 0 {
		s.buckets[m.bucket][j] = dst
	}
	for li := range m.links {
		to := m.links[li].to
		if to == src {
			m.links[li].to = dst
			continue
		}
		back := s.keys[to].backlinks
		if j := slices.Index(back, src); j >= 0 {
			back[j] = dst
		}
	}
	for bi, from := range m.backlinks {
		if from == src {
			m.backlinks[bi] = dst
			continue
		}
		for li := range s.keys[from].links {
			if s.keys[from].links[li].to == src {
				s.keys[from].links[li].to = dst
			}
		}
	}
	s.keys[dst] = *m
}

// Names returns the key names in pool order.
func (s *Store) Names() []string {
	out := make([]string, len(s.keys))
	for i, k := range s.keys {
		out[i] = k.name
	}
	return out
}

// Entries returns detached views of every key in pool order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.keys))
	for i := range s.keys {
		out[i] = s.entry(i)
	}
	return out
}

// Clear removes every key and releases its payload. The bucket count is kept.
func (s *Store) Clear() {
	for _, k := range s.keys {
		s.release(k.payload)
	}
	clear(s.keys)
	s.keys = s.keys[:0]
	for i := range s.buckets {
		s.buckets[i] = nil
	}
	s.rebuildFilter()
}
