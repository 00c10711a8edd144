package table

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/hujiyo/Mhuixs-sub001/engine/arena"
	"github.com/hujiyo/Mhuixs-sub001/internal/buf"
	"github.com/hujiyo/Mhuixs-sub001/internal/logger"
)

const (
	// DefaultInitialRows is the default initial row capacity.
	DefaultInitialRows = 100

	// DefaultRowsGrow is the default number of rows added when the table is full.
	DefaultRowsGrow = 100

	// DefaultStrideStep is the default stride granularity in bytes.
	DefaultStrideStep = 16

	// DefaultSeparator separates literals in a record.
	DefaultSeparator = ','

	// MaxFieldName is the maximum field name length in bytes.
	MaxFieldName = 64
)

// Options configures a Table. Zero fields take the package defaults.
type Options struct {
	InitialRows int
	RowsGrow    int
	StrideStep  int
	Separator   byte

	// Arena configures the text arena. The zero value uses a small arena.
	Arena arena.Options

	Logger *slog.Logger // nil uses logger.L
}

// DefaultOptions returns the default table configuration.
func DefaultOptions() Options {
	return Options{
		InitialRows: DefaultInitialRows,
		RowsGrow:    DefaultRowsGrow,
		StrideStep:  DefaultStrideStep,
		Separator:   DefaultSeparator,
		Arena:       arena.Options{BlockSize: 16, Blocks: 256, GrowBlocks: 256},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.InitialRows <= 0 {
		o.InitialRows = d.InitialRows
	}
	if o.RowsGrow <= 0 {
		o.RowsGrow = d.RowsGrow
	}
	if o.StrideStep <= 0 {
		o.StrideStep = d.StrideStep
	}
	if o.Separator == 0 {
		o.Separator = d.Separator
	}
	if o.Arena == (arena.Options{}) {
		o.Arena = d.Arena
	}
	return o
}

// Table is a row store with a mutable schema.
type Table struct {
	id   uuid.UUID
	name string
	opts Options
	log  *slog.Logger

	fields  []Field
	offsets []int
	idle    *idleMap

	rows     []byte
	stride   int
	usage    int
	count    int
	capacity int
	index    []int // virtual -> physical slot

	text *arena.Arena
}

// New creates a table with the given fields.
func New(name string, fields []Field, opts Options) (*Table, error) {
	opts = opts.withDefaults()
	text, err := arena.New(opts.Arena)
	if err != nil {
		return nil, fmt.Errorf("table: text arena: %w", err)
	}
	t := &Table{
		id:       uuid.New(),
		name:     name,
		opts:     opts,
		log:      logger.Or(opts.Logger),
		idle:     newIdleMap(),
		stride:   opts.StrideStep,
		capacity: opts.InitialRows,
		text:     text,
	}
	t.rows = make([]byte, t.capacity*t.stride)
	for _, f := range fields {
		if err := t.AddField(f); err != nil {
			_ = text.Release()
			return nil, err
		}
	}
	return t, nil
}

// ID returns the table's identity.
func (t *Table) ID() uuid.UUID { return t.id }

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Rename changes the table name.
func (t *Table) Rename(name string) { t.name = name }

// RowCount returns the number of records.
func (t *Table) RowCount() int { return t.count }

// FieldCount returns the number of fields.
func (t *Table) FieldCount() int { return len(t.fields) }

// Stride returns the row width in bytes.
func (t *Table) Stride() int { return t.stride }

// Usage returns the number of row bytes covered by fields or idle ranges.
func (t *Table) Usage() int { return t.usage }

// Capacity returns the number of physical rows allocated.
func (t *Table) Capacity() int { return t.capacity }

// IdleRanges returns the idle byte ranges ordered by offset.
func (t *Table) IdleRanges() []Range { return t.idle.ranges() }

// FieldOffset returns the byte offset of field i within a row.
func (t *Table) FieldOffset(i int) (int, error) {
	if err := t.checkField(i); err != nil {
		return 0, err
	}
	return t.offsets[i], nil
}

func (t *Table) checkField(i int) error {
	if i < 0 || i >= len(t.fields) {
		return fmt.Errorf("%w: index %d (have %d)", ErrNoField, i, len(t.fields))
	}
	return nil
}

func (t *Table) checkRow(j int) error {
	if j < 0 || j >= t.count {
		return fmt.Errorf("%w: %d (rows %d)", ErrIndex, j, t.count)
	}
	return nil
}

// cell returns the bytes of field i in physical slot p.
func (t *Table) cell(i, p int) []byte {
	at := p*t.stride + t.offsets[i]
	return t.rows[at : at+t.fields[i].Type.Size() : at+t.fields[i].Type.Size()]
}

func (t *Table) slot(p int) []byte {
	return t.rows[p*t.stride : (p+1)*t.stride]
}

// growRows adds n physical rows of capacity.
func (t *Table) growRows(n int) error {
	capacity, ok := buf.AddOverflowSafe(t.capacity, n)
	if !ok {
		return fmt.Errorf("table: row capacity overflow")
	}
	size, ok := buf.MulOverflowSafe(capacity, t.stride)
	if !ok {
		return fmt.Errorf("table: row buffer overflow")
	}
	rows := make([]byte, size)
	copy(rows, t.rows[:t.count*t.stride])
	t.log.Debug("table rows grew", "table", t.name, "from", t.capacity, "to", capacity, "bytes", size)
	t.rows, t.capacity = rows, capacity
	return nil
}

// restride changes the row width, moving the used bytes of every row.
// Growth moves rows tail-first and shrinking head-first so no row is
// overwritten before it has moved.
func (t *Table) restride(stride int) {
	old := t.stride
	if stride == old {
		return
	}
	size := t.capacity * stride
	switch {
	case stride > old && cap(t.rows) < size:
		rows := make([]byte, size)
		for p := range t.count {
			copy(rows[p*stride:], t.rows[p*old:p*old+t.usage])
		}
		t.rows = rows
	case stride > old:
		t.rows = t.rows[:size]
		for p := t.count - 1; p >= 0; p-- {
			copy(t.rows[p*stride:p*stride+t.usage], t.rows[p*old:p*old+t.usage])
			clear(t.rows[p*stride+t.usage : (p+1)*stride])
		}
		clear(t.rows[t.count*stride:])
	default:
		for p := range t.count {
			copy(t.rows[p*stride:p*stride+t.usage], t.rows[p*old:p*old+t.usage])
			clear(t.rows[p*stride+t.usage : (p+1)*stride])
		}
		clear(t.rows[t.count*stride:])
		t.rows = t.rows[:size]
	}
	t.log.Debug("table restride", "table", t.name, "from", old, "to", stride)
	t.stride = stride
}

// fitStride returns the smallest stride step multiple holding usage bytes.
func (t *Table) fitStride(usage int) int {
	return max(t.opts.StrideStep, buf.RoundUp(usage, t.opts.StrideStep))
}

// putText stores s in the text arena and returns its handle.
func (t *Table) putText(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	off, err := t.text.PutBlob([]byte(norm.NFC.String(s)))
	if err != nil {
		return 0, fmt.Errorf("table: store text: %w", err)
	}
	return uint32(off) + 1, nil
}

func (t *Table) getText(h uint32) (string, error) {
	if h == 0 {
		return "", nil
	}
	b, err := t.text.BlobView(arena.Offset(h - 1))
	if err != nil {
		return "", fmt.Errorf("table: text handle %d: %w", h, err)
	}
	return string(b), nil
}

func (t *Table) freeText(h uint32) {
	if h == 0 {
		return
	}
	if err := t.text.FreeBlob(arena.Offset(h - 1)); err != nil {
		t.log.Warn("table: free text", "table", t.name, "handle", h, "error", err)
	}
}

// freeSlotText frees every text handle held by physical slot p.
func (t *Table) freeSlotText(p int) {
	for i, f := range t.fields {
		if f.Type == Text {
			t.freeText(buf.U32LE(t.cell(i, p)))
		}
	}
}

// Clone returns an independent copy of the table with a new ID.
func (t *Table) Clone() (*Table, error) {
	text, err := t.text.Clone()
	if err != nil {
		return nil, fmt.Errorf("table: clone: %w", err)
	}
	c := *t
	c.id = uuid.New()
	c.fields = append([]Field(nil), t.fields...)
	c.offsets = append([]int(nil), t.offsets...)
	c.idle = t.idle.clone()
	c.rows = append([]byte(nil), t.rows...)
	c.index = append([]int(nil), t.index...)
	c.text = text
	return &c, nil
}

// Release frees the table's text storage. The table is unusable afterwards.
func (t *Table) Release() error {
	t.rows, t.index = nil, nil
	t.count, t.capacity = 0, 0
	return t.text.Release()
}
