package table

import (
	"fmt"
	"strings"

	"github.com/hujiyo/Mhuixs-sub001/internal/buf"
)

// cellValue is one parsed literal waiting to be written.
type cellValue struct {
	raw  []byte // encoded bytes for fixed-width types
	text string // body for Text fields
}

// parse validates a record against the schema without touching any row.
func (t *Table) parse(record string) ([]cellValue, error) {
	if len(t.fields) == 0 {
		return nil, ErrNoFields
	}
	lits := strings.Split(record, string(t.opts.Separator))
	if len(lits) > len(t.fields) {
		return nil, fmt.Errorf("%w: %d literals for %d fields", ErrFieldCount, len(lits), len(t.fields))
	}
	vals := make([]cellValue, len(t.fields))
	for i, f := range t.fields {
		lit := ""
		if i < len(lits) {
			lit = lits[i]
		}
		if f.Type == Text {
			vals[i].text = lit
			continue
		}
		vals[i].raw = make([]byte, f.Type.Size())
		if err := encode(f.Type, lit, vals[i].raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return vals, nil
}

// store writes parsed values into physical slot p, which must be zeroed.
func (t *Table) store(p int, vals []cellValue) error {
	for i, f := range t.fields {
		if f.Type != Text {
			copy(t.cell(i, p), vals[i].raw)
			continue
		}
		h, err := t.putText(vals[i].text)
		if err != nil {
			t.freeSlotText(p)
			clear(t.slot(p))
			return err
		}
		buf.PutU32LE(t.cell(i, p), h)
	}
	return nil
}

// appendSlot parses record into a new physical slot at the end and returns it.
func (t *Table) appendSlot(record string) (int, error) {
	vals, err := t.parse(record)
	if err != nil {
		return 0, err
	}
	if t.count == t.capacity {
		if err := t.growRows(t.opts.RowsGrow); err != nil {
			return 0, err
		}
	}
	p := t.count
	clear(t.slot(p))
	if err := t.store(p, vals); err != nil {
		return 0, err
	}
	t.count++
	t.index = append(t.index, p)
	return p, nil
}

// AddRecord appends a record and returns its virtual index.
func (t *Table) AddRecord(record string) (int, error) {
	if _, err := t.appendSlot(record); err != nil {
		return 0, err
	}
	return t.count - 1, nil
}

// InsertRecord adds a record at virtual index v, shifting later rows down.
// v == RowCount() appends.
func (t *Table) InsertRecord(record string, v int) error {
	if v < 0 || v > t.count {
		return fmt.Errorf("%w: %d (rows %d)", ErrIndex, v, t.count)
	}
	p, err := t.appendSlot(record)
	if err != nil {
		return err
	}
	last := t.count - 1
	copy(t.index[v+1:], t.index[v:last])
	t.index[v] = p
	return nil
}

// RemoveRecord deletes virtual row v. The last physical row moves into the
// freed slot so storage stays packed; other virtual rows keep their content.
func (t *Table) RemoveRecord(v int) error {
	if err := t.checkRow(v); err != nil {
		return err
	}
	p, last := t.index[v], t.count-1
	t.freeSlotText(p)
	if p != last {
		copy(t.slot(p), t.slot(last))
		for k, q := range t.index {
			if q == last {
				t.index[k] = p
				break
			}
		}
	}
	clear(t.slot(last))
	copy(t.index[v:], t.index[v+1:])
	t.index = t.index[:last]
	t.count--
	return nil
}

// SwapRecord exchanges virtual rows v1 and v2.
func (t *Table) SwapRecord(v1, v2 int) error {
	if err := t.checkRow(v1); err != nil {
		return err
	}
	if err := t.checkRow(v2); err != nil {
		return err
	}
	t.index[v1], t.index[v2] = t.index[v2], t.index[v1]
	return nil
}

// Value returns the typed value of field i in row j: an integer or float of
// the field's width, a string, a DateValue or a TimeValue.
func (t *Table) Value(i, j int) (any, error) {
	if err := t.checkField(i); err != nil {
		return nil, err
	}
	if err := t.checkRow(j); err != nil {
		return nil, err
	}
	c := t.cell(i, t.index[j])
	if t.fields[i].Type == Text {
		return t.getText(buf.U32LE(c))
	}
	return decode(t.fields[i].Type, c), nil
}

// Get returns field i of row j as a literal.
func (t *Table) Get(i, j int) (string, error) {
	v, err := t.Value(i, j)
	if err != nil {
		return "", err
	}
	return format(v), nil
}

// Record returns every literal of row j in field order.
func (t *Table) Record(j int) ([]string, error) {
	if err := t.checkRow(j); err != nil {
		return nil, err
	}
	out := make([]string, len(t.fields))
	for i := range t.fields {
		s, err := t.Get(i, j)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Write replaces field i of row j with the value parsed from lit.
func (t *Table) Write(i, j int, lit string) error {
	if err := t.checkField(i); err != nil {
		return err
	}
	if err := t.checkRow(j); err != nil {
		return err
	}
	f := t.fields[i]
	c := t.cell(i, t.index[j])
	if f.Type != Text {
		raw := make([]byte, len(c))
		if err := encode(f.Type, lit, raw); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
		copy(c, raw)
		return nil
	}
	h, err := t.putText(lit)
	if err != nil {
		return err
	}
	t.freeText(buf.U32LE(c))
	buf.PutU32LE(c, h)
	return nil
}

// Join appends every row of other, in other's virtual order. Both tables
// must have the same field types in the same order.
func (t *Table) Join(other *Table) error {
	if len(t.fields) != len(other.fields) {
		return fmt.Errorf("%w: %d fields vs %d", ErrSchemaMismatch, len(t.fields), len(other.fields))
	}
	for i, f := range t.fields {
		if f.Type != other.fields[i].Type {
			return fmt.Errorf("%w: field %d is %s vs %s", ErrSchemaMismatch, i, f.Type, other.fields[i].Type)
		}
	}
	if free := t.capacity - t.count; free < other.count {
		if err := t.growRows(buf.RoundUp(other.count-free, t.opts.RowsGrow)); err != nil {
			return err
		}
	}

	base := t.count
	for j := range other.count {
		p, q := t.count, other.index[j]
		clear(t.slot(p))
		for i, f := range t.fields {
			src := other.cell(i, q)
			if f.Type != Text {
				copy(t.cell(i, p), src)
				continue
			}
			s, err := other.getText(buf.U32LE(src))
			if err == nil {
				var h uint32
				if h, err = t.putText(s); err == nil {
					buf.PutU32LE(t.cell(i, p), h)
					continue
				}
			}
			t.freeSlotText(p)
			clear(t.slot(p))
			t.truncate(base)
			return err
		}
		t.count++
		t.index = append(t.index, p)
	}
	return nil
}

// truncate drops rows appended after row count n. It assumes those rows
// occupy the physical slots at and after n.
func (t *Table) truncate(n int) {
	for p := n; p < t.count; p++ {
		t.freeSlotText(p)
		clear(t.slot(p))
	}
	t.count = n
	t.index = t.index[:n]
}
