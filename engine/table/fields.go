package table

import (
	"fmt"
	"slices"

	"github.com/hujiyo/Mhuixs-sub001/internal/buf"
)

// Fields returns a copy of the field descriptors in order.
func (t *Table) Fields() []Field { return slices.Clone(t.fields) }

// Field returns the descriptor of field i.
func (t *Table) Field(i int) (Field, error) {
	if err := t.checkField(i); err != nil {
		return Field{}, err
	}
	return t.fields[i], nil
}

// FieldIndex returns the position of the named field.
func (t *Table) FieldIndex(name string) (int, error) {
	for i, f := range t.fields {
		if f.Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrNoField, name)
}

func (t *Table) validName(name string, skip int) error {
	if len(name) == 0 || len(name) > MaxFieldName {
		return fmt.Errorf("%w: %q", ErrFieldName, name)
	}
	for i, f := range t.fields {
		if i != skip && f.Name == name {
			return fmt.Errorf("%w: %q", ErrDuplicateField, name)
		}
	}
	return nil
}

func (t *Table) validKey(k Key, skip int) error {
	if k > KeyIndex {
		return fmt.Errorf("%w: %d", ErrBadKey, k)
	}
	if k != KeyPrimary {
		return nil
	}
	for i, f := range t.fields {
		if i != skip && f.Key == KeyPrimary {
			return fmt.Errorf("%w: field %q", ErrPrimaryKey, f.Name)
		}
	}
	return nil
}

// AddField appends a field descriptor and gives it row bytes, reusing an
// idle range when one fits. Existing rows read the new field as zero.
func (t *Table) AddField(f Field) error {
	if !f.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrBadType, byte(f.Type))
	}
	if err := t.validName(f.Name, -1); err != nil {
		return err
	}
	if err := t.validKey(f.Key, -1); err != nil {
		return err
	}

	size := f.Type.Size()
	off, ok := t.idle.take(size)
	if !ok {
		off = t.usage
		if usage := t.usage + size; usage > t.stride {
			t.restride(t.fitStride(usage))
		}
		t.usage += size
	}
	t.fields = append(t.fields, f)
	t.offsets = append(t.offsets, off)
	for p := range t.count {
		clear(t.cell(len(t.fields)-1, p))
	}
	return nil
}

// InsertField adds f and moves it to position pos.
func (t *Table) InsertField(f Field, pos int) error {
	if pos < 0 || pos > len(t.fields) {
		return fmt.Errorf("%w: position %d (have %d)", ErrNoField, pos, len(t.fields))
	}
	if err := t.AddField(f); err != nil {
		return err
	}
	last := len(t.fields) - 1
	off := t.offsets[last]
	copy(t.fields[pos+1:], t.fields[pos:last])
	copy(t.offsets[pos+1:], t.offsets[pos:last])
	t.fields[pos], t.offsets[pos] = f, off
	return nil
}

// RemoveField drops field i from every row. Bytes freed at the end of the
// used area shrink it; bytes freed elsewhere become an idle range. The stride
// shrinks to the smallest step multiple that holds the used area.
func (t *Table) RemoveField(i int) error {
	if err := t.checkField(i); err != nil {
		return err
	}
	off, size := t.offsets[i], t.fields[i].Type.Size()
	for p := range t.count {
		c := t.cell(i, p)
		if t.fields[i].Type == Text {
			t.freeText(buf.U32LE(c))
		}
		clear(c)
	}
	t.fields = slices.Delete(t.fields, i, i+1)
	t.offsets = slices.Delete(t.offsets, i, i+1)

	if off+size == t.usage {
		t.usage = t.idle.trimTail(off)
	} else {
		t.idle.put(off, size)
	}
	if stride := t.fitStride(t.usage); stride < t.stride {
		t.restride(stride)
	}
	return nil
}

// SwapField exchanges the positions of fields i and j. Row bytes do not move.
func (t *Table) SwapField(i, j int) error {
	if err := t.checkField(i); err != nil {
		return err
	}
	if err := t.checkField(j); err != nil {
		return err
	}
	t.fields[i], t.fields[j] = t.fields[j], t.fields[i]
	t.offsets[i], t.offsets[j] = t.offsets[j], t.offsets[i]
	return nil
}

// RenameField changes the name of field i.
func (t *Table) RenameField(i int, name string) error {
	if err := t.checkField(i); err != nil {
		return err
	}
	if err := t.validName(name, i); err != nil {
		return err
	}
	t.fields[i].Name = name
	return nil
}

// SetFieldKey changes the key kind of field i.
func (t *Table) SetFieldKey(i int, k Key) error {
	if err := t.checkField(i); err != nil {
		return err
	}
	if err := t.validKey(k, i); err != nil {
		return err
	}
	t.fields[i].Key = k
	return nil
}
