package table

import "github.com/google/uuid"

// Stats is a point-in-time summary of a table.
type Stats struct {
	ID   uuid.UUID
	Name string

	Fields   int
	Rows     int
	Capacity int // physical rows allocated

	Stride     int
	Usage      int
	IdleRanges int
	IdleBytes  int
	RowBytes   int // Capacity * Stride

	TextBlocks int // allocated blocks in the text arena
	TextBytes  int // total text arena size
}

// Stats returns the current table statistics.
func (t *Table) Stats() Stats {
	ts := t.text.Stats()
	return Stats{
		ID:         t.id,
		Name:       t.name,
		Fields:     len(t.fields),
		Rows:       t.count,
		Capacity:   t.capacity,
		Stride:     t.stride,
		Usage:      t.usage,
		IdleRanges: t.idle.len(),
		IdleBytes:  t.idle.bytes(),
		RowBytes:   len(t.rows),
		TextBlocks: ts.UsedBlocks,
		TextBytes:  ts.TotalBytes,
	}
}
