package arena

// Stats is a point-in-time snapshot of arena usage.
type Stats struct {
	BlockSize   int     // bytes per block
	Blocks      int     // total blocks
	UsedBlocks  int     // allocated blocks
	TotalBytes  int     // header + bitmap + data
	DataBytes   int     // data region size
	Utilization float64 // UsedBlocks / Blocks, 0 when empty

	AllocCalls int // successful and failed Alloc calls
	FreeCalls  int // successful Free calls
	GrowCalls  int // completed grows
	GrowBlocks int // blocks added by grows
}

// Stats returns a snapshot of the arena's usage counters.
func (a *Arena) Stats() Stats {
	s := Stats{
		BlockSize:  a.blockSize,
		Blocks:     a.blocks,
		UsedBlocks: a.used,
		TotalBytes: len(a.buf),
		DataBytes:  a.blocks * a.blockSize,
		AllocCalls: a.stats.allocCalls,
		FreeCalls:  a.stats.freeCalls,
		GrowCalls:  a.stats.growCalls,
		GrowBlocks: a.stats.growBlocks,
	}
	if a.blocks > 0 {
		s.Utilization = float64(a.used) / float64(a.blocks)
	}
	return s
}

// UsedKB returns the total buffer size in KiB, rounded down.
func (a *Arena) UsedKB() int {
	return len(a.buf) / 1024
}
