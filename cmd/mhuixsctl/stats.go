package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hujiyo/Mhuixs-sub001/engine/bitvec"
	"github.com/hujiyo/Mhuixs-sub001/engine/kvstore"
	"github.com/hujiyo/Mhuixs-sub001/engine/list"
	"github.com/hujiyo/Mhuixs-sub001/engine/stream"
	"github.com/hujiyo/Mhuixs-sub001/engine/table"
	"github.com/hujiyo/Mhuixs-sub001/internal/writer"
)

var statsOut string

func init() {
	cmd := newStatsCmd()
	cmd.Flags().StringVarP(&statsOut, "out", "o", "", "Also write the JSON report to this file")
	rootCmd.AddCommand(cmd)
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <script.yaml>",
		Short: "Run a script and show store statistics",
		Long: `The stats command runs a script like run does, then reports key store
statistics (load factor, bucket chains, bloom filter size) and the memory
held by every key's payload.

Example:
  mhuixsctl stats users.yaml
  mhuixsctl stats users.yaml --json
  mhuixsctl stats users.yaml --out report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(args)
		},
	}
}

// KeyStats describes one key's payload.
type KeyStats struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Items  int    `json:"items"` // bytes, elements, bits, rows or keys
	Bytes  int    `json:"bytes"` // memory held by the payload
	Detail string `json:"detail,omitempty"`
}

// StoreStats is the stats command output.
type StoreStats struct {
	ID           string         `json:"id"`
	Keys         int            `json:"keys"`
	Buckets      int            `json:"buckets"`
	LoadFactor   float64        `json:"load_factor"`
	EmptyBuckets int            `json:"empty_buckets"`
	MaxChain     int            `json:"max_chain"`
	Resizes      int            `json:"resizes"`
	Links        int            `json:"links"`
	BloomBytes   int            `json:"bloom_bytes"`
	ByType       map[string]int `json:"by_type"`
	KeyDetails   []KeyStats     `json:"key_details"`
}

func collectStats(s *kvstore.Store) StoreStats {
	st := s.Stats()
	out := StoreStats{
		ID:           st.ID.String(),
		Keys:         st.Keys,
		Buckets:      st.Buckets,
		LoadFactor:   st.LoadFactor,
		EmptyBuckets: st.EmptyBuckets,
		MaxChain:     st.MaxChain,
		Resizes:      st.Resizes,
		Links:        st.Links,
		BloomBytes:   int(st.BloomBits / 8),
		ByType:       make(map[string]int),
	}
	for t, n := range st.ByType {
		out.ByType[t.String()] = n
	}
	for _, e := range s.Entries() {
		out.KeyDetails = append(out.KeyDetails, payloadStats(e))
	}
	return out
}

func payloadStats(e kvstore.Entry) KeyStats {
	ks := KeyStats{Name: e.Name, Type: e.Type.String()}
	switch p := e.Payload.(type) {
	case *stream.Stream:
		ks.Items, ks.Bytes = p.Len(), p.StoredLen()
		ks.Detail = "level " + p.Level().String()
	case *list.List:
		as := p.Stats()
		ks.Items, ks.Bytes = p.Len(), as.TotalBytes
		ks.Detail = humanize.Comma(int64(as.UsedBlocks)) + " of " + humanize.Comma(int64(as.Blocks)) + " blocks used"
	case *bitvec.Vector:
		ks.Items, ks.Bytes = int(p.Len()), p.ByteSize()
		ks.Detail = humanize.Comma(int64(p.CountAll())) + " set"
	case *table.Table:
		ts := p.Stats()
		ks.Items, ks.Bytes = ts.Rows, ts.RowBytes+ts.TextBytes
		ks.Detail = humanize.Comma(int64(ts.Fields)) + " fields, stride " + humanize.Comma(int64(ts.Stride))
	case *kvstore.Store:
		ks.Items = p.Len()
		ks.Detail = humanize.Comma(int64(p.Buckets())) + " buckets"
	}
	return ks
}

func runStats(args []string) error {
	store, _, err := execScript(args[0])
	if err != nil {
		if store == nil {
			return err
		}
		printVerbose("Script stopped early: %v\n", err)
	}
	defer store.Clear()

	st := collectStats(store)
	if statsOut != "" {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return err
		}
		if err := (&writer.FileWriter{Path: statsOut}).Write(data); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		printVerbose("Report written to %s\n", statsOut)
	}
	if jsonOut {
		return printJSON(st)
	}

	printInfo("Store %s\n", st.ID)
	printInfo("  Keys:          %s\n", humanize.Comma(int64(st.Keys)))
	printInfo("  Buckets:       %s (load %.3f, %d resize(s))\n", humanize.Comma(int64(st.Buckets)), st.LoadFactor, st.Resizes)
	printInfo("  Empty buckets: %s, longest chain %d\n", humanize.Comma(int64(st.EmptyBuckets)), st.MaxChain)
	printInfo("  Links:         %d\n", st.Links)
	printInfo("  Bloom filter:  %s\n", humanize.IBytes(uint64(st.BloomBytes)))

	types := make([]string, 0, len(st.ByType))
	for t := range st.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	if len(types) > 0 {
		printInfo("\nKeys by type:\n")
		for _, t := range types {
			printInfo("  %-8s %d\n", t, st.ByType[t])
		}
	}

	if len(st.KeyDetails) > 0 {
		printInfo("\nPayloads:\n")
		for _, k := range st.KeyDetails {
			printInfo("  %-16s %-7s %8s items %10s  %s\n",
				k.Name, k.Type, humanize.Comma(int64(k.Items)), humanize.IBytes(uint64(k.Bytes)), k.Detail)
		}
	}
	return nil
}
