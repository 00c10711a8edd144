package main

import (
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// Set through -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func init() {
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and engine dependency information",
		Long: `The version command prints the mhuixsctl release, the Go toolchain it was
built with and, with -v, the versions of the libraries the engines link against.

Example:
  mhuixsctl version -v
  mhuixsctl version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	}
}

// VersionInfo is the version command output.
type VersionInfo struct {
	Version string            `json:"version"`
	Commit  string            `json:"commit"`
	Built   string            `json:"built"`
	Go      string            `json:"go"`
	Deps    map[string]string `json:"deps,omitempty"`
}

func buildVersion() VersionInfo {
	info := VersionInfo{Version: version, Commit: commit, Built: date, Go: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Commit == "none" {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Commit = s.Value
			}
		}
	}
	info.Deps = make(map[string]string, len(bi.Deps))
	for _, dep := range bi.Deps {
		info.Deps[dep.Path] = dep.Version
	}
	return info
}

func runVersion() error {
	info := buildVersion()
	if jsonOut {
		return printJSON(info)
	}
	printInfo("mhuixsctl %s\n", info.Version)
	printInfo("  commit: %s\n", info.Commit)
	printInfo("  built:  %s\n", info.Built)
	printInfo("  go:     %s\n", info.Go)
	for _, path := range engineDeps {
		if v, ok := info.Deps[path]; ok {
			printVerbose("  %-40s %s\n", strings.TrimPrefix(path, "github.com/"), v)
		}
	}
	return nil
}

// engineDeps are the libraries listed by version -v.
var engineDeps = []string{
	"github.com/bits-and-blooms/bitset",
	"github.com/bits-and-blooms/bloom/v3",
	"github.com/cespare/xxhash/v2",
	"github.com/golang/snappy",
	"github.com/google/btree",
	"github.com/twmb/murmur3",
	"golang.org/x/text",
}
