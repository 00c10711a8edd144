package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hujiyo/Mhuixs-sub001/engine/kvstore"
	"github.com/hujiyo/Mhuixs-sub001/pkg/script"
)

var runContinue bool

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runContinue, "continue", false, "Keep going after a failing step")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Run an operation script",
		Long: `The run command executes a YAML operation script against a fresh
in-memory key store and prints the output of every step.

Example:
  mhuixsctl run users.yaml
  mhuixsctl run users.yaml --continue --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
}

// stepResult is the printable form of script.Result.
type stepResult struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Key    string `json:"key"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// execScript loads and runs a script against a new store built from cfg.
func execScript(path string) (*kvstore.Store, []script.Result, error) {
	printVerbose("Loading script: %s\n", path)
	s, err := script.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if runContinue {
		s.ContinueOnError = true
	}
	store := kvstore.New(cfg.StoreOptions())
	results, err := script.NewRunner(store).Run(s)
	return store, results, err
}

func runRun(args []string) error {
	store, results, runErr := execScript(args[0])
	if store == nil {
		return runErr
	}
	defer store.Clear()

	out := make([]stepResult, len(results))
	failed := 0
	for i, r := range results {
		out[i] = stepResult{Index: r.Index, Op: r.Op, Key: r.Key, Output: r.Output}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
			failed++
		}
	}

	if runErr == nil && failed > 0 {
		runErr = fmt.Errorf("%d step(s) failed", failed)
	}

	if jsonOut {
		if err := printJSON(out); err != nil {
			return err
		}
		return runErr
	}

	for _, r := range out {
		switch {
		case r.Error != "":
			printInfo("[%d] %s %s: error: %s\n", r.Index, r.Op, r.Key, r.Error)
		case strings.Contains(r.Output, "\n"):
			printInfo("[%d] %s %s:\n%s", r.Index, r.Op, r.Key, r.Output)
		case r.Output != "":
			printInfo("[%d] %s %s: %s\n", r.Index, r.Op, r.Key, r.Output)
		default:
			printVerbose("[%d] %s %s: ok\n", r.Index, r.Op, r.Key)
		}
	}
	printInfo("%d step(s), %d failed, %d key(s)\n", len(out), failed, store.Len())
	if runErr != nil {
		return fmt.Errorf("script failed: %w", runErr)
	}
	return nil
}
