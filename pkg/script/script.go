// Package script runs YAML operation scripts against a key store.
//
// A script is a list of steps, each naming an operation, a key and string
// arguments:
//
//	continue_on_error: false
//	steps:
//	  - {op: kv.add, key: users, args: [table]}
//	  - {op: table.addfield, key: users, args: [id, i32, primary]}
//	  - {op: table.add, key: users, args: ["1,John,30"]}
//	  - {op: list.rpush, key: queue, args: [a, b, c]}
//
// Write operations on stream, list and bitvec keys create the key when it is
// missing. Table operations other than table.addfield need an existing table.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hujiyo/Mhuixs-sub001/engine/kvstore"
	"github.com/hujiyo/Mhuixs-sub001/internal/logger"
)

var (
	// ErrUnknownOp is returned for an operation name Run does not know.
	ErrUnknownOp = errors.New("script: unknown operation")

	// ErrArgs is returned when a step has missing or malformed arguments.
	ErrArgs = errors.New("script: bad arguments")
)

// Script is a parsed script document.
type Script struct {
	ContinueOnError bool   `yaml:"continue_on_error"`
	Steps           []Step `yaml:"steps"`
}

// Step is one operation.
type Step struct {
	Op   string   `yaml:"op"`
	Key  string   `yaml:"key"`
	Args []string `yaml:"args,omitempty"`
}

// Result is the outcome of one step.
type Result struct {
	Index  int    `json:"index"`
	Op     string `json:"op"`
	Key    string `json:"key"`
	Output string `json:"output,omitempty"`
	Err    error  `json:"-"`
}

// Load reads a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: %w", err)
	}
	return Parse(data)
}

// Parse decodes a script document.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("script: parse: %w", err)
	}
	for i, st := range s.Steps {
		if st.Op == "" {
			return nil, fmt.Errorf("script: step %d: missing op", i)
		}
	}
	return &s, nil
}

// Runner executes scripts against a store.
type Runner struct {
	store *kvstore.Store
	log   *slog.Logger
}

// NewRunner returns a runner bound to store.
func NewRunner(store *kvstore.Store) *Runner {
	return &Runner{store: store, log: logger.L}
}

// Store returns the store the runner writes to.
func (r *Runner) Store() *kvstore.Store { return r.store }

// Run executes the steps in order. It stops at the first failing step and
// returns its error unless ContinueOnError is set, in which case failures
// are recorded only in the results.
func (r *Runner) Run(s *Script) ([]Result, error) {
	results := make([]Result, 0, len(s.Steps))
	for i, st := range s.Steps {
		out, err := r.Exec(st)
		results = append(results, Result{Index: i, Op: st.Op, Key: st.Key, Output: out, Err: err})
		if err != nil {
			r.log.Debug("script step failed", "index", i, "op", st.Op, "key", st.Key, "error", err)
			if !s.ContinueOnError {
				return results, fmt.Errorf("step %d (%s %s): %w", i, st.Op, st.Key, err)
			}
		}
	}
	return results, nil
}

// Exec runs a single step and returns its output.
func (r *Runner) Exec(st Step) (string, error) {
	fn, ok := ops[st.Op]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, st.Op)
	}
	if st.Key == "" {
		return "", fmt.Errorf("%w: missing key", ErrArgs)
	}
	return fn(r, st)
}

// Ops returns the names of every supported operation.
func Ops() []string {
	names := make([]string, 0, len(ops))
	for n := range ops {
		names = append(names, n)
	}
	return names
}
