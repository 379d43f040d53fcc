// Package options holds per-backend option lists.
//
// A Table is a multi-map keyed by (backend, key). Backend identifiers are
// opaque strings: "ghdl", "nvc" or anything a future simulator adapter
// understands. Only the execution side decides whether a backend is valid.
// Within one (backend, key) the order of values is preserved, since flag order
// can matter to an external compiler.
package options

import (
	"slices"
	"sort"
	"strings"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
)

// Entry is one option key and its values.
type Entry struct {
	Key    string
	Values []string
}

// Snapshot is a detached copy of a Table: backend -> entries in first
// insertion order.
type Snapshot map[string][]Entry

type backendOptions struct {
	keys   []string
	values map[string][]string
}

// Table is a mutable option multi-map.
type Table struct {
	backends map[string]*backendOptions
	sealed   bool
}

// New creates an empty Table.
func New() *Table {
	return &Table{backends: make(map[string]*backendOptions)}
}

// Add appends values to the list for (backend, key). Existing values are kept.
func (t *Table) Add(backend, key string, values ...string) error {
	opts, err := t.entry(backend, key)
	if err != nil {
		return err
	}
	opts.values[key] = append(opts.values[key], values...)
	return nil
}

// Set replaces the list for (backend, key).
func (t *Table) Set(backend, key string, values ...string) error {
	opts, err := t.entry(backend, key)
	if err != nil {
		return err
	}
	opts.values[key] = slices.Clone(values)
	if opts.values[key] == nil {
		opts.values[key] = []string{}
	}
	return nil
}

// AddQualified is Add with a "backend.key" name, e.g. "nvc.a_flags".
func (t *Table) AddQualified(name string, values ...string) error {
	backend, key, err := SplitName(name)
	if err != nil {
		return err
	}
	return t.Add(backend, key, values...)
}

// SetQualified is Set with a "backend.key" name.
func (t *Table) SetQualified(name string, values ...string) error {
	backend, key, err := SplitName(name)
	if err != nil {
		return err
	}
	return t.Set(backend, key, values...)
}

// SplitName splits "backend.key" at the first dot.
func SplitName(name string) (backend, key string, err error) {
	backend, key, ok := strings.Cut(name, ".")
	if !ok || backend == "" || key == "" {
		return "", "", cfgerr.Configurationf("option name %q must have the form <backend>.<key>", name)
	}
	return backend, key, nil
}

func (t *Table) entry(backend, key string) (*backendOptions, error) {
	if t.sealed {
		return nil, cfgerr.Configurationf("cannot change option %s.%s: configuration is frozen", backend, key)
	}
	if strings.TrimSpace(backend) == "" {
		return nil, cfgerr.Configurationf("option %q has an empty backend", key)
	}
	if strings.TrimSpace(key) == "" {
		return nil, cfgerr.Configurationf("backend %q option has an empty key", backend)
	}

	opts, ok := t.backends[backend]
	if !ok {
		opts = &backendOptions{values: make(map[string][]string)}
		t.backends[backend] = opts
	}
	if _, ok := opts.values[key]; !ok {
		opts.keys = append(opts.keys, key)
		opts.values[key] = []string{}
	}
	return opts, nil
}

// Values returns a copy of the list for (backend, key), or nil if unset.
func (t *Table) Values(backend, key string) []string {
	opts, ok := t.backends[backend]
	if !ok {
		return nil
	}
	vals, ok := opts.values[key]
	if !ok {
		return nil
	}
	return slices.Clone(vals)
}

// Backends returns every backend with at least one key, sorted.
func (t *Table) Backends() []string {
	out := make([]string, 0, len(t.backends))
	for b := range t.backends {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Keys returns the keys of backend in first-insertion order.
func (t *Table) Keys(backend string) []string {
	opts, ok := t.backends[backend]
	if !ok {
		return nil
	}
	return slices.Clone(opts.keys)
}

// Len returns the number of (backend, key) pairs.
func (t *Table) Len() int {
	n := 0
	for _, opts := range t.backends {
		n += len(opts.keys)
	}
	return n
}

// Snapshot returns a deep copy of the table.
func (t *Table) Snapshot() Snapshot {
	snap := make(Snapshot, len(t.backends))
	for backend, opts := range t.backends {
		entries := make([]Entry, len(opts.keys))
		for i, k := range opts.keys {
			entries[i] = Entry{Key: k, Values: slices.Clone(opts.values[k])}
		}
		snap[backend] = entries
	}
	return snap
}

// Seal makes the table read-only. It cannot be undone.
func (t *Table) Seal() {
	t.sealed = true
}

// Values looks up (backend, key) in a snapshot.
func (s Snapshot) Values(backend, key string) []string {
	for _, e := range s[backend] {
		if e.Key == key {
			return slices.Clone(e.Values)
		}
	}
	return nil
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for backend, entries := range s {
		cp := make([]Entry, len(entries))
		for i, e := range entries {
			cp[i] = Entry{Key: e.Key, Values: slices.Clone(e.Values)}
		}
		out[backend] = cp
	}
	return out
}
