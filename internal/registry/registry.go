// Package registry maintains the named compilation libraries of a build.
//
// Libraries are compiled in first-registration order: a later library may use
// design units from an earlier one, and the external simulator compiles
// strictly in the order given. Library names follow VHDL identifier rules and
// are compared case-insensitively, so "utils" and "UTILS" are the same
// library.
package registry

import (
	"regexp"
	"slices"
	"strings"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/locator"
)

// identifierPattern matches a VHDL basic identifier.
var identifierPattern = regexp.MustCompile(`^[A-Za-z]([A-Za-z0-9]|_[A-Za-z0-9])*$`)

// Library is a read-only view of a registered library.
type Library struct {
	// Name is the library name as registered.
	Name string

	// Sources are the library's files in insertion order, without duplicates.
	Sources []locator.SourceFile

	// Patterns lists every pattern contributed, including ones that matched
	// nothing.
	Patterns []string
}

// Handle refers to a library inside the Registry that issued it.
type Handle struct {
	reg *Registry
	idx int
}

// Valid reports whether h was issued by a Registry.
func (h Handle) Valid() bool {
	return h.reg != nil
}

type library struct {
	name     string
	sources  []locator.SourceFile
	seen     map[string]struct{}
	patterns []string
}

// Registry holds the libraries of one configuration run.
// It is not safe for concurrent mutation.
type Registry struct {
	libraries []*library
	byName    map[string]int
	builtins  []string
	sealed    bool
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]int),
	}
}

func nameKey(name string) string {
	return strings.ToLower(name)
}

// Register adds a new library. On failure the registry is left unchanged.
func (r *Registry) Register(name string) (Handle, error) {
	if r.sealed {
		return Handle{}, cfgerr.Configurationf("cannot register library %q: configuration is frozen", name)
	}
	if !identifierPattern.MatchString(name) {
		return Handle{}, cfgerr.Configurationf("invalid library name %q: must be a VHDL identifier", name)
	}
	key := nameKey(name)
	if _, exists := r.byName[key]; exists {
		return Handle{}, &cfgerr.DuplicateLibraryError{Name: name}
	}

	r.libraries = append(r.libraries, &library{
		name: name,
		seen: make(map[string]struct{}),
	})
	idx := len(r.libraries) - 1
	r.byName[key] = idx

	return Handle{reg: r, idx: idx}, nil
}

// AddSources appends files to the library behind h, skipping paths it already
// holds. pattern is recorded for error reporting even when files is empty;
// whether a library ended up empty is only judged at freeze time.
func (r *Registry) AddSources(h Handle, pattern string, files []locator.SourceFile) error {
	lib, err := r.resolve(h)
	if err != nil {
		return err
	}
	if r.sealed {
		return cfgerr.Configurationf("cannot add sources to library %q: configuration is frozen", lib.name)
	}

	if pattern != "" && !slices.Contains(lib.patterns, pattern) {
		lib.patterns = append(lib.patterns, pattern)
	}
	for _, f := range files {
		if _, dup := lib.seen[f.Path]; dup {
			continue
		}
		lib.seen[f.Path] = struct{}{}
		lib.sources = append(lib.sources, f)
	}

	return nil
}

func (r *Registry) resolve(h Handle) (*library, error) {
	if h.reg != r || h.idx < 0 || h.idx >= len(r.libraries) {
		return nil, cfgerr.Configurationf("library handle does not belong to this registry")
	}
	return r.libraries[h.idx], nil
}

// AddBuiltins records engine-provided builtin library sets such as "vhdl".
// Builtins are not libraries and carry no sources.
func (r *Registry) AddBuiltins(kinds ...string) error {
	if r.sealed {
		return cfgerr.Configurationf("cannot add builtins: configuration is frozen")
	}
	normalized := make([]string, len(kinds))
	for i, k := range kinds {
		normalized[i] = strings.TrimSpace(strings.ToLower(k))
		if normalized[i] == "" {
			return cfgerr.Configurationf("empty builtin kind")
		}
	}
	for _, k := range normalized {
		if !slices.Contains(r.builtins, k) {
			r.builtins = append(r.builtins, k)
		}
	}
	return nil
}

// Builtins returns the builtin sets in first-added order.
func (r *Registry) Builtins() []string {
	return slices.Clone(r.builtins)
}

// Lookup finds a library by name, case-insensitively.
func (r *Registry) Lookup(name string) (Library, bool) {
	idx, ok := r.byName[nameKey(name)]
	if !ok {
		return Library{}, false
	}
	return r.libraries[idx].view(), true
}

// Libraries returns copies of all libraries in registration order.
func (r *Registry) Libraries() []Library {
	out := make([]Library, len(r.libraries))
	for i, lib := range r.libraries {
		out[i] = lib.view()
	}
	return out
}

// Len returns the number of registered libraries.
func (r *Registry) Len() int {
	return len(r.libraries)
}

// Seal makes the registry read-only. It cannot be undone.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed
}

func (l *library) view() Library {
	return Library{
		Name:     l.name,
		Sources:  slices.Clone(l.sources),
		Patterns: slices.Clone(l.patterns),
	}
}
