package planner

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
	"github.com/danieljhkim/hdlplan/internal/options"
)

// Format is a manifest encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatMsgpack Format = "msgpack"
)

// Formats lists every supported encoding.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatMsgpack}

// ParseFormat parses a format name, case-insensitively. "yml" is accepted.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return "", cfgerr.Configurationf("unknown manifest format %q", s)
	}
}

// Manifest is the serializable form of a BuildPlan handed to external
// engines.
type Manifest struct {
	Builtins       []string          `json:"builtins" yaml:"builtins" toml:"builtins" msgpack:"builtins"`
	Libraries      []ManifestLibrary `json:"libraries" yaml:"libraries" toml:"libraries" msgpack:"libraries"`
	CompileOptions []ManifestOption  `json:"compile_options" yaml:"compile_options" toml:"compile_options" msgpack:"compile_options"`
	SimOptions     []ManifestOption  `json:"sim_options" yaml:"sim_options" toml:"sim_options" msgpack:"sim_options"`
}

// ManifestLibrary is one library in compile order.
type ManifestLibrary struct {
	Name     string   `json:"name" yaml:"name" toml:"name" msgpack:"name"`
	Files    []string `json:"files" yaml:"files" toml:"files" msgpack:"files"`
	Patterns []string `json:"patterns" yaml:"patterns" toml:"patterns" msgpack:"patterns"`
}

// ManifestOption is one (backend, key) option list.
type ManifestOption struct {
	Backend string   `json:"backend" yaml:"backend" toml:"backend" msgpack:"backend"`
	Key     string   `json:"key" yaml:"key" toml:"key" msgpack:"key"`
	Values  []string `json:"values" yaml:"values" toml:"values" msgpack:"values"`
}

// Manifest returns the plan's serializable form. Options are ordered by
// backend name, then by first insertion of each key.
func (p *BuildPlan) Manifest() Manifest {
	m := Manifest{
		Builtins:       append([]string{}, p.builtins...),
		Libraries:      make([]ManifestLibrary, len(p.libraries)),
		CompileOptions: flattenOptions(p.compile),
		SimOptions:     flattenOptions(p.sim),
	}
	for i, lib := range p.libraries {
		m.Libraries[i] = ManifestLibrary{
			Name:     lib.Name,
			Files:    lib.Paths(),
			Patterns: append([]string{}, lib.Patterns...),
		}
	}
	return m
}

func flattenOptions(s options.Snapshot) []ManifestOption {
	backends := make([]string, 0, len(s))
	for b := range s {
		backends = append(backends, b)
	}
	sort.Strings(backends)

	out := []ManifestOption{}
	for _, b := range backends {
		for _, e := range s[b] {
			out = append(out, ManifestOption{
				Backend: b,
				Key:     e.Key,
				Values:  append([]string{}, e.Values...),
			})
		}
	}
	return out
}

// Encode writes m to w in format f.
func (m Manifest) Encode(w io.Writer, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return toml.NewEncoder(w).Encode(m)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(m)
	default:
		return cfgerr.Configurationf("unknown manifest format %q", f)
	}
}

// DecodeManifest reads a manifest written by Encode.
func DecodeManifest(r io.Reader, f Format) (Manifest, error) {
	var m Manifest
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&m)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&m)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&m)
	case FormatMsgpack:
		err = msgpack.NewDecoder(r).Decode(&m)
	default:
		return Manifest{}, cfgerr.Configurationf("unknown manifest format %q", f)
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to decode %s manifest: %w", f, err)
	}
	return m, nil
}
