package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/danieljhkim/hdlplan/internal/cfgerr"
)

// EnvPrefix prefixes every environment override. A double underscore maps to
// a nested key: HDLPLAN_RUNNER__FORMAT sets runner.format.
const EnvPrefix = "HDLPLAN_"

// ManifestNames are the project manifest file names, in lookup order.
var ManifestNames = []string{"hdlplan.yaml", "hdlplan.yml"}

// maxUpwardSearchLevels limits how far up the directory tree to search for a
// manifest.
const maxUpwardSearchLevels = 10

// flagKeys maps command-line flag names to config keys. Flags not listed
// here are command options, not settings.
var flagKeys = map[string]string{
	"root":      "root",
	"simulator": "simulator",
	"jobs":      "jobs",
	"verbose":   "verbose",
}

// LoadOptions controls Load.
type LoadOptions struct {
	// ConfigFile is an explicit manifest path (the --config flag)
	ConfigFile string

	// WorkDir is where the manifest search starts (default: current directory)
	WorkDir string

	// Flags are the parsed command-line flags; only changed flags apply
	Flags *pflag.FlagSet

	// Paths locates the user config file; nil skips it
	Paths *Paths
}

// FindManifest searches startDir and its parents for a project manifest.
// It returns "" if none is found.
func FindManifest(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		for _, name := range ManifestNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load builds a Project from defaults, the user config, the manifest, the
// environment and flags, in increasing priority.
func Load(opts LoadOptions) (*Project, error) {
	workDir := opts.WorkDir
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		workDir = cwd
	}
	workDir, err := filepath.Abs(workDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve working directory: %w", err)
	}

	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"root":          ".",
		"jobs":          runtime.GOMAXPROCS(0),
		"verbose":       false,
		"runner.format": "json",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. User config
	if opts.Paths != nil {
		if info, err := os.Stat(opts.Paths.Config); err == nil && !info.IsDir() {
			if err := k.Load(file.Provider(opts.Paths.Config), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("error reading user config %s: %w", opts.Paths.Config, err)
			}
		}
	}

	// 3. Project manifest
	manifest := opts.ConfigFile
	if manifest != "" {
		if !filepath.IsAbs(manifest) {
			manifest = filepath.Join(workDir, manifest)
		}
		if _, err := os.Stat(manifest); err != nil {
			return nil, cfgerr.Configurationf("manifest %s: %v", opts.ConfigFile, err)
		}
	} else {
		manifest = FindManifest(workDir)
	}
	if manifest != "" {
		if err := k.Load(file.Provider(manifest), yaml.Parser()); err != nil {
			return nil, cfgerr.Configurationf("error reading manifest %s: %v", manifest, err)
		}
	}

	// 4. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 5. Flags
	var flagRoot string
	if opts.Flags != nil {
		if f := opts.Flags.Lookup("root"); f != nil && f.Changed {
			flagRoot, _ = filepath.Abs(f.Value.String())
		}
		if err := k.Load(posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var p Project
	if err := k.Unmarshal("", &p); err != nil {
		return nil, cfgerr.Configurationf("unable to decode config: %v", err)
	}
	p.ManifestPath = manifest

	// A --root flag is relative to the working directory; a root from any
	// file or the environment is relative to the manifest.
	base := workDir
	if manifest != "" {
		base = filepath.Dir(manifest)
	}
	if flagRoot != "" {
		p.Root = flagRoot
	} else {
		p.Root = resolvePathRelativeTo(p.Root, base)
	}
	for i := range p.Libraries {
		if p.Libraries[i].Root != "" {
			p.Libraries[i].Root = resolvePathRelativeTo(p.Libraries[i].Root, p.Root)
		}
	}
	if p.Runner.Dir != "" {
		p.Runner.Dir = resolvePathRelativeTo(p.Runner.Dir, base)
	}
	if p.Jobs == 0 {
		p.Jobs = 1
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// resolvePathRelativeTo resolves path against baseDir unless it is absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" {
		return baseDir
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}
