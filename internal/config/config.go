// Package config loads the .mcp-vector-search configuration document
// from its three well-known locations and compiles its
// `sources` sequence into path-specs: yaml.v3 parsing, a defaults-first
// load order, and a Validate pass before the config is handed to the
// rest of the system.
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	amanerrors "github.com/Aman-CERP/mcp-vector-search/internal/errors"
	"github.com/Aman-CERP/mcp-vector-search/internal/ingest"
	"github.com/Aman-CERP/mcp-vector-search/internal/pathspec"
)

//go:embed default.yaml
var embeddedDefaultFS embed.FS

// configDirName and configFileName make up the well-known relative
// path searched for at the project directory and user home. The
// original host's `.edn` document format is translated to YAML here;
// see DESIGN.md.
const (
	configDirName  = ".mcp-vector-search"
	configFileName = "config.yaml"
)

// Config is the parsed configuration document.
type Config struct {
	Description string         `yaml:"description"`
	Watch       bool           `yaml:"watch"`
	Sources     []SourceConfig `yaml:"sources"`
}

// SourceConfig is one entry of the `sources` sequence. Recognized keys
// are typed fields; every other key lands in Extra and becomes base
// metadata, via yaml.v3's inline-map capture of unmatched keys.
type SourceConfig struct {
	Path            string `yaml:"path"`
	ClassPath       string `yaml:"class-path"`
	Name            string `yaml:"name"`
	Ingest          string `yaml:"ingest"`
	Watch           *bool  `yaml:"watch"`
	Embedding       string `yaml:"embedding"`
	ContentStrategy string `yaml:"content-strategy"`
	ChunkSize       string `yaml:"chunk-size"`
	ChunkOverlap    string `yaml:"chunk-overlap"`
	Visibility      string `yaml:"visibility"`
	ElementTypes    string `yaml:"element-types"`

	Extra map[string]string `yaml:",inline"`
}

// ProjectConfigPath returns the project-directory configuration path
// rooted at dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, configDirName, configFileName)
}

// UserConfigPath returns the user-home configuration path.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// Load resolves the configuration document from the three well-known
// locations, in ascending precedence: the bundled default,
// then the project directory, then the user home. Each location either
// fully supplies the document or is skipped; documents are not
// field-merged (see DESIGN.md's internal/config entry), since
// `sources` is a single required whole-document field rather than a set
// of independently-overridable settings.
func Load(projectDir string) (*Config, error) {
	cfg, err := loadEmbeddedDefault()
	if err != nil {
		return nil, err
	}

	if projectCfg, ok, err := tryLoad(ProjectConfigPath(projectDir)); err != nil {
		return nil, err
	} else if ok {
		cfg = projectCfg
	}

	if userPath, err := UserConfigPath(); err == nil {
		if userCfg, ok, err := tryLoad(userPath); err != nil {
			return nil, err
		} else if ok {
			cfg = userCfg
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEmbeddedDefault() (*Config, error) {
	data, err := embeddedDefaultFS.ReadFile("default.yaml")
	if err != nil {
		return nil, amanerrors.New(amanerrors.ErrCodeConfigInvalid, "failed to read bundled default configuration", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, amanerrors.New(amanerrors.ErrCodeConfigInvalid, "failed to parse bundled default configuration", err)
	}
	return &cfg, nil
}

// tryLoad loads and parses path if it exists. A missing file is not an
// error: ok is false and cfg is nil.
func tryLoad(path string) (cfg *Config, ok bool, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, false, nil
		}
		return nil, false, amanerrors.New(amanerrors.ErrCodeConfigPermission, fmt.Sprintf("failed to read config %s", path), readErr)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, false, amanerrors.New(amanerrors.ErrCodeConfigInvalid, fmt.Sprintf("failed to parse config %s", path), err)
	}
	return &parsed, true, nil
}

// Validate enforces the source shape rules. A malformed configuration
// is a fatal config-error.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return amanerrors.New(amanerrors.ErrCodeConfigInvalid, "configuration must declare at least one source", nil)
	}
	for i, sc := range c.Sources {
		hasPath := sc.Path != ""
		hasClassPath := sc.ClassPath != ""
		if hasPath == hasClassPath {
			return amanerrors.New(amanerrors.ErrCodeConfigInvalid,
				fmt.Sprintf("source[%d] must declare exactly one of path or class-path", i), nil)
		}
	}
	return nil
}

// PathSpecs compiles every configured source into a PathSpec, in
// declaration order.
func (c *Config) PathSpecs() ([]*pathspec.PathSpec, error) {
	specs := make([]*pathspec.PathSpec, 0, len(c.Sources))
	for i, sc := range c.Sources {
		spec, err := sc.compile(c.Watch)
		if err != nil {
			return nil, fmt.Errorf("source[%d]: %w", i, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// compile builds a PathSpec from one raw source entry, partitioning its
// keys into the recognized strategy/metadata fields and the residual
// base metadata.
func (sc SourceConfig) compile(globalWatchDefault bool) (*pathspec.PathSpec, error) {
	var raw string
	var sourceType pathspec.SourceType
	switch {
	case sc.Path != "":
		raw = sc.Path
		sourceType = pathspec.SourceFilesystem
	case sc.ClassPath != "":
		raw = sc.ClassPath
		sourceType = pathspec.SourceClasspath
	default:
		return nil, amanerrors.New(amanerrors.ErrCodeConfigInvalid, "source must declare path or class-path", nil)
	}

	strategy := sc.Ingest
	if strategy == "" {
		strategy = ingest.StrategyWholeDocument
	}

	strategyParams := make(map[string]string)
	for key, value := range map[string]string{
		"embedding":        sc.Embedding,
		"content-strategy": sc.ContentStrategy,
		"chunk-size":       sc.ChunkSize,
		"chunk-overlap":    sc.ChunkOverlap,
		"visibility":       sc.Visibility,
		"element-types":    sc.ElementTypes,
	} {
		if value != "" {
			strategyParams[key] = value
		}
	}

	baseMetadata := make(map[string]string, len(sc.Extra)+1)
	for k, v := range sc.Extra {
		baseMetadata[k] = v
	}
	if sc.Name != "" {
		baseMetadata["name"] = sc.Name
	}

	watch := pathspec.WatchDefault
	if sc.Watch != nil {
		if *sc.Watch {
			watch = pathspec.WatchEnabled
		} else {
			watch = pathspec.WatchDisabled
		}
	}

	return pathspec.Compile(raw, sourceType, baseMetadata, strategy, strategyParams, watch)
}

// WatchedSpecs filters specs to the filesystem sources whose watch
// setting resolves to enabled against the configured global default.
// Classpath sources are never watched.
func (c *Config) WatchedSpecs(specs []*pathspec.PathSpec) []*pathspec.PathSpec {
	out := make([]*pathspec.PathSpec, 0, len(specs))
	for _, spec := range specs {
		if spec.SourceType != pathspec.SourceFilesystem {
			continue
		}
		if spec.Watch.Resolve(c.Watch) {
			out = append(out, spec)
		}
	}
	return out
}
