package pathguard

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/zhangyunhao116/pathguard/internal/pathutil"
	"github.com/zhangyunhao116/pathguard/platform"
)

// SubstitutionPolicy determines how command and process substitutions are
// treated when they could hide what a dangerous command operates on.
type SubstitutionPolicy string

const (
	// SubstitutionBlock blocks a substitution that feeds a dangerous
	// command, a cd, or an output redirection, or that runs one.
	SubstitutionBlock SubstitutionPolicy = "block"

	// SubstitutionIgnore analyzes only the literal command text and lets
	// substitutions through unchecked.
	SubstitutionIgnore SubstitutionPolicy = "ignore"
)

// String returns the string representation of a SubstitutionPolicy.
func (p SubstitutionPolicy) String() string {
	switch p {
	case SubstitutionBlock, SubstitutionIgnore:
		return string(p)
	case "":
		return string(SubstitutionBlock)
	default:
		return unknownStr
	}
}

// Config holds the configuration of a Guard.
type Config struct {
	// Platforms lists the host agent platforms whose configuration
	// directories are writable. Names come from platform.Names.
	Platforms []string `yaml:"platforms" json:"platforms"`

	// PlatformDirs lists extra platform configuration directories, either
	// absolute or starting with "~/".
	PlatformDirs []string `yaml:"platform_dirs" json:"platform_dirs"`

	// TempDirs lists extra temp roots. They are writable like /tmp.
	TempDirs []string `yaml:"temp_dirs" json:"temp_dirs"`

	// Protected lists extra protected patterns, in glob syntax, matched
	// against the path relative to the working directory. A pattern
	// without a slash matches the file name at any depth.
	Protected []string `yaml:"protected" json:"protected"`

	// Substitution selects how substitutions are treated. Empty means
	// SubstitutionBlock.
	Substitution SubstitutionPolicy `yaml:"substitution" json:"substitution"`
}

// DefaultConfig returns a Config with every built-in platform enabled and
// substitutions blocked.
func DefaultConfig() *Config {
	return &Config{
		Platforms:    platform.Names(),
		PlatformDirs: []string{},
		TempDirs:     []string{},
		Protected:    []string{},
		Substitution: SubstitutionBlock,
	}
}

// Validate checks the configuration for errors and returns a descriptive error
// if any field is invalid. The returned error wraps ErrConfigInvalid.
func (c *Config) Validate() error {
	var errs []string

	for i, name := range c.Platforms {
		if _, ok := platform.Lookup(name); !ok {
			errs = append(errs, fmt.Sprintf("Platforms[%d]: unknown platform %q (known: %s)",
				i, name, strings.Join(platform.Names(), ", ")))
		}
	}

	for i, dir := range c.PlatformDirs {
		switch {
		case dir == "":
			errs = append(errs, fmt.Sprintf("PlatformDirs[%d]: must not be empty", i))
		case pathutil.ContainsNullByte(dir):
			errs = append(errs, fmt.Sprintf("PlatformDirs[%d]: must not contain null bytes", i))
		case !filepath.IsAbs(dir) && dir != "~" && !strings.HasPrefix(dir, "~/"):
			errs = append(errs, fmt.Sprintf("PlatformDirs[%d]: %q must be absolute or start with ~/", i, dir))
		}
	}

	for i, dir := range c.TempDirs {
		switch {
		case dir == "":
			errs = append(errs, fmt.Sprintf("TempDirs[%d]: must not be empty", i))
		case pathutil.ContainsNullByte(dir):
			errs = append(errs, fmt.Sprintf("TempDirs[%d]: must not contain null bytes", i))
		case !filepath.IsAbs(dir):
			errs = append(errs, fmt.Sprintf("TempDirs[%d]: %q must be an absolute path", i, dir))
		case filepath.Clean(dir) == string(filepath.Separator):
			errs = append(errs, fmt.Sprintf("TempDirs[%d]: the filesystem root cannot be a temp directory", i))
		}
	}

	for i, p := range c.Protected {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Sprintf("Protected[%d]: must not be empty", i))
			continue
		}
		if _, err := glob.Compile(strings.TrimPrefix(p, "/"), '/'); err != nil {
			errs = append(errs, fmt.Sprintf("Protected[%d]: invalid pattern %q: %v", i, p, err))
		}
	}

	if c.Substitution.String() == unknownStr {
		errs = append(errs, fmt.Sprintf("Substitution: invalid value %q (want %q or %q)",
			string(c.Substitution), SubstitutionBlock, SubstitutionIgnore))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(errs, "; "))
	}

	return nil
}

// LoadConfigFile reads a YAML configuration file on top of DefaultConfig.
// Unknown keys are an error. An empty file yields the defaults. A missing
// file returns an error that satisfies errors.Is(err, fs.ErrNotExist).
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML configuration on top of DefaultConfig and
// validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// deepCopyConfig returns a deep copy of cfg. A nil cfg yields nil.
func deepCopyConfig(cfg *Config) *Config {
	if cfg == nil {
		return nil
	}
	cpy := *cfg
	cpy.Platforms = append([]string(nil), cfg.Platforms...)
	cpy.PlatformDirs = append([]string(nil), cfg.PlatformDirs...)
	cpy.TempDirs = append([]string(nil), cfg.TempDirs...)
	cpy.Protected = append([]string(nil), cfg.Protected...)
	return &cpy
}
