package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/zhangyunhao116/pathguard"
	"github.com/zhangyunhao116/pathguard/internal/envutil"
)

// Environment variables read by the command. PATHGUARD_CONFIG picks the
// YAML file; the others override single settings.
const (
	envConfig        = "PATHGUARD_CONFIG"
	envLogLevel      = "PATHGUARD_LOG_LEVEL"
	envLogFormat     = "PATHGUARD_LOG_FORMAT"
	envLogFile       = "PATHGUARD_LOG_FILE"
	envSubstitution  = "PATHGUARD_SUBSTITUTION"
	envPlatforms     = "PATHGUARD_PLATFORMS"
	envPlatformDirs  = "PATHGUARD_PLATFORM_DIRS"
	envTempDirs      = "PATHGUARD_TEMP_DIRS"
	envProtected     = "PATHGUARD_PROTECTED"
	defaultLogLevel  = "disabled"
	defaultLogFormat = "auto"
)

// settings is the fully layered configuration of one invocation.
type settings struct {
	ConfigFile string
	EnvFile    string
	LogLevel   string
	LogFormat  string
	LogFile    string
	Guard      *pathguard.Config
}

// flagValues holds the persistent flags of the root command.
type flagValues struct {
	config       string
	workDir      string
	home         string
	logLevel     string
	logFormat    string
	logFile      string
	substitution string
	platforms    []string
	platformDirs []string
	tempDirs     []string
	protected    []string
}

func (f *flagValues) register(set *pflag.FlagSet) {
	set.StringVar(&f.config, "config", "", "Config file (default: ~/.config/pathguard/config.yaml)")
	set.StringVar(&f.workDir, "work-dir", "", "Working directory to guard (default: hook cwd or current directory)")
	set.StringVar(&f.home, "home", "", "Home directory (default: $HOME)")
	set.StringVar(&f.logLevel, "log-level", defaultLogLevel, "Log level (trace, debug, info, warn, error, disabled)")
	set.StringVar(&f.logFormat, "log-format", defaultLogFormat, "Log format (auto, json, console)")
	set.StringVar(&f.logFile, "log-file", "", "Also append JSON logs to this file")
	set.StringVar(&f.substitution, "substitution", "", "Substitution policy (block, ignore)")
	set.StringSliceVar(&f.platforms, "platform", nil, "Enabled agent platforms (default: all)")
	set.StringSliceVar(&f.platformDirs, "platform-dir", nil, "Extra writable platform config directories")
	set.StringSliceVar(&f.tempDirs, "temp-dir", nil, "Extra temp directories")
	set.StringSliceVar(&f.protected, "protect", nil, "Extra protected path globs")
}

// configDir returns the directory holding config.yaml and pathguard.env.
// It is never inside the working directory, which the agent can write.
func configDir(env envutil.Env) string {
	if dir := env.Get("XDG_CONFIG_HOME"); filepath.IsAbs(dir) {
		return filepath.Join(dir, "pathguard")
	}
	if home := env.Get("HOME"); home != "" {
		return filepath.Join(home, ".config", "pathguard")
	}
	return ""
}

// loadSettings layers, lowest first: defaults, the YAML config file, the
// pathguard.env file, PATHGUARD_* variables and flags.
func loadSettings(env envutil.Env, flags *pflag.FlagSet, f *flagValues) (*settings, error) {
	s := &settings{
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		Guard:     pathguard.DefaultConfig(),
	}
	dir := configDir(env)

	explicit := true
	s.ConfigFile = f.config
	if s.ConfigFile == "" {
		s.ConfigFile = env.Get(envConfig)
	}
	if s.ConfigFile == "" && dir != "" {
		s.ConfigFile = filepath.Join(dir, "config.yaml")
		explicit = false
	}
	if s.ConfigFile != "" {
		cfg, err := pathguard.LoadConfigFile(s.ConfigFile)
		switch {
		case err == nil:
			s.Guard = cfg
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			s.ConfigFile = ""
		default:
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if dir != "" {
		path := filepath.Join(dir, "pathguard.env")
		vars, err := godotenv.Read(path)
		switch {
		case err == nil:
			s.EnvFile = path
			s.applyEnv(envutil.New(envutil.FromMap(vars)).Lookup)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	s.applyEnv(env.Lookup)
	s.applyFlags(flags, f)
	return s, nil
}

func (s *settings) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok {
			*dst = splitList(v)
		}
	}
	str(envLogLevel, &s.LogLevel)
	str(envLogFormat, &s.LogFormat)
	str(envLogFile, &s.LogFile)
	var sub string
	str(envSubstitution, &sub)
	if sub != "" {
		s.Guard.Substitution = pathguard.SubstitutionPolicy(sub)
	}
	list(envPlatforms, &s.Guard.Platforms)
	list(envPlatformDirs, &s.Guard.PlatformDirs)
	list(envTempDirs, &s.Guard.TempDirs)
	list(envProtected, &s.Guard.Protected)
}

func (s *settings) applyFlags(flags *pflag.FlagSet, f *flagValues) {
	if flags.Changed("log-level") {
		s.LogLevel = f.logLevel
	}
	if flags.Changed("log-format") {
		s.LogFormat = f.logFormat
	}
	if flags.Changed("log-file") {
		s.LogFile = f.logFile
	}
	if flags.Changed("substitution") {
		s.Guard.Substitution = pathguard.SubstitutionPolicy(f.substitution)
	}
	if flags.Changed("platform") {
		s.Guard.Platforms = f.platforms
	}
	if flags.Changed("platform-dir") {
		s.Guard.PlatformDirs = append(s.Guard.PlatformDirs, f.platformDirs...)
	}
	if flags.Changed("temp-dir") {
		s.Guard.TempDirs = append(s.Guard.TempDirs, f.tempDirs...)
	}
	if flags.Changed("protect") {
		s.Guard.Protected = append(s.Guard.Protected, f.protected...)
	}
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(v string) []string {
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
