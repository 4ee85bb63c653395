package pathguard

import "github.com/rs/zerolog"

// Option configures a Guard.
type Option func(*options)

// options holds construction-time configuration applied via Option
// functions.
type options struct {
	config  *Config
	env     []string
	envSet  bool
	home    string
	homeSet bool
	logger  zerolog.Logger
}

// WithConfig sets the configuration. The provided config is deep-copied to
// prevent aliasing. A nil config means DefaultConfig.
func WithConfig(cfg *Config) Option {
	cpy := deepCopyConfig(cfg)
	return func(o *options) {
		o.config = cpy
	}
}

// WithEnv sets the environment used to expand $NAME references, $TMPDIR
// and $OLDPWD, in place of the process environment. Each entry should be in
// "KEY=VALUE" format.
func WithEnv(env []string) Option {
	cpy := append([]string(nil), env...)
	return func(o *options) {
		o.env = cpy
		o.envSet = true
	}
}

// WithHomeDir sets the home directory used for "~" and $HOME. An empty dir
// means the home directory is unknown, so every home-relative path is
// treated as outside every zone.
func WithHomeDir(dir string) Option {
	return func(o *options) {
		o.home = dir
		o.homeSet = true
	}
}

// WithLogger sets the logger. Steps of each check are logged at debug level
// and blocked verdicts at info level. The default logger discards
// everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
