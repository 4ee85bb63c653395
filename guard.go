package pathguard

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/zhangyunhao116/pathguard/internal/envutil"
	"github.com/zhangyunhao116/pathguard/internal/pathutil"
	"github.com/zhangyunhao116/pathguard/platform"
)

// Guard decides whether commands and file operations issued by an agent may
// run. It is bound to one working directory and is immutable after
// construction, so it is safe for concurrent use.
type Guard struct {
	resolver     *pathutil.Resolver
	workDir      string
	home         string
	oldPWD       string
	substitution SubstitutionPolicy
	logger       zerolog.Logger
}

// New returns a Guard bound to workDir. A relative workDir is made
// absolute. The environment and home directory are captured once here;
// checks never read process state afterwards.
func New(workDir string, opts ...Option) (*Guard, error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if workDir == "" {
		return nil, fmt.Errorf("%w: working directory must not be empty", ErrConfigInvalid)
	}
	if pathutil.ContainsNullByte(workDir) {
		return nil, fmt.Errorf("%w: working directory must not contain null bytes", ErrConfigInvalid)
	}

	cfg := o.config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if !o.envSet {
		o.env = os.Environ()
	}
	env := envutil.New(o.env)

	home := o.home
	if !o.homeSet {
		home = defaultHomeDir(env)
	}

	var platforms []platform.Platform
	for _, name := range cfg.Platforms {
		if p, ok := platform.Lookup(name); ok {
			platforms = append(platforms, p)
		}
	}
	platformDirs := append(platform.ConfigDirs(home, platforms), cfg.PlatformDirs...)

	resolver, err := pathutil.NewResolver(pathutil.Options{
		WorkDir:        workDir,
		HomeDir:        home,
		Env:            env,
		TempDirs:       cfg.TempDirs,
		PlatformDirs:   platformDirs,
		ProtectedGlobs: cfg.Protected,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	g := &Guard{
		resolver:     resolver,
		workDir:      resolver.WorkDir(),
		home:         resolver.HomeDir(),
		oldPWD:       env.Get("OLDPWD"),
		substitution: cfg.Substitution,
		logger:       o.logger.With().Str("work_dir", resolver.WorkDir()).Logger(),
	}
	if g.substitution == "" {
		g.substitution = SubstitutionBlock
	}
	if canon := resolver.CanonicalWorkDir(); canon == "" {
		g.logger.Warn().Msg("working directory cannot be resolved; every path will be treated as outside it")
	}
	return g, nil
}

// defaultHomeDir returns $HOME from env, falling back to the user's home
// directory. An empty result means unknown.
func defaultHomeDir(env envutil.Env) string {
	if home, ok := env.Lookup("HOME"); ok && home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// WorkDir returns the absolute working directory the guard is bound to.
func (g *Guard) WorkDir() string { return g.workDir }

// HomeDir returns the home directory, or "" if unknown.
func (g *Guard) HomeDir() string { return g.home }

// ValidatePath checks the target of a file write or edit. An empty path is
// always allowed. Otherwise the path must be a safe device, a temp path, a
// platform configuration path or inside the working directory, and must not
// be protected.
func (g *Guard) ValidatePath(path string) Verdict {
	if path == "" {
		return allow()
	}
	c := g.resolver.Classify(path, "")
	g.logger.Debug().
		Str("path", path).
		Str("resolved", c.Path).
		Bool("within", c.WithinWorkingDir).
		Bool("safe_for_write", c.SafeForWrite()).
		Bool("platform", c.PlatformConfig).
		Str("protected", c.Protected).
		AnErr("resolve_err", c.Err).
		Msg("classified path")

	v := allow()
	switch {
	case c.Err != nil:
		v = block(RulePath, "", path, fmt.Sprintf("cannot resolve path %q: %v", path, c.Err))
	case !c.WithinWorkingDir && !c.SafeForWrite() && !c.PlatformConfig:
		v = block(RulePath, "", path, fmt.Sprintf("path %q is outside the working directory %s", path, g.workDir))
	case c.Protected != "":
		v = block(RuleProtected, "", path, fmt.Sprintf("path %q is protected (%s)", path, c.Protected))
	}
	if v.Blocked {
		g.logger.Info().Str("rule", v.Rule).Str("path", path).Msg(v.Reason)
	}
	return v
}
