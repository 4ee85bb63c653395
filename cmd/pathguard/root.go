package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zhangyunhao116/pathguard"
	"github.com/zhangyunhao116/pathguard/internal/envutil"
	"github.com/zhangyunhao116/pathguard/internal/logging"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "pathguard",
		Short: "Keep an AI agent's commands inside its working directory",
		Long: `pathguard decides, before execution, whether a shell command or a file write
issued by an AI agent may run. Anything inside the working directory is
allowed; deletes, moves, copies and redirects that reach outside it are
blocked, as are destructive git operations.

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (PATHGUARD_*)
  3. ~/.config/pathguard/pathguard.env
  4. ~/.config/pathguard/config.yaml (or --config / PATHGUARD_CONFIG)
  5. Defaults

Configuration is never read from the working directory.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	a.flags.register(root.PersistentFlags())
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(
		newHookCmd(a),
		newCheckCmd(a),
		newCheckPathCmd(a),
		newVersionCmd(),
	)
	return root
}

// session is a guard built for one invocation.
type session struct {
	guard  *pathguard.Guard
	logger zerolog.Logger
	closer io.Closer
}

func (s *session) Close() error { return s.closer.Close() }

// newSession layers the settings and builds a guard for workDir. The
// --work-dir flag wins over workDir; an empty result means the current
// directory.
func (a *app) newSession(cmd *cobra.Command, workDir string) (*session, error) {
	env := envutil.New(a.env)
	s, err := loadSettings(env, cmd.Flags(), &a.flags)
	if err != nil {
		return nil, err
	}

	logger, closer := logging.New(logging.Config{
		Format:    s.LogFormat,
		Level:     s.LogLevel,
		FilePath:  s.LogFile,
		Component: "pathguard",
	}, a.stderr)
	logger, _ = logging.WithCheckID(logger, "")
	logger.Debug().
		Str("config_file", s.ConfigFile).
		Str("env_file", s.EnvFile).
		Strs("platforms", s.Guard.Platforms).
		Str("substitution", s.Guard.Substitution.String()).
		Msg("loaded settings")

	if a.flags.workDir != "" {
		workDir = a.flags.workDir
	}
	if workDir == "" {
		if workDir, err = a.getwd(); err != nil {
			closer.Close()
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	opts := []pathguard.Option{
		pathguard.WithConfig(s.Guard),
		pathguard.WithEnv(a.env),
		pathguard.WithLogger(logger),
	}
	if a.flags.home != "" {
		opts = append(opts, pathguard.WithHomeDir(a.flags.home))
	}
	g, err := pathguard.New(workDir, opts...)
	if err != nil {
		closer.Close()
		return nil, err
	}
	return &session{guard: g, logger: logger, closer: closer}, nil
}
