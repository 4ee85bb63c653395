package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhangyunhao116/pathguard"
)

// hookInput is the pre-tool-use payload sent by the host agent, e.g.
// {"tool_name":"Bash","tool_input":{"command":"rm -rf x"},"cwd":"/repo"}.
type hookInput struct {
	SessionID     string `json:"session_id"`
	HookEventName string `json:"hook_event_name"`
	ToolName      string `json:"tool_name"`
	CWD           string `json:"cwd"`
	ToolInput     struct {
		Command      string `json:"command"`
		FilePath     string `json:"file_path"`
		FilePathAlt  string `json:"filePath"`
		NotebookPath string `json:"notebook_path"`
	} `json:"tool_input"`

	// Flat form, for running the hook by hand.
	Command  string `json:"command"`
	FilePath string `json:"file_path"`
}

func (in *hookInput) command() string {
	if in.ToolInput.Command != "" {
		return in.ToolInput.Command
	}
	return in.Command
}

func (in *hookInput) filePath() string {
	for _, p := range []string{in.ToolInput.FilePath, in.ToolInput.FilePathAlt, in.ToolInput.NotebookPath, in.FilePath} {
		if p != "" {
			return p
		}
	}
	return ""
}

// readOnlyTools never modify the file they name.
var readOnlyTools = map[string]bool{
	"read": true, "notebookread": true, "glob": true, "grep": true,
	"ls": true, "list": true, "webfetch": true, "websearch": true,
}

func newHookCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Check a tool call read from stdin as a pre-tool-use hook",
		Long: `Read a pre-tool-use hook payload as JSON on stdin and decide whether the
tool call may run.

Exit codes:
  0  allow the call
  2  block the call (the reason is printed to stderr)

Shell commands (tool_input.command) are analyzed; file writes
(tool_input.file_path) are validated. Input that cannot be decoded is
blocked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runHook(cmd)
		},
	}
}

func (a *app) runHook(cmd *cobra.Command) error {
	var in hookInput
	if err := json.NewDecoder(a.stdin).Decode(&in); err != nil {
		fmt.Fprintf(a.stderr, "BLOCKED: failed to parse hook input: %v\n\nBlocking by default when input cannot be parsed.\n", err)
		return exitBlocked
	}

	command, path := in.command(), in.filePath()
	if command == "" && (path == "" || readOnlyTools[strings.ToLower(in.ToolName)]) {
		return nil
	}

	sess, err := a.newSession(cmd, in.CWD)
	if err != nil {
		fmt.Fprintf(a.stderr, "BLOCKED: pathguard cannot start: %v\n\nBlocking by default until the configuration is fixed.\n", err)
		return exitBlocked
	}
	defer sess.Close()

	logger := sess.logger.With().
		Str("session_id", in.SessionID).
		Str("tool", in.ToolName).
		Logger()

	var v pathguard.Verdict
	if command != "" {
		v = sess.guard.Analyze(command)
	} else {
		v = sess.guard.ValidatePath(path)
	}
	if v.Allowed() {
		logger.Debug().Msg("tool call allowed")
		return nil
	}

	logger.Info().Str("rule", v.Rule).Msg("tool call blocked")
	writeBlocked(a.stderr, v, command, path, sess.guard.WorkDir())
	return exitBlocked
}

func writeBlocked(w io.Writer, v pathguard.Verdict, command, path, workDir string) {
	fmt.Fprintf(w, "BLOCKED: %s\n\n", v.Reason)
	if command != "" {
		fmt.Fprintf(w, "Blocked command: %s\n", command)
	} else {
		fmt.Fprintf(w, "Blocked path: %s\n", path)
	}
	fmt.Fprintf(w, "Working directory: %s\n\n", workDir)
	if v.Rule == pathguard.RuleGit {
		fmt.Fprintln(w, "This git operation can destroy uncommitted work or history. If you need it, ask the user to run it manually.")
		return
	}
	fmt.Fprintln(w, "Only paths inside the working directory, temp directories and agent configuration directories may be modified. If you need this, ask the user to do it manually.")
}
