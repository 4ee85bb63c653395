package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhangyunhao116/pathguard"
)

// verdictOutput is the JSON form of a verdict.
type verdictOutput struct {
	Input   string `json:"input"`
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Command string `json:"command,omitempty"`
	Path    string `json:"path,omitempty"`
}

func newVerdictOutput(input string, v pathguard.Verdict) verdictOutput {
	return verdictOutput{
		Input:   input,
		Blocked: v.Blocked,
		Reason:  v.Reason,
		Rule:    v.Rule,
		Command: v.Command,
		Path:    v.Path,
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check [flags] -- COMMAND...",
		Short: "Analyze a shell command",
		Long: `Analyze a shell command and print the verdict. The arguments are joined
with spaces, so quote the command or pass it after --.

Exits 2 when the command is blocked.

Examples:
  pathguard check -- rm -rf ~/Downloads
  pathguard check 'cd /tmp && rm -rf build'
  pathguard check --json -- git reset --hard`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.newSession(cmd, "")
			if err != nil {
				return err
			}
			defer sess.Close()

			command := strings.Join(args, " ")
			v := sess.guard.Analyze(command)
			if err := a.printVerdict(command, v, asJSON); err != nil {
				return err
			}
			if v.Blocked {
				return exitBlocked
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the verdict as JSON")
	return cmd
}

func newCheckPathCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check-path [flags] PATH...",
		Short: "Validate file write targets",
		Long: `Validate each path as the target of a file write or edit and print the
verdicts. Exits 2 when any path is blocked.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.newSession(cmd, "")
			if err != nil {
				return err
			}
			defer sess.Close()

			blocked := false
			for _, path := range args {
				v := sess.guard.ValidatePath(path)
				if err := a.printVerdict(path, v, asJSON); err != nil {
					return err
				}
				blocked = blocked || v.Blocked
			}
			if blocked {
				return exitBlocked
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print verdicts as JSON, one per line")
	return cmd
}

func (a *app) printVerdict(input string, v pathguard.Verdict, asJSON bool) error {
	if asJSON {
		data, err := json.Marshal(newVerdictOutput(input, v))
		if err != nil {
			return fmt.Errorf("marshal verdict: %w", err)
		}
		fmt.Fprintln(a.stdout, string(data))
		return nil
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", input, v)
	return nil
}
