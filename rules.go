package pathguard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zhangyunhao116/pathguard/internal/shell"
)

// ---------------------------------------------------------------------------
// Dangerous commands
// ---------------------------------------------------------------------------

// commandKind says how a dangerous command's paths are validated.
type commandKind int

const (
	// kindDelete checks every path with the strict rule.
	kindDelete commandKind = iota + 1

	// kindMove checks the destination with device paths allowed and every
	// source with the strict rule.
	kindMove

	// kindCopy checks only the destination.
	kindCopy

	// kindDD checks only the of= operand.
	kindDD

	// kindLink checks every path.
	kindLink

	// kindWrite checks every path.
	kindWrite
)

func (k commandKind) String() string {
	switch k {
	case kindDelete:
		return "delete"
	case kindMove:
		return "move"
	case kindCopy:
		return "copy"
	case kindDD:
		return "dd"
	case kindLink:
		return "link"
	case kindWrite:
		return "write"
	default:
		return unknownStr
	}
}

// commandRule is the validation applied to one dangerous command.
type commandRule struct {
	kind commandKind

	// allowDevice lets the destination be a safe device as well as a temp
	// path. Without it only temp paths are allowed outside the working
	// directory.
	allowDevice bool
}

// dangerousCommands are the only commands whose arguments are checked.
var dangerousCommands = map[string]commandRule{
	"rm":       {kind: kindDelete},
	"rmdir":    {kind: kindDelete},
	"unlink":   {kind: kindDelete},
	"shred":    {kind: kindDelete},
	"mv":       {kind: kindMove, allowDevice: true},
	"cp":       {kind: kindCopy, allowDevice: true},
	"dd":       {kind: kindDD, allowDevice: true},
	"ln":       {kind: kindLink},
	"chmod":    {kind: kindWrite},
	"chown":    {kind: kindWrite},
	"chgrp":    {kind: kindWrite},
	"truncate": {kind: kindWrite, allowDevice: true},
}

// deleteCommands are the commands compound idioms hand their input to.
var deleteCommands = map[string]bool{
	"rm":     true,
	"rmdir":  true,
	"unlink": true,
	"shred":  true,
}

// isDangerous reports whether a command's path arguments are checked.
// Directory changes are not dangerous: a cd whose target is unknown moves
// the analysis to an unknown directory instead.
func isDangerous(name string) bool {
	_, ok := dangerousCommands[name]
	return ok
}

// operands returns the path-like arguments of a command in order. Quoted
// words count verbatim. Unquoted options are skipped unless they carry an
// =value, which counts as a path; after "--" every word is an operand.
// NAME=value words contribute their value.
func operands(args []shell.Token) []string {
	var out []string
	endOfOptions := false
	for _, a := range args {
		switch {
		case endOfOptions || a.Quoted:
			out = append(out, a.Value)
		case a.Value == "--":
			endOfOptions = true
		case shell.IsFlag(a):
			if a.Eq >= 0 {
				out = append(out, shell.PathValue(a))
			}
		default:
			out = append(out, shell.PathValue(a))
		}
	}
	return out
}

// targetDirectory returns the directory named by -t DIR, -tDIR or
// --target-directory[=]DIR, and the remaining words.
func targetDirectory(args []shell.Token) (dir string, rest []shell.Token, ok bool) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a.Quoted {
			rest = append(rest, a)
			continue
		}
		switch {
		case a.Value == "--":
			rest = append(rest, args[i:]...)
			return dir, rest, ok
		case a.Value == "-t" || a.Value == "--target-directory":
			if i+1 < len(args) {
				dir, ok = args[i+1].Value, true
				i++
			}
		case strings.HasPrefix(a.Value, "--target-directory="):
			dir, ok = strings.TrimPrefix(a.Value, "--target-directory="), true
		case strings.HasPrefix(a.Value, "-t") && !strings.HasPrefix(a.Value, "--"):
			dir, ok = a.Value[2:], true
		default:
			rest = append(rest, a)
		}
	}
	return dir, rest, ok
}

// ddOutputs returns the of= operands of a dd command.
func ddOutputs(args []shell.Token) []string {
	var out []string
	for _, a := range args {
		if strings.HasPrefix(a.Value, "of=") {
			out = append(out, strings.TrimPrefix(a.Value, "of="))
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Git
// ---------------------------------------------------------------------------

// pattern is a blocked command pattern with its compiled regex and display
// name. If exclude is set, a match is ignored when the matched text also
// matches exclude.
type pattern struct {
	regex   *regexp.Regexp
	name    string
	exclude *regexp.Regexp
}

// match returns the first match of p in command that is not excluded.
func (p pattern) match(command string) (string, bool) {
	for _, loc := range p.regex.FindAllStringIndex(command, -1) {
		m := command[loc[0]:loc[1]]
		if p.exclude != nil && p.exclude.MatchString(m) {
			continue
		}
		return strings.TrimSpace(m), true
	}
	return "", false
}

// gitPrefix matches "git" and any global options before the subcommand,
// e.g. "git -C repo --no-pager " or "git --work-tree /src ". Options that
// take a separate argument consume it.
const gitPrefix = `\bgit(?:\s+(?:-[Cc]|--(?:git-dir|work-tree|namespace|exec-path|super-prefix|config-env))\s+[^\s-]\S*|\s+--?[\w-]+(?:=\S*)?)*\s+`

// restOfLink matches the remainder of one chain link.
const restOfLink = `[^;&|\n]*`

func gitPattern(name, sub string) pattern {
	return pattern{regex: regexp.MustCompile(gitPrefix + sub), name: name}
}

// gitPatterns are git operations that destroy work or history even when
// they stay inside the working directory.
var gitPatterns = []pattern{
	gitPattern("git reset --hard", `reset\b`+restOfLink+`\s--hard\b`),
	gitPattern("git push --force", `push\b`+restOfLink+`\s(?:--force\b|-[a-zA-Z]*f[a-zA-Z]*\b)`),
	gitPattern("git clean -f", `clean\b`+restOfLink+`\s(?:--force\b|-[a-zA-Z]*f[a-zA-Z]*\b)`),
	gitPattern("git branch -D", `branch\b`+restOfLink+`\s-[a-zA-Z]*D[a-zA-Z]*\b`),
	gitPattern("git stash drop/clear", `stash\s+(?:drop|clear)\b`),
	gitPattern("git checkout --", `checkout\b`+restOfLink+`\s--(?:\s|$)`),
	gitPattern("git checkout .", `checkout\b`+restOfLink+`\s\.(?:\s|$)`),
	gitPattern("git restore --worktree", `restore\b`+restOfLink+`\s(?:--worktree\b|-[a-zA-Z]*W[a-zA-Z]*\b)`),
	{
		regex:   regexp.MustCompile(gitPrefix + `restore\b` + restOfLink),
		name:    "git restore",
		exclude: regexp.MustCompile(`\s(?:--staged\b|-[a-zA-Z]*S[a-zA-Z]*\b)`),
	},
}

// matchGit returns the first git pattern command matches.
func matchGit(command string) (pattern, string, bool) {
	for _, p := range gitPatterns {
		if m, ok := p.match(command); ok {
			return p, m, true
		}
	}
	return pattern{}, "", false
}

// ---------------------------------------------------------------------------
// Compound idioms
// ---------------------------------------------------------------------------

// compoundRule recognises a destructive idiom in one chain link and names
// the paths it would delete. A non-empty refusal blocks without looking at
// paths.
type compoundRule struct {
	name    string
	regex   *regexp.Regexp
	command string
	targets func(links []shell.Link, i int, cmd shell.Command) (paths []string, refusal string)
}

var compoundRules = []compoundRule{
	{
		name:    "find -delete",
		regex:   regexp.MustCompile(`\bfind\b.*\s-delete\b`),
		command: "find",
		targets: findStartingPoints,
	},
	{
		name:    "find -exec rm",
		regex:   regexp.MustCompile(`\bfind\b.*\s-(?:exec|execdir|ok|okdir)\s+(?:\S*/)?(?:rm|rmdir|unlink|shred)\b`),
		command: "find",
		targets: findStartingPoints,
	},
	{
		name:    "xargs rm",
		regex:   regexp.MustCompile(`\bxargs\b.*?(?:^|\s)(?:\S*/)?(?:rm|rmdir|unlink|shred)\b`),
		command: "xargs",
		targets: xargsInputs,
	},
	{
		name:    "rsync --delete",
		regex:   regexp.MustCompile(`\brsync\b.*\s--delete`),
		command: "rsync",
		targets: rsyncDestination,
	},
}

// findStartingPoints returns the directories find starts from, "." when
// none is given.
func findStartingPoints(_ []shell.Link, _ int, cmd shell.Command) ([]string, string) {
	args := cmd.Args()
	i := 0
	for i < len(args) {
		v := args[i].Value
		switch {
		case args[i].Quoted:
		case v == "-H" || v == "-L" || v == "-P" || strings.HasPrefix(v, "-O"):
			i++
			continue
		case v == "-D":
			i += 2
			continue
		}
		break
	}
	var paths []string
	for ; i < len(args); i++ {
		a := args[i]
		if !a.Quoted && (strings.HasPrefix(a.Value, "-") || a.Value == "(" || a.Value == "!" || a.Value == ",") {
			break
		}
		paths = append(paths, a.Value)
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return paths, ""
}

// xargsArgOptions are xargs options that consume the following word.
var xargsArgOptions = map[string]bool{
	"-a": true, "-d": true, "-E": true, "-I": true, "-L": true,
	"-n": true, "-P": true, "-s": true,
	"--arg-file": true, "--delimiter": true, "--max-args": true,
	"--max-lines": true, "--max-procs": true, "--max-chars": true,
	"--process-slot-var": true,
}

// xargsInputs returns the paths of the producer piped into xargs plus the
// delete command's own arguments. Without a producer the input is unknown.
func xargsInputs(links []shell.Link, i int, cmd shell.Command) ([]string, string) {
	args := cmd.Args()
	j := 0
	for j < len(args) && shell.IsFlag(args[j]) {
		if xargsArgOptions[args[j].Value] {
			j++
		}
		j++
	}
	if j >= len(args) || !deleteCommands[shell.BaseName(args[j].Value)] {
		return nil, ""
	}
	paths := operands(args[j+1:])

	if i == 0 || links[i].Op != shell.OpPipe {
		return nil, "xargs input is not a visible pipeline, so the paths it deletes cannot be checked"
	}
	producer := shell.Parse(links[i-1].Text)
	in := operands(producer.Args())
	if len(in) == 0 {
		in = []string{"."}
	}
	return append(in, paths...), ""
}

// rsyncDestination returns the destination of an rsync --delete, refusing
// remote destinations.
func rsyncDestination(_ []shell.Link, _ int, cmd shell.Command) ([]string, string) {
	ops := operands(cmd.Args())
	if len(ops) < 2 {
		return nil, ""
	}
	dest := ops[len(ops)-1]
	if isRemote(dest) {
		return nil, fmt.Sprintf("rsync --delete to remote destination %q cannot be checked", dest)
	}
	return []string{dest}, ""
}

// isRemote reports whether an rsync operand names a remote location
// (host:path, user@host:path or rsync://).
func isRemote(op string) bool {
	if strings.HasPrefix(op, "rsync://") {
		return true
	}
	colon := strings.IndexByte(op, ':')
	return colon > 0 && !strings.Contains(op[:colon], "/")
}

// matchCompound returns the first compound rule that applies to links[i].
func matchCompound(links []shell.Link, i int, cmd shell.Command) (compoundRule, bool) {
	for _, r := range compoundRules {
		if cmd.Name == r.command && r.regex.MatchString(links[i].Text) {
			return r, true
		}
	}
	return compoundRule{}, false
}
