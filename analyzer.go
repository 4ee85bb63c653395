package pathguard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zhangyunhao116/pathguard/internal/pathutil"
	"github.com/zhangyunhao116/pathguard/internal/shell"
)

// unknownDir stands for a directory the analysis lost track of, such as the
// result of cd into a path that cannot be resolved. It contains a NUL byte,
// so no relative path resolves against it and every such path lands outside
// all zones.
const unknownDir = "\x00unknown"

// Analyze decides whether a shell command may run. The checks run in order
// and the first blocking one wins:
//
//  1. destructive git operations, anywhere in the command;
//  2. output redirections up to the first directory change;
//  3. command and process substitutions feeding a dangerous command, a
//     directory change or a redirection;
//  4. destructive idioms (find -delete, find -exec rm, xargs rm,
//     rsync --delete), here when the command never changes directory;
//  5. each chain link in order, tracking cd, pushd, popd and subshells:
//     redirections after a directory change, deferred idioms, and the
//     paths of dangerous commands.
//
// Analyze never fails: anything that cannot be resolved is treated as
// outside every zone.
func (g *Guard) Analyze(command string) Verdict {
	v := g.analyze(command)
	if v.Blocked {
		g.logger.Info().
			Str("rule", v.Rule).
			Str("command", command).
			Str("path", v.Path).
			Msg(v.Reason)
	} else {
		g.logger.Debug().Str("command", command).Msg("allowed")
	}
	return v
}

func (g *Guard) analyze(command string) Verdict {
	if strings.TrimSpace(command) == "" {
		return allow()
	}

	if p, m, ok := matchGit(command); ok {
		return block(RuleGit, m, "", fmt.Sprintf("%s is blocked: it can destroy uncommitted work or history (%q)", p.name, m))
	}

	links := shell.Split(command)
	cmds := make([]shell.Command, len(links))
	firstDirChange := len(links)
	for i, l := range links {
		cmds[i] = shell.Parse(l.Text)
		if shell.IsDirChange(cmds[i].Name) && i < firstDirChange {
			firstDirChange = i
		}
	}
	g.logger.Debug().
		Int("links", len(links)).
		Bool("dir_change", firstDirChange < len(links)).
		Msg("split command")

	for i := 0; i < firstDirChange; i++ {
		if v := g.checkRedirects(links[i].Text, cmds[i], ""); v.Blocked {
			return v
		}
	}

	if v := g.checkSubstitutions(command); v.Blocked {
		return v
	}

	deferred := firstDirChange < len(links)
	if !deferred {
		for i := range links {
			if v := g.checkCompound(links, i, cmds[i], ""); v.Blocked {
				return v
			}
		}
	}

	return g.walk(links, cmds, firstDirChange, deferred)
}

// walk evaluates each chain link against the tracked directory.
func (g *Guard) walk(links []shell.Link, cmds []shell.Command, firstDirChange int, deferred bool) Verdict {
	t := dirTracker{cur: g.workDir, prev: g.oldPWD}
	if t.prev == "" {
		t.prev = g.home
	}
	if t.prev == "" {
		t.prev = unknownDir
	}

	for i, link := range links {
		for n := 0; n < link.Opens; n++ {
			t.enter()
		}

		cmd := cmds[i]
		base := t.base(g.workDir)
		if i >= firstDirChange {
			if v := g.checkRedirects(link.Text, cmd, base); v.Blocked {
				return v
			}
		}

		if shell.IsDirChange(cmd.Name) {
			g.changeDir(&t, cmd)
			g.logger.Debug().Str("command", link.Text).Str("dir", t.cur).Msg("tracked directory change")
		} else {
			if deferred {
				if v := g.checkCompound(links, i, cmd, base); v.Blocked {
					return v
				}
			}
			if v := g.checkCommand(link.Text, cmd, base); v.Blocked {
				return v
			}
		}

		for n := 0; n < link.Closes; n++ {
			t.leave()
		}
	}
	return allow()
}

// ---------------------------------------------------------------------------
// Directory tracking
// ---------------------------------------------------------------------------

// dirTracker follows the shell's current directory through one command.
type dirTracker struct {
	cur    string
	prev   string
	pushed []string
	saved  []savedDirs
}

// savedDirs is the state restored when a subshell closes.
type savedDirs struct {
	cur    string
	prev   string
	pushed int
}

func (t *dirTracker) enter() {
	t.saved = append(t.saved, savedDirs{cur: t.cur, prev: t.prev, pushed: len(t.pushed)})
}

func (t *dirTracker) leave() {
	n := len(t.saved)
	if n == 0 {
		return
	}
	s := t.saved[n-1]
	t.saved = t.saved[:n-1]
	t.cur, t.prev = s.cur, s.prev
	if s.pushed <= len(t.pushed) {
		t.pushed = t.pushed[:s.pushed]
	}
}

// base returns the directory relative paths resolve against: "" while the
// tracked directory is still the working directory.
func (t *dirTracker) base(workDir string) string {
	if t.cur == workDir {
		return ""
	}
	return t.cur
}

func (t *dirTracker) moveTo(dir string) {
	t.prev, t.cur = t.cur, dir
}

// changeDir applies a cd, pushd or popd to t.
func (g *Guard) changeDir(t *dirTracker, cmd shell.Command) {
	if cmd.Name == "popd" {
		if n := len(t.pushed); n > 0 {
			t.moveTo(t.pushed[n-1])
			t.pushed = t.pushed[:n-1]
		}
		return
	}

	target, ok := shell.DirTarget(cmd)
	if !ok {
		// pushd without a directory: a bare pushd swaps with the top of
		// the stack, +N/-N rotates it to a place the analysis does not
		// model.
		n := len(t.pushed)
		switch {
		case len(cmd.Args()) > 0:
			t.moveTo(unknownDir)
		case n > 0:
			top := t.pushed[n-1]
			t.pushed[n-1] = t.cur
			t.moveTo(top)
		}
		return
	}

	dest := t.prev
	switch {
	case shell.HasSubstitution(target):
		dest = unknownDir
	case cmd.Name == "cd" && target == "-":
	default:
		dest = g.resolveDir(target, t.cur)
	}
	if cmd.Name == "pushd" {
		t.pushed = append(t.pushed, t.cur)
	}
	t.moveTo(dest)
}

// resolveDir resolves a directory change target against cur.
func (g *Guard) resolveDir(target, cur string) string {
	base := cur
	if base == g.workDir {
		base = ""
	}
	dir, err := g.resolver.ResolveReal(target, base)
	if err != nil {
		g.logger.Debug().Err(err).Str("target", target).Msg("cannot resolve directory change")
		return unknownDir
	}
	return dir
}

// ---------------------------------------------------------------------------
// Checks
// ---------------------------------------------------------------------------

// checkRedirects validates the output redirections of one link.
func (g *Guard) checkRedirects(text string, cmd shell.Command, base string) Verdict {
	for _, r := range cmd.Redirects {
		if !r.IsOutput() {
			continue
		}
		if v := g.checkWrite(text, r.Target.Value, base); v.Blocked {
			return v
		}
	}
	return allow()
}

// checkWrite validates a redirection target: it must be inside the working
// directory, a safe device, a temp path or a platform configuration path,
// and must not be protected.
func (g *Guard) checkWrite(text, target, base string) Verdict {
	c := g.resolver.Classify(target, base)
	g.logClassification("redirect", target, c)
	switch {
	case !g.pathAllowed(c, true):
		return block(RuleRedirect, text, target,
			fmt.Sprintf("redirect to %q is blocked: %s", target, g.describe(c)))
	case c.Protected != "":
		return block(RuleProtected, text, target,
			fmt.Sprintf("redirect to %q is blocked: protected path (%s)", target, c.Protected))
	}
	return allow()
}

// checkSubstitutions blocks substitutions that hide what a dangerous
// command or a redirection operates on, and checks redirections made inside
// substitutions. A directory change from a substitution is left to
// changeDir.
func (g *Guard) checkSubstitutions(command string) Verdict {
	if !strings.ContainsAny(command, "$`<>") {
		return allow()
	}
	res, err := shell.InspectSubstitutions(command, isDangerous)
	if err != nil {
		g.logger.Debug().Err(err).Msg("command does not parse as bash; checking its text only")
		return allow()
	}
	if res.Found() && g.substitution == SubstitutionBlock {
		s := res.First
		g.logger.Debug().Stringer("kind", s.Kind).Str("command", s.Command).Msg("unchecked substitution")
		var reason string
		switch s.Kind {
		case shell.SubstInArgument:
			reason = fmt.Sprintf("%s with arguments from a command substitution is blocked: its targets cannot be checked", s.Command)
		case shell.SubstRunsCommand:
			reason = fmt.Sprintf("%s inside a command substitution is blocked: its targets cannot be checked", s.Command)
		case shell.SubstInRedirect:
			reason = "redirect to a command substitution is blocked: its target cannot be checked"
		default:
			reason = "command name from a command substitution is blocked: it cannot be checked"
		}
		return block(RuleSubstitution, command, "", reason)
	}
	for _, w := range res.Writes {
		if v := g.checkWrite(command, w, ""); v.Blocked {
			return v
		}
	}
	return allow()
}

// checkCompound validates a destructive idiom in links[i].
func (g *Guard) checkCompound(links []shell.Link, i int, cmd shell.Command, base string) Verdict {
	r, ok := matchCompound(links, i, cmd)
	if !ok {
		return allow()
	}
	text := links[i].Text
	paths, refusal := r.targets(links, i, cmd)
	if refusal != "" {
		return block(RuleCompound, text, "", fmt.Sprintf("%s is blocked: %s", r.name, refusal))
	}
	for _, p := range paths {
		c := g.resolver.Classify(p, base)
		g.logClassification(r.name, p, c)
		switch {
		case !g.pathAllowed(c, false):
			return block(RuleCompound, text, p,
				fmt.Sprintf("%s on %q is blocked: %s", r.name, p, g.describe(c)))
		case c.Protected != "":
			return block(RuleProtected, text, p,
				fmt.Sprintf("%s on %q is blocked: protected path (%s)", r.name, p, c.Protected))
		}
	}
	return allow()
}

// checkCommand validates the path arguments of a dangerous command.
func (g *Guard) checkCommand(text string, cmd shell.Command, base string) Verdict {
	rule, ok := dangerousCommands[cmd.Name]
	if !ok {
		return allow()
	}
	args := cmd.Args()
	check := func(path string, allowDevice bool) Verdict {
		return g.checkPath(cmd.Name, text, path, base, allowDevice)
	}

	switch rule.kind {
	case kindCopy:
		if dest, _, ok := targetDirectory(args); ok {
			return check(dest, rule.allowDevice)
		}
		if ops := operands(args); len(ops) > 0 {
			return check(ops[len(ops)-1], rule.allowDevice)
		}
	case kindMove:
		dest, rest, hasDest := targetDirectory(args)
		sources := operands(rest)
		if !hasDest {
			if len(sources) == 0 {
				return allow()
			}
			dest = sources[len(sources)-1]
			sources = sources[:len(sources)-1]
		}
		for _, src := range sources {
			if v := check(src, false); v.Blocked {
				return v
			}
		}
		return check(dest, rule.allowDevice)
	case kindDD:
		for _, out := range ddOutputs(args) {
			if v := check(out, rule.allowDevice); v.Blocked {
				return v
			}
		}
	default:
		for _, p := range operands(args) {
			if v := check(p, rule.allowDevice); v.Blocked {
				return v
			}
		}
	}
	return allow()
}

// checkPath validates one path argument of a dangerous command.
func (g *Guard) checkPath(name, text, path, base string, allowDevice bool) Verdict {
	c := g.resolver.Classify(path, base)
	g.logClassification(name, path, c)
	switch {
	case !g.pathAllowed(c, allowDevice):
		return block(RuleCommand, text, path,
			fmt.Sprintf("%s on %q is blocked: %s", name, path, g.describe(c)))
	case c.Protected != "":
		return block(RuleProtected, text, path,
			fmt.Sprintf("%s on %q is blocked: protected path (%s)", name, path, c.Protected))
	}
	return allow()
}

// pathAllowed reports whether a classified path may be modified. Paths
// inside the working directory or a platform configuration directory
// always may; otherwise allowDevice admits safe devices and temp paths,
// and its absence admits only temp paths.
func (g *Guard) pathAllowed(c pathutil.Classification, allowDevice bool) bool {
	if c.Err != nil {
		return false
	}
	if c.WithinWorkingDir || c.PlatformConfig {
		return true
	}
	if allowDevice {
		return c.SafeForWrite()
	}
	return c.Temp
}

// describe explains why a classified path is not allowed.
func (g *Guard) describe(c pathutil.Classification) string {
	switch {
	case errors.Is(c.Err, pathutil.ErrUnknownBase):
		return "it is relative to a directory that cannot be determined"
	case c.Err != nil:
		return fmt.Sprintf("cannot resolve it (%v)", c.Err)
	case c.SafeDevice:
		return fmt.Sprintf("%s is a device", c.Path)
	default:
		return fmt.Sprintf("%s is outside the working directory %s", c.Path, g.workDir)
	}
}

func (g *Guard) logClassification(check, path string, c pathutil.Classification) {
	g.logger.Debug().
		Str("check", check).
		Str("path", path).
		Str("resolved", c.Path).
		Bool("within", c.WithinWorkingDir).
		Bool("temp", c.Temp).
		Bool("device", c.SafeDevice).
		Bool("platform", c.PlatformConfig).
		Str("protected", c.Protected).
		AnErr("resolve_err", c.Err).
		Msg("classified path")
}
