package shell

import "strings"

// Command is a parsed chain link.
type Command struct {
	// Name is the base name of the command that runs after wrapper
	// look-through, e.g. "rm" for "sudo -u root /bin/rm -rf x". It is ""
	// when the link runs no command.
	Name string

	// Words are all words of the link, wrappers included.
	Words []Token

	// Index is the position of the command word in Words, or -1.
	Index int

	// Redirects are the link's redirections, in order.
	Redirects []Redirect
}

// Args returns the words after the command word.
func (c Command) Args() []Token {
	if c.Index < 0 {
		return nil
	}
	return c.Words[c.Index+1:]
}

// Parse tokenizes a chain link and finds its real command.
func Parse(segment string) Command {
	words, redirects := Tokenize(segment)
	idx := CommandIndex(words)
	cmd := Command{Words: words, Index: idx, Redirects: redirects}
	if idx >= 0 {
		cmd.Name = BaseName(words[idx].Value)
	}
	return cmd
}

// Options of wrapper commands that consume the following word.
var (
	sudoArgOptions = map[string]bool{
		"-u": true, "-g": true, "-C": true, "-D": true, "-h": true,
		"-p": true, "-r": true, "-t": true, "-U": true, "-T": true,
		"--user": true, "--group": true, "--close-from": true,
		"--chdir": true, "--host": true, "--prompt": true, "--role": true,
		"--type": true, "--other-user": true, "--command-timeout": true,
	}
	envArgOptions = map[string]bool{
		"-u": true, "-C": true, "-S": true,
		"--unset": true, "--chdir": true, "--split-string": true,
	}
	execArgOptions = map[string]bool{"-a": true}
)

// CommandIndex returns the index of the word that names the command to run,
// looking through leading NAME=value assignments and the wrappers sudo,
// doas, command, builtin, exec, nohup, time and env. It returns -1 when no
// command remains.
func CommandIndex(words []Token) int {
	i := 0
	for i < len(words) {
		w := words[i]
		if IsAssignment(w) {
			i++
			continue
		}
		switch BaseName(w.Value) {
		case "sudo", "doas":
			i = skipOptions(words, i+1, sudoArgOptions, false)
		case "command", "builtin", "nohup", "time":
			i = skipOptions(words, i+1, nil, false)
		case "exec":
			i = skipOptions(words, i+1, execArgOptions, false)
		case "env":
			i = skipOptions(words, i+1, envArgOptions, true)
		default:
			return i
		}
	}
	return -1
}

// skipOptions returns the index of the first word at or after i that is not
// an option of a wrapper. A "--" ends the options and is skipped.
func skipOptions(words []Token, i int, argOptions map[string]bool, assignments bool) int {
	for i < len(words) {
		w := words[i]
		switch {
		case w.Value == "--" && !w.Quoted:
			return i + 1
		case assignments && IsAssignment(w):
			i++
		case IsFlag(w):
			if argOptions[w.Value] {
				i += 2
			} else {
				i++
			}
		default:
			return i
		}
	}
	return i
}

// BaseName strips any directory prefix from a command word.
func BaseName(cmd string) string {
	cmd = strings.TrimRight(cmd, "/")
	if cmd == "" {
		return ""
	}
	if idx := strings.LastIndex(cmd, "/"); idx >= 0 {
		return cmd[idx+1:]
	}
	return cmd
}

// IsDirChange reports whether name changes the shell's directory.
func IsDirChange(name string) bool {
	switch name {
	case "cd", "pushd", "popd":
		return true
	}
	return false
}

// DirTarget returns the directory argument of a cd or pushd command: the
// first quoted argument if there is one, else the first argument that is not
// an option. A bare cd targets "~". ok is false when the command is not a
// directory change with a target, e.g. popd or a bare pushd.
func DirTarget(c Command) (target string, ok bool) {
	if c.Name != "cd" && c.Name != "pushd" {
		return "", false
	}
	args := c.Args()
	for _, a := range args {
		if a.Quoted {
			return a.Value, true
		}
	}
	for i, a := range args {
		if c.Name == "pushd" && isStackRotation(a.Value) {
			return "", false
		}
		if a.Value == "--" {
			if i+1 < len(args) {
				return args[i+1].Value, true
			}
			break
		}
		if IsFlag(a) {
			continue
		}
		return a.Value, true
	}
	if c.Name == "cd" {
		return "~", true
	}
	return "", false
}

// isStackRotation reports whether arg is a pushd +N or -N argument.
func isStackRotation(arg string) bool {
	return len(arg) > 1 && (arg[0] == '+' || arg[0] == '-') && isDigits(arg[1:])
}
