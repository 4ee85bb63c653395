// Package shell reads command strings the way the guard needs to: split
// into chain links, broken into words and redirections, and looked through
// wrapper commands to the program that actually runs.
//
// It is deliberately not a shell. Quoting and escaping are handled by an
// explicit state machine; command and process substitutions are kept opaque
// and left to InspectSubstitutions, which uses a real parser.
package shell

import "strings"

// state is the quoting state of the scanner.
type state int

const (
	stateNormal state = iota
	stateSingle
	stateDouble
)

// Chain operators as recorded in Link.Op.
const (
	OpAnd        = "&&"
	OpOr         = "||"
	OpSeq        = ";"
	OpPipe       = "|"
	OpBackground = "&"
	OpNewline    = "\n"
)

// Link is one command of a chain.
type Link struct {
	// Text is the command text, trimmed, with subshell parentheses removed.
	Text string

	// Op is the operator that joined this link to the previous one, or ""
	// for the first link.
	Op string

	// Opens and Closes count the subshell parentheses that start and end
	// at this link, e.g. "(cd x" has Opens 1 and "rm y)" has Closes 1.
	Opens  int
	Closes int
}

// Split breaks command into chain links on &&, ||, ;, |, |&, a lone &, and
// unquoted newlines. Operators inside quotes, after a backslash, or inside
// $(...), <(...), >(...) and backticks do not split. A backslash-newline is
// a line continuation and is removed.
func Split(command string) []Link {
	var (
		links    []Link
		cur      strings.Builder
		st       = stateNormal
		depth    int
		backtick bool
		op       string
		opens    int
		closes   int
		last     byte
	)
	write := func(c byte) {
		cur.WriteByte(c)
		if c != ' ' && c != '\t' {
			last = c
		}
	}
	flush := func(next string) {
		text := strings.TrimSpace(cur.String())
		if text != "" || opens > 0 || closes > 0 {
			links = append(links, Link{Text: text, Op: op, Opens: opens, Closes: closes})
			op = next
		} else if len(links) > 0 {
			op = next
		}
		cur.Reset()
		opens, closes, last = 0, 0, 0
	}
	peek := func(i int) byte {
		if i+1 < len(command) {
			return command[i+1]
		}
		return 0
	}

	for i := 0; i < len(command); i++ {
		c := command[i]
		switch st {
		case stateSingle:
			write(c)
			if c == '\'' {
				st = stateNormal
			}
			continue
		case stateDouble:
			if c == '\\' && i+1 < len(command) {
				if command[i+1] != '\n' {
					write(c)
					write(command[i+1])
				}
				i++
				continue
			}
			write(c)
			if c == '"' {
				st = stateNormal
			}
			continue
		}

		switch {
		case c == '\\':
			if i+1 < len(command) {
				if command[i+1] != '\n' {
					write(c)
					write(command[i+1])
				}
				i++
			} else {
				write(c)
			}
			continue
		case c == '\'':
			st = stateSingle
			write(c)
			continue
		case c == '"':
			st = stateDouble
			write(c)
			continue
		case c == '`':
			backtick = !backtick
			write(c)
			continue
		case (c == '$' || c == '<' || c == '>') && peek(i) == '(':
			depth++
			write(c)
			write('(')
			i++
			continue
		case c == '(' && depth == 0 && !backtick && strings.TrimSpace(cur.String()) == "":
			opens++
			continue
		case c == '(':
			depth++
			write(c)
			continue
		case c == ')' && depth > 0:
			depth--
			write(c)
			continue
		case c == ')' && !backtick:
			closes++
			continue
		}

		if depth > 0 || backtick {
			write(c)
			continue
		}

		switch c {
		case ';':
			if peek(i) == ';' || peek(i) == '&' {
				i++
			}
			flush(OpSeq)
		case '\n':
			flush(OpNewline)
		case '|':
			switch {
			case i > 0 && command[i-1] == '>':
				// >| is a clobbering redirection, not a pipe.
				write(c)
			case peek(i) == '|':
				i++
				flush(OpOr)
			case peek(i) == '&':
				i++
				flush(OpPipe)
			default:
				flush(OpPipe)
			}
		case '&':
			switch {
			case peek(i) == '&':
				i++
				flush(OpAnd)
			case peek(i) == '>' || last == '>' || last == '<':
				write(c)
			default:
				flush(OpBackground)
			}
		default:
			write(c)
		}
	}
	flush("")
	return links
}
