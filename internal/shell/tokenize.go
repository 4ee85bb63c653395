package shell

import "strings"

// Token is one shell word with its quotes removed.
type Token struct {
	// Value is the word with quotes and escapes removed. Substitutions are
	// kept verbatim.
	Value string

	// Quoted is true when any part of the word was quoted.
	Quoted bool

	// Eq is the index in Value of the first unquoted '=', or -1.
	Eq int
}

// Redirect is one redirection of a command.
type Redirect struct {
	// Op is the operator without its file descriptor, e.g. ">", ">>",
	// "&>", "<", "<<".
	Op string

	// FD is the explicit file descriptor before the operator, or "".
	FD string

	// Target is the redirected-to word. It is empty for descriptor
	// duplications such as 2>&1.
	Target Token
}

// IsOutput reports whether the redirection can create or modify a file.
func (r Redirect) IsOutput() bool {
	switch r.Op {
	case ">", ">>", ">|", "&>", "&>>", "<>", ">&":
		return r.Target.Value != "" || r.Target.Quoted
	}
	return false
}

// String returns the redirection as written, without quotes.
func (r Redirect) String() string {
	if r.Target.Value == "" {
		return r.FD + r.Op
	}
	return r.FD + r.Op + " " + r.Target.Value
}

// Tokenize splits a single chain link into words and redirections. Words
// are split on unquoted blanks; an unquoted '#' at the start of a word
// starts a comment. The words consumed as redirection targets do not
// appear in words.
func Tokenize(segment string) (words []Token, redirects []Redirect) {
	var (
		cur      strings.Builder
		st       = stateNormal
		started  bool
		quoted   bool
		eq       = -1
		depth    int
		backtick bool
		pending  *Redirect
	)
	emit := func() {
		if !started {
			return
		}
		tok := Token{Value: cur.String(), Quoted: quoted, Eq: eq}
		if pending != nil {
			pending.Target = tok
			redirects = append(redirects, *pending)
			pending = nil
		} else {
			words = append(words, tok)
		}
		cur.Reset()
		started, quoted, eq = false, false, -1
	}
	peek := func(i int) byte {
		if i+1 < len(segment) {
			return segment[i+1]
		}
		return 0
	}

	for i := 0; i < len(segment); i++ {
		c := segment[i]
		switch st {
		case stateSingle:
			if c == '\'' {
				st = stateNormal
			} else {
				cur.WriteByte(c)
			}
			continue
		case stateDouble:
			switch {
			case c == '"':
				st = stateNormal
			case c == '\\' && strings.IndexByte("$`\"\\\n", peek(i)) >= 0 && peek(i) != 0:
				if peek(i) != '\n' {
					cur.WriteByte(peek(i))
				}
				i++
			default:
				cur.WriteByte(c)
			}
			continue
		}

		if depth > 0 || backtick {
			switch c {
			case '(':
				depth++
			case ')':
				if depth > 0 {
					depth--
				}
			case '`':
				if depth == 0 {
					backtick = false
				}
			}
			cur.WriteByte(c)
			continue
		}

		switch {
		case c == ' ' || c == '\t' || c == '\n':
			emit()
		case c == '\\':
			started = true
			if n := peek(i); n != 0 {
				if n != '\n' {
					cur.WriteByte(n)
				}
				i++
			}
		case c == '\'':
			started, quoted = true, true
			st = stateSingle
		case c == '"':
			started, quoted = true, true
			st = stateDouble
		case c == '`':
			started = true
			backtick = true
			cur.WriteByte(c)
		case (c == '$' || c == '<' || c == '>') && peek(i) == '(':
			started = true
			depth++
			cur.WriteByte(c)
			cur.WriteByte('(')
			i++
		case c == '#' && !started:
			emit()
			return words, redirects
		case c == '>' || c == '<' || (c == '&' && peek(i) == '>'):
			var fd string
			if started && !quoted && isDigits(cur.String()) {
				fd = cur.String()
				cur.Reset()
				started, eq = false, -1
			} else {
				emit()
			}
			if pending != nil {
				// Operator where a target was expected; keep the
				// earlier redirection with an empty target.
				redirects = append(redirects, *pending)
			}
			op, n := readRedirectOp(segment[i:])
			i += n - 1
			r := Redirect{Op: op, FD: fd}
			if op == ">&" || op == "<&" {
				j := i + 1
				for j < len(segment) && (segment[j] == ' ' || segment[j] == '\t') {
					j++
				}
				k := j
				for k < len(segment) && (isDigit(segment[k]) || segment[k] == '-') {
					k++
				}
				if k > j && (k == len(segment) || strings.IndexByte(" \t\n;&|<>)", segment[k]) >= 0) {
					// Descriptor duplication or close: no file involved.
					i = k - 1
					redirects = append(redirects, r)
					continue
				}
			}
			pending = &r
		case c == '=' && eq < 0:
			eq = cur.Len()
			started = true
			cur.WriteByte(c)
		default:
			started = true
			cur.WriteByte(c)
		}
	}
	emit()
	if pending != nil {
		redirects = append(redirects, *pending)
	}
	return words, redirects
}

// readRedirectOp returns the redirection operator at the start of s and its
// length.
func readRedirectOp(s string) (string, int) {
	for _, op := range []string{"&>>", "&>", "<<<", "<<-", "<<", "<>", "<&", "<", ">>", ">|", ">&", ">"} {
		if strings.HasPrefix(s, op) {
			return op, len(op)
		}
	}
	return s[:1], 1
}

// IsAssignment reports whether t is a NAME=value word.
func IsAssignment(t Token) bool {
	return t.Eq > 0 && isName(t.Value[:t.Eq])
}

// PathValue returns the part of t that may name a path: the value after an
// unquoted '=' (so of=/x yields /x), otherwise the whole word.
func PathValue(t Token) string {
	if t.Eq >= 0 {
		return t.Value[t.Eq+1:]
	}
	return t.Value
}

// IsFlag reports whether t looks like an option rather than an operand.
func IsFlag(t Token) bool {
	return !t.Quoted && len(t.Value) > 1 && t.Value[0] == '-'
}

func isName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (i > 0 && isDigit(c)) {
			continue
		}
		return false
	}
	return true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
