package shell

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// SubstitutionKind says how a substitution reaches something the guard
// cares about.
type SubstitutionKind int

const (
	// SubstInArgument is a substitution in the arguments of a watched
	// command, e.g. rm -rf $(cat list).
	SubstInArgument SubstitutionKind = iota + 1

	// SubstRunsCommand is a substitution whose body runs a watched command,
	// e.g. echo $(rm -rf ~).
	SubstRunsCommand

	// SubstInRedirect is a substitution in an output redirection target, or
	// an output redirection inside a substitution.
	SubstInRedirect

	// SubstInCommandName is a command whose name comes from a substitution.
	SubstInCommandName
)

func (k SubstitutionKind) String() string {
	switch k {
	case SubstInArgument:
		return "substitution in arguments"
	case SubstRunsCommand:
		return "command inside substitution"
	case SubstInRedirect:
		return "substitution in redirect"
	case SubstInCommandName:
		return "substitution as command name"
	default:
		return "substitution"
	}
}

// Substitution describes a command or process substitution whose effect
// cannot be judged from the command text.
type Substitution struct {
	Kind SubstitutionKind

	// Command is the watched command involved, if any.
	Command string
}

// Substitutions is what InspectSubstitutions found in a command.
type Substitutions struct {
	// First is the first substitution the guard cannot judge. Its Kind is
	// zero when there is none.
	First Substitution

	// Writes are the literal targets of output redirections made inside
	// substitution bodies, e.g. "out" in $(make > out). They are not
	// visible to Tokenize and must be classified like any other redirect.
	Writes []string
}

// Found reports whether a substitution was found that the guard cannot
// judge.
func (s Substitutions) Found() bool { return s.First.Kind != 0 }

// InspectSubstitutions parses command as bash and looks for command
// substitutions ($(...) or backticks) and process substitutions (<(...),
// >(...)) that feed a watched command, run one, or decide where output
// goes. watched is called with command base names.
//
// A parse error is returned as is; the caller decides how to treat text the
// parser does not accept.
func InspectSubstitutions(command string, watched func(name string) bool) (Substitutions, error) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return Substitutions{}, err
	}

	var res Substitutions
	syntax.Walk(file, func(node syntax.Node) bool {
		if res.Found() {
			return false
		}
		switch n := node.(type) {
		case *syntax.CmdSubst:
			scanBody(n.Stmts, watched, &res)
		case *syntax.ProcSubst:
			scanBody(n.Stmts, watched, &res)
		case *syntax.CallExpr:
			res.First, _ = scanCall(n, watched)
		case *syntax.Redirect:
			if isOutputOp(n.Op) && n.Word != nil && hasSubst(n.Word) {
				res.First = Substitution{Kind: SubstInRedirect}
			}
		}
		return !res.Found()
	})
	return res, nil
}

// scanBody looks inside a substitution for a watched command and for output
// redirections.
func scanBody(stmts []*syntax.Stmt, watched func(string) bool, res *Substitutions) {
	for _, stmt := range stmts {
		syntax.Walk(stmt, func(node syntax.Node) bool {
			if res.Found() {
				return false
			}
			switch n := node.(type) {
			case *syntax.CallExpr:
				if name, known := callName(n); known && name != "" && watched(name) {
					res.First = Substitution{Kind: SubstRunsCommand, Command: name}
				}
			case *syntax.Redirect:
				if !isOutputOp(n.Op) || n.Word == nil {
					break
				}
				lit, ok := wordLiteral(n.Word)
				switch {
				case !ok:
					if hasSubst(n.Word) {
						res.First = Substitution{Kind: SubstInRedirect}
					}
				case n.Op == syntax.DplOut && isDup(lit):
				default:
					res.Writes = append(res.Writes, lit)
				}
			}
			return !res.Found()
		})
		if res.Found() {
			return
		}
	}
}

// scanCall checks a simple command for a substituted name, or a watched
// command with a substituted argument.
func scanCall(call *syntax.CallExpr, watched func(string) bool) (Substitution, bool) {
	name, known := callName(call)
	if !known {
		return Substitution{Kind: SubstInCommandName}, true
	}
	if name == "" || !watched(name) {
		return Substitution{}, false
	}
	for _, arg := range call.Args[1:] {
		if hasSubst(arg) {
			return Substitution{Kind: SubstInArgument, Command: name}, true
		}
	}
	return Substitution{}, false
}

// callName returns the base name of the command a call runs, looking through
// wrappers the same way CommandIndex does. known is false when a word that
// decides the name is not a literal.
func callName(call *syntax.CallExpr) (name string, known bool) {
	words := make([]Token, 0, len(call.Args))
	for _, w := range call.Args {
		lit, ok := wordLiteral(w)
		if !ok {
			if hasSubst(w) {
				lit = "\x00"
			} else {
				lit = "\x01"
			}
		}
		eq := strings.IndexByte(lit, '=')
		words = append(words, Token{Value: lit, Eq: eq})
	}
	idx := CommandIndex(words)
	if idx < 0 {
		return "", true
	}
	switch words[idx].Value {
	case "\x00":
		return "", false
	case "\x01":
		// A parameter expansion names the command; the guard does not
		// evaluate it here.
		return "", true
	}
	return BaseName(words[idx].Value), true
}

// HasSubstitution reports whether a word as returned by Tokenize holds a
// command or process substitution.
func HasSubstitution(word string) bool {
	return strings.Contains(word, "$(") || strings.Contains(word, "<(") ||
		strings.Contains(word, ">(") || strings.ContainsRune(word, '`')
}

// wordLiteral returns the text of a word made only of literal and quoted
// literal parts.
func wordLiteral(w *syntax.Word) (string, bool) {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				lit, ok := inner.(*syntax.Lit)
				if !ok {
					return "", false
				}
				sb.WriteString(lit.Value)
			}
		default:
			return "", false
		}
	}
	return sb.String(), true
}

func hasSubst(w *syntax.Word) bool {
	found := false
	syntax.Walk(w, func(node syntax.Node) bool {
		switch node.(type) {
		case *syntax.CmdSubst, *syntax.ProcSubst:
			found = true
		}
		return !found
	})
	return found
}

// isDup reports whether a >& target names a file descriptor rather than a
// file.
func isDup(target string) bool {
	return target == "-" || isDigits(strings.TrimSuffix(target, "-"))
}

func isOutputOp(op syntax.RedirOperator) bool {
	switch op {
	case syntax.RdrOut, syntax.AppOut, syntax.RdrInOut, syntax.ClbOut,
		syntax.RdrAll, syntax.AppAll, syntax.DplOut:
		return true
	}
	return false
}
