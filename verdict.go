package pathguard

// unknownStr is the string representation for unknown enum values.
const unknownStr = "unknown"

// Rule identifiers carried by blocked verdicts.
const (
	// RuleGit marks a destructive git operation.
	RuleGit = "git"

	// RuleRedirect marks an output redirection outside the allowed zones.
	RuleRedirect = "redirect"

	// RuleSubstitution marks a command or process substitution whose
	// effect cannot be checked.
	RuleSubstitution = "substitution"

	// RuleCompound marks a destructive idiom such as find -delete.
	RuleCompound = "compound"

	// RuleCommand marks a dangerous command with a path outside the
	// allowed zones.
	RuleCommand = "command"

	// RuleProtected marks a write or delete of a protected path.
	RuleProtected = "protected"

	// RulePath marks a file operation outside the allowed zones.
	RulePath = "path"
)

// Verdict is the outcome of a check. An allowed verdict is the zero value:
// it never carries a Reason, Rule, Command or Path.
type Verdict struct {
	// Blocked is true when the operation must not proceed.
	Blocked bool

	// Reason is a human-readable explanation naming the offending command
	// or path and the check that triggered.
	Reason string

	// Rule is the identifier of the check that blocked, one of the Rule*
	// constants.
	Rule string

	// Command is the chain link that was blocked, if any.
	Command string

	// Path is the offending path as written, if any.
	Path string
}

// Allowed reports whether the operation may proceed.
func (v Verdict) Allowed() bool { return !v.Blocked }

// String returns "allowed" or "blocked: <reason>".
func (v Verdict) String() string {
	if !v.Blocked {
		return "allowed"
	}
	return "blocked: " + v.Reason
}

// Err returns a *BlockedError for a blocked verdict and nil otherwise.
func (v Verdict) Err() error {
	if !v.Blocked {
		return nil
	}
	return &BlockedError{
		Command: v.Command,
		Path:    v.Path,
		Reason:  v.Reason,
		Rule:    v.Rule,
	}
}

func allow() Verdict { return Verdict{} }

func block(rule, command, path, reason string) Verdict {
	return Verdict{
		Blocked: true,
		Reason:  reason,
		Rule:    rule,
		Command: command,
		Path:    path,
	}
}
