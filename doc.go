// Package pathguard decides, before execution, whether a shell command or a
// file write issued by an AI agent may run.
//
// A Guard is bound to one working directory. Anything inside it may be
// modified; everything else is off limits except temp directories, safe
// devices such as /dev/null and the configuration directories of known
// agent platforms. Paths are resolved the way the kernel would resolve
// them, symlinks included, so a link inside the project that points out of
// it is treated as outside.
//
// Commands are analyzed statically. The guard blocks destructive git
// operations, redirections out of the working directory, dangerous
// commands (rm, mv, cp, dd, ln, chmod, truncate and friends) whose targets
// leave it, destructive idioms such as find -exec rm and xargs rm, and
// substitutions that hide what a dangerous command operates on. Directory
// changes inside a chain are followed, so "cd ~ && rm -rf x" is judged
// against the home directory.
//
// The analysis is conservative: when a path cannot be resolved it is
// treated as outside every zone.
//
// Basic usage:
//
//	g, err := pathguard.New("/home/dev/project")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if v := g.Analyze("rm -rf ~/Documents"); v.Blocked {
//	    fmt.Println(v.Reason)
//	}
//
//	if v := g.ValidatePath("/etc/passwd"); v.Blocked {
//	    return v.Err()
//	}
package pathguard
