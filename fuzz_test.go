package pathguard

import (
	"testing"
)

// FuzzAnalyze exercises Guard.Analyze with arbitrary command strings. The
// analyzer must never panic, and an allowed verdict must carry nothing.
func FuzzAnalyze(f *testing.F) {
	seeds := []string{
		"rm -rf /",
		"echo hello",
		"",
		"cd ~ && rm -rf x",
		"(cd /etc) && rm x",
		"pushd /tmp && popd && popd",
		"git reset --hard",
		`find ~ -exec rm {} \;`,
		"ls | xargs rm",
		"rsync -a --delete ./a host:/b",
		"echo `rm -rf ~`",
		"echo $(cat x > ~/out)",
		"cat a &> ~/log",
		"echo \"unterminated",
		"rm $(",
		"dd of=",
		"cp -t",
		"mv",
		"cd -",
		"))((",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	g, err := New(testWorkDir, WithHomeDir(testHome), WithEnv([]string{"OLDPWD=" + testOldPWD}))
	if err != nil {
		f.Fatal(err)
	}
	f.Fuzz(func(t *testing.T, command string) {
		v := g.Analyze(command)
		if !v.Blocked && v != (Verdict{}) {
			t.Fatalf("allowed verdict carries data: %+v", v)
		}
		if v.Blocked && v.Reason == "" {
			t.Fatalf("blocked verdict without reason for %q", command)
		}
	})
}

// FuzzValidatePath exercises Guard.ValidatePath with arbitrary paths.
func FuzzValidatePath(f *testing.F) {
	for _, s := range []string{"", "/etc/passwd", "./x", "~/.claude/x", "$HOME/${X:-y}", "a\x00b", "../../.."} {
		f.Add(s)
	}

	g, err := New(testWorkDir, WithHomeDir(testHome), WithEnv(nil))
	if err != nil {
		f.Fatal(err)
	}
	f.Fuzz(func(t *testing.T, path string) {
		v := g.ValidatePath(path)
		if path == "" && v.Blocked {
			t.Fatal("empty path must be allowed")
		}
	})
}
