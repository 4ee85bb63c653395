package pathguard

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrConfigInvalid, "pathguard: invalid configuration"},
		{ErrBlocked, "pathguard: blocked"},
		{ErrNoHomeDir, "pathutil: home directory is unknown"},
		{ErrSymlinkLoop, "pathutil: too many levels of symbolic links"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorIdentity(t *testing.T) {
	all := []error{ErrConfigInvalid, ErrBlocked, ErrNoHomeDir, ErrSymlinkLoop}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("errors.Is(%v, %v) = true, want false", a, b)
			}
		}
	}
}

func TestBlockedError(t *testing.T) {
	err := error(&BlockedError{
		Command: "rm -rf ~/x",
		Path:    "~/x",
		Reason:  `rm on "~/x" is blocked`,
		Rule:    RuleCommand,
	})
	if got, want := err.Error(), `pathguard: blocked: rm on "~/x" is blocked`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrBlocked) {
		t.Error("errors.Is(err, ErrBlocked) = false")
	}

	wrapped := fmt.Errorf("hook: %w", err)
	if !errors.Is(wrapped, ErrBlocked) {
		t.Error("errors.Is(wrapped, ErrBlocked) = false")
	}
	var be *BlockedError
	if !errors.As(wrapped, &be) {
		t.Fatal("errors.As(wrapped, *BlockedError) = false")
	}
	if be.Path != "~/x" {
		t.Errorf("Path: got %q, want %q", be.Path, "~/x")
	}
	if be.Rule != RuleCommand {
		t.Errorf("Rule: got %q, want %q", be.Rule, RuleCommand)
	}
}
