package pathutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/zhangyunhao116/pathguard/internal/envutil"
)

func FuzzIsWithin(f *testing.F) {
	f.Add("/work", "/work/a")
	f.Add("/work", "/workspace")
	f.Add("/work", "/work/../etc")
	f.Add("/", "/etc")
	f.Add("/work", "/work/..cache")

	f.Fuzz(func(t *testing.T, root, path string) {
		if !filepath.IsAbs(root) || !filepath.IsAbs(path) {
			return
		}
		root, path = filepath.Clean(root), filepath.Clean(path)
		got := IsWithin(root, path)
		if got && !hasRootPrefix(path, root) {
			t.Fatalf("IsWithin(%q, %q) = true but %q is not a prefix", root, path, root)
		}
		if !got && hasRootPrefix(path, root) {
			t.Fatalf("IsWithin(%q, %q) = false but %q is a prefix", root, path, root)
		}
	})
}

func FuzzExpand(f *testing.F) {
	f.Add("~/x")
	f.Add("$HOME/${NAME:-d}/$PWD")
	f.Add("${")
	f.Add("$$")
	f.Add("~user")

	r, err := NewResolver(Options{
		WorkDir: "/work",
		HomeDir: "/home/u",
		Env:     envutil.New([]string{"NAME=v"}),
	})
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, path string) {
		out, err := r.Expand(path, "")
		if err != nil {
			t.Fatalf("Expand(%q) failed: %v", path, err)
		}
		if !strings.Contains(path, "$") && !strings.HasPrefix(path, "~") && out != path {
			t.Fatalf("Expand(%q) = %q, want unchanged", path, out)
		}
	})
}
