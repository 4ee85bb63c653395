package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeWords(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    []string
	}{
		{name: "plain", segment: "rm -rf x", want: []string{"rm", "-rf", "x"}},
		{name: "extra blanks", segment: "  rm \t x  ", want: []string{"rm", "x"}},
		{name: "double quotes", segment: `rm "my dir"`, want: []string{"rm", "my dir"}},
		{name: "single quotes", segment: `rm 'x y'`, want: []string{"rm", "x y"}},
		{name: "adjacent quotes join", segment: `rm a"b c"'d'`, want: []string{"rm", "ab cd"}},
		{name: "escaped blank", segment: `rm a\ b`, want: []string{"rm", "a b"}},
		{name: "escaped quote in double", segment: `echo "a\"b"`, want: []string{"echo", `a"b`}},
		{name: "backslash kept in double", segment: `echo "a\nb"`, want: []string{"echo", `a\nb`}},
		{name: "backslash literal in single", segment: `echo 'a\'`, want: []string{"echo", `a\`}},
		{name: "empty quoted word", segment: `echo ""`, want: []string{"echo", ""}},
		{name: "comment", segment: "rm x # ~/y", want: []string{"rm", "x"}},
		{name: "hash inside word", segment: "echo a#b", want: []string{"echo", "a#b"}},
		{name: "command substitution kept whole", segment: "rm $(cat a b) x", want: []string{"rm", "$(cat a b)", "x"}},
		{name: "backticks kept whole", segment: "rm `cat a b` x", want: []string{"rm", "`cat a b`", "x"}},
		{name: "process substitution kept whole", segment: "tee >(gzip > out.gz)", want: []string{"tee", ">(gzip > out.gz)"}},
		{name: "variables kept", segment: "rm $HOME/x ${D}", want: []string{"rm", "$HOME/x", "${D}"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, redirects := Tokenize(tt.segment)
			assert.Equal(t, tt.want, tokenValues(words))
			assert.Empty(t, redirects)
		})
	}
}

func TestTokenizeQuotedAndEq(t *testing.T) {
	words, _ := Tokenize(`dd if=/dev/zero of="/tmp/out" 'a=b' x\=y FOO=bar`)
	require.Len(t, words, 6)

	assert.Equal(t, 2, words[1].Eq)
	assert.Equal(t, "/dev/zero", PathValue(words[1]))
	assert.False(t, words[1].Quoted)

	assert.Equal(t, 2, words[2].Eq)
	assert.Equal(t, "/tmp/out", PathValue(words[2]))
	assert.True(t, words[2].Quoted)

	assert.Equal(t, -1, words[3].Eq)
	assert.Equal(t, "a=b", PathValue(words[3]))

	assert.Equal(t, -1, words[4].Eq)
	assert.Equal(t, "x=y", words[4].Value)

	assert.True(t, IsAssignment(words[5]))
	assert.False(t, IsAssignment(Token{Value: "--dir=/x", Eq: 5}))
	assert.False(t, IsAssignment(Token{Value: "=x", Eq: 0}))
	assert.False(t, IsAssignment(Token{Value: "1A=x", Eq: 2}))
}

func TestTokenizeRedirects(t *testing.T) {
	tests := []struct {
		name      string
		segment   string
		words     []string
		redirects []Redirect
		output    []bool
	}{
		{
			name:      "truncate",
			segment:   "echo hi > out.txt",
			words:     []string{"echo", "hi"},
			redirects: []Redirect{{Op: ">", Target: Token{Value: "out.txt", Eq: -1}}},
			output:    []bool{true},
		},
		{
			name:      "append without blanks",
			segment:   "echo hi>>log",
			words:     []string{"echo", "hi"},
			redirects: []Redirect{{Op: ">>", Target: Token{Value: "log", Eq: -1}}},
			output:    []bool{true},
		},
		{
			name:      "descriptor",
			segment:   "cmd 2>/dev/null",
			words:     []string{"cmd"},
			redirects: []Redirect{{Op: ">", FD: "2", Target: Token{Value: "/dev/null", Eq: -1}}},
			output:    []bool{true},
		},
		{
			name:      "duplication",
			segment:   "cmd 2>&1",
			words:     []string{"cmd"},
			redirects: []Redirect{{Op: ">&", FD: "2"}},
			output:    []bool{false},
		},
		{
			name:      "duplication to stderr",
			segment:   "echo x >&2",
			words:     []string{"echo", "x"},
			redirects: []Redirect{{Op: ">&"}},
			output:    []bool{false},
		},
		{
			name:      "close",
			segment:   "cmd 2>&-",
			words:     []string{"cmd"},
			redirects: []Redirect{{Op: ">&", FD: "2"}},
			output:    []bool{false},
		},
		{
			name:      "duplication to file",
			segment:   "cmd >& all.log",
			words:     []string{"cmd"},
			redirects: []Redirect{{Op: ">&", Target: Token{Value: "all.log", Eq: -1}}},
			output:    []bool{true},
		},
		{
			name:      "all",
			segment:   "cmd &> all.log",
			words:     []string{"cmd"},
			redirects: []Redirect{{Op: "&>", Target: Token{Value: "all.log", Eq: -1}}},
			output:    []bool{true},
		},
		{
			name:      "quoted target",
			segment:   `cmd > "my file"`,
			words:     []string{"cmd"},
			redirects: []Redirect{{Op: ">", Target: Token{Value: "my file", Quoted: true, Eq: -1}}},
			output:    []bool{true},
		},
		{
			name:      "clobber",
			segment:   "cmd >| f",
			words:     []string{"cmd"},
			redirects: []Redirect{{Op: ">|", Target: Token{Value: "f", Eq: -1}}},
			output:    []bool{true},
		},
		{
			name:      "read write",
			segment:   "cmd <> f",
			words:     []string{"cmd"},
			redirects: []Redirect{{Op: "<>", Target: Token{Value: "f", Eq: -1}}},
			output:    []bool{true},
		},
		{
			name:      "input",
			segment:   "sort < in.txt",
			words:     []string{"sort"},
			redirects: []Redirect{{Op: "<", Target: Token{Value: "in.txt", Eq: -1}}},
			output:    []bool{false},
		},
		{
			name:      "heredoc",
			segment:   "cat <<EOF",
			words:     []string{"cat"},
			redirects: []Redirect{{Op: "<<", Target: Token{Value: "EOF", Eq: -1}}},
			output:    []bool{false},
		},
		{
			name:      "quoted digits are a word",
			segment:   `echo "2">x`,
			words:     []string{"echo", "2"},
			redirects: []Redirect{{Op: ">", Target: Token{Value: "x", Eq: -1}}},
			output:    []bool{true},
		},
		{
			name:      "quoted operator is a word",
			segment:   `echo ">" x`,
			words:     []string{"echo", ">", "x"},
			redirects: nil,
		},
		{
			name:      "missing target",
			segment:   "echo >",
			words:     []string{"echo"},
			redirects: []Redirect{{Op: ">"}},
			output:    []bool{false},
		},
		{
			name:    "several",
			segment: "cp a b > /dev/null 2>&1",
			words:   []string{"cp", "a", "b"},
			redirects: []Redirect{
				{Op: ">", Target: Token{Value: "/dev/null", Eq: -1}},
				{Op: ">&", FD: "2"},
			},
			output: []bool{true, false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, redirects := Tokenize(tt.segment)
			assert.Equal(t, tt.words, tokenValues(words))
			assert.Equal(t, tt.redirects, redirects)
			for i, want := range tt.output {
				assert.Equal(t, want, redirects[i].IsOutput(), redirects[i].String())
			}
		})
	}
}

func TestRedirectString(t *testing.T) {
	assert.Equal(t, "2>&", Redirect{Op: ">&", FD: "2"}.String())
	assert.Equal(t, "> out", Redirect{Op: ">", Target: Token{Value: "out"}}.String())
}

func TestIsFlag(t *testing.T) {
	assert.True(t, IsFlag(Token{Value: "-rf"}))
	assert.True(t, IsFlag(Token{Value: "--force"}))
	assert.False(t, IsFlag(Token{Value: "-"}))
	assert.False(t, IsFlag(Token{Value: "-rf", Quoted: true}))
	assert.False(t, IsFlag(Token{Value: "x"}))
}

func tokenValues(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Value
	}
	return out
}
