package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func watchRm(name string) bool { return name == "rm" }

func TestInspectSubstitutions(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    Substitution
	}{
		{name: "runs command", command: "echo $(rm -rf ~)", want: Substitution{Kind: SubstRunsCommand, Command: "rm"}},
		{name: "backticks run command", command: "echo `rm x`", want: Substitution{Kind: SubstRunsCommand, Command: "rm"}},
		{name: "quoted substitution runs command", command: `echo "$(sudo rm x)"`, want: Substitution{Kind: SubstRunsCommand, Command: "rm"}},
		{name: "process substitution runs command", command: "cat <(rm x)", want: Substitution{Kind: SubstRunsCommand, Command: "rm"}},
		{name: "argument", command: "rm -rf $(cat list)", want: Substitution{Kind: SubstInArgument, Command: "rm"}},
		{name: "argument with backticks", command: "rm -rf `pwd`/x", want: Substitution{Kind: SubstInArgument, Command: "rm"}},
		{name: "argument behind wrapper", command: "sudo rm $(cat f)", want: Substitution{Kind: SubstInArgument, Command: "rm"}},
		{name: "argument after cd", command: "cd x && rm $(cat f)", want: Substitution{Kind: SubstInArgument, Command: "rm"}},
		{name: "redirect target", command: "echo hi > $(mktemp)", want: Substitution{Kind: SubstInRedirect}},
		{name: "command name", command: "$(which rm) -rf /", want: Substitution{Kind: SubstInCommandName}},
		{name: "nested", command: "echo $(echo $(rm x))", want: Substitution{Kind: SubstRunsCommand, Command: "rm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := InspectSubstitutions(tt.command, watchRm)
			require.NoError(t, err)
			assert.True(t, res.Found())
			assert.Equal(t, tt.want, res.First)
		})
	}
}

func TestInspectSubstitutionsAllowed(t *testing.T) {
	tests := []string{
		"x=$(pwd)",
		"echo $(date)",
		"ls $(pwd)",
		"git commit -m \"$(cat msg)\"",
		"out=$(make 2>&1)",
		"rm -rf ./build",
		"$CMD -x",
		"echo '$(rm x)'",
		"cd $(git rev-parse --show-toplevel) && git status",
		"ROOT=$(cd sub && pwd)",
		"",
	}
	for _, command := range tests {
		t.Run(command, func(t *testing.T) {
			res, err := InspectSubstitutions(command, watchRm)
			require.NoError(t, err)
			assert.False(t, res.Found(), res.First.Kind.String())
			assert.Empty(t, res.Writes)
		})
	}
}

func TestInspectSubstitutionsWrites(t *testing.T) {
	res, err := InspectSubstitutions("v=$(cmd 2>/dev/null) && w=$(echo hi > ~/x)", watchRm)
	require.NoError(t, err)
	assert.False(t, res.Found())
	assert.Equal(t, []string{"/dev/null", "~/x"}, res.Writes)
}

func TestInspectSubstitutionsParseError(t *testing.T) {
	_, err := InspectSubstitutions("echo $(", watchRm)
	assert.Error(t, err)
}

func TestSubstitutionKindString(t *testing.T) {
	assert.Equal(t, "substitution in arguments", SubstInArgument.String())
	assert.Equal(t, "command inside substitution", SubstRunsCommand.String())
	assert.Equal(t, "substitution in redirect", SubstInRedirect.String())
	assert.Equal(t, "substitution as command name", SubstInCommandName.String())
	assert.Equal(t, "substitution", SubstitutionKind(0).String())
}

func TestHasSubstitution(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{word: "$(git rev-parse --show-toplevel)", want: true},
		{word: "`pwd`/x", want: true},
		{word: "<(ls)", want: true},
		{word: "prefix-$(date)", want: true},
		{word: "$HOME/x", want: false},
		{word: "${DIR}", want: false},
		{word: "plain", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasSubstitution(tt.word), tt.word)
	}
}
