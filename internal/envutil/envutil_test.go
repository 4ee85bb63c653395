package envutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	env := []string{"PATH=/usr/bin", "HOME=/home/user", "EMPTY=", "URL=http://x?a=1"}

	tests := []struct {
		name      string
		key       string
		wantValue string
		wantOK    bool
	}{
		{name: "existing key", key: "HOME", wantValue: "/home/user", wantOK: true},
		{name: "empty value", key: "EMPTY", wantValue: "", wantOK: true},
		{name: "value with equals", key: "URL", wantValue: "http://x?a=1", wantOK: true},
		{name: "missing key", key: "NOPE", wantValue: "", wantOK: false},
		{name: "prefix of another key", key: "PAT", wantValue: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GetEnv(env, tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantValue, got)
		})
	}
}

func TestMergeEnv(t *testing.T) {
	tests := []struct {
		name       string
		base       []string
		additional []string
		want       []string
	}{
		{
			name:       "override keeps base position",
			base:       []string{"A=1", "B=2", "C=3"},
			additional: []string{"B=new"},
			want:       []string{"A=1", "B=new", "C=3"},
		},
		{
			name:       "new keys appended in order",
			base:       []string{"A=1"},
			additional: []string{"Z=26", "Y=25"},
			want:       []string{"A=1", "Z=26", "Y=25"},
		},
		{
			name:       "last duplicate in additional wins",
			base:       nil,
			additional: []string{"K=1", "K=2"},
			want:       []string{"K=2"},
		},
		{
			name:       "duplicate base keys collapse",
			base:       []string{"K=a", "K=b"},
			additional: []string{"K=c"},
			want:       []string{"K=c"},
		},
		{
			name:       "both empty",
			base:       nil,
			additional: nil,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeEnv(tt.base, tt.additional))
		})
	}
}

func TestEnvSnapshot(t *testing.T) {
	src := []string{"HOME=/home/a", "HOME=/home/b", "TMPDIR=/tmp/x"}
	e := New(src)

	src[0] = "HOME=/mutated"
	assert.Equal(t, "/home/b", e.Get("HOME"))
	assert.Len(t, e.vars, 2)

	v, ok := e.Lookup("TMPDIR")
	require.True(t, ok)
	assert.Equal(t, "/tmp/x", v)

	_, ok = e.Lookup("MISSING")
	assert.False(t, ok)
}

func TestZeroEnv(t *testing.T) {
	var e Env
	assert.Equal(t, "", e.Get("HOME"))
	assert.Empty(t, e.vars)
}

func TestFromMap(t *testing.T) {
	got := FromMap(map[string]string{"B": "2", "A": "1", "C": "x=y"})
	assert.Equal(t, []string{"A=1", "B=2", "C=x=y"}, got)
	assert.Empty(t, FromMap(nil))
}
