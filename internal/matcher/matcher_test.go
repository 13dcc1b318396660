package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		opts        *Options
		wantType    PatternType
		wantErr     bool
	}{
		{name: "valid glob", pattern: "koi_*mag", patternType: Glob, wantType: Glob},
		{name: "valid regex", pattern: "^koi_.*", patternType: Regex, wantType: Regex},
		{name: "invalid regex", pattern: "(unclosed", patternType: Regex, wantErr: true},
		{name: "invalid glob", pattern: "koi_[", patternType: Glob, wantErr: true},
		{name: "auto glob", pattern: "koi_?mag", patternType: Auto, wantType: Glob},
		{name: "auto regex", pattern: `^koi_\w+$`, patternType: Auto, wantType: Regex},
		{name: "unsupported", pattern: "x", patternType: PatternType(9), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern, tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.Type())
			assert.Equal(t, tt.pattern, m.Pattern())
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		opts        *Options
		input       string
		want        bool
	}{
		{name: "glob star", pattern: "koi_*mag", patternType: Glob, input: "koi_gmag", want: true},
		{name: "glob miss", pattern: "koi_*mag", patternType: Glob, input: "koi_gmag_orig", want: false},
		{name: "glob class", pattern: "koi_[gr]mag", patternType: Glob, input: "koi_rmag", want: true},
		{name: "glob case sensitive", pattern: "KOI_*", patternType: Glob, input: "koi_period", want: false},
		{name: "glob case folded", pattern: "KOI_*", patternType: Glob, opts: &Options{CaseInsensitive: true}, input: "koi_period", want: true},
		{name: "regex unanchored", pattern: "mag", patternType: Regex, input: "koi_gmag_orig", want: true},
		{name: "regex anchored", pattern: "koi_.mag", patternType: Regex, opts: &Options{Anchored: true}, input: "koi_gmag_orig", want: false},
		{name: "regex case folded", pattern: "^RA$", patternType: Regex, opts: &Options{CaseInsensitive: true}, input: "ra", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := MustNew(tt.patternType, tt.pattern, tt.opts)
			assert.Equal(t, tt.want, m.Match(tt.input))
		})
	}
}

func TestMatchAll(t *testing.T) {
	m := MustNew(Glob, "koi_*mag")
	assert.Equal(t, []string{"koi_gmag", "koi_kepmag"}, m.MatchAll("ra", "koi_gmag", "koi_gmag_orig", "koi_kepmag"))
	assert.Empty(t, m.MatchAll("ra", "dec"))
}

func TestMultiMatcher(t *testing.T) {
	mm, err := NewMultiMatcher([]string{"ra", "dec", "koi_*"}, Glob)
	require.NoError(t, err)

	assert.True(t, mm.Match("dec"))
	assert.False(t, mm.Match("kepid"))
	assert.Equal(t, []string{"ra", "koi_count"}, mm.MatchAll("ra", "kepid", "koi_count", "ra"))

	_, err = NewMultiMatcher([]string{"ok", "bad["}, Glob)
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	columns := []string{"kepid", "kepoi_name", "ra", "dec", "koi_gmag", "koi_rmag", "koi_gmag_orig", "koi_kepmag"}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{name: "literals keep order", patterns: []string{"dec", "ra"}, want: []string{"dec", "ra"}},
		{name: "missing literal kept", patterns: []string{"ra", "nope"}, want: []string{"ra", "nope"}},
		{name: "glob expands in column order", patterns: []string{"koi_*mag"}, want: []string{"koi_gmag", "koi_rmag", "koi_kepmag"}},
		{name: "dot alone is literal", patterns: []string{"koi_.mag"}, want: []string{"koi_.mag"}},
		{name: "explicit regex", patterns: []string{"^koi_(g|r)mag$"}, want: []string{"koi_gmag", "koi_rmag"}},
		{name: "duplicates dropped", patterns: []string{"koi_gmag", "koi_*mag"}, want: []string{"koi_gmag", "koi_rmag", "koi_kepmag"}},
		{name: "blank skipped", patterns: []string{" ", "ra "}, want: []string{"ra"}},
		{name: "no match", patterns: []string{"x*"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(columns, tt.patterns...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Select(columns, "(broken|")
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"ra", "dec"}, SplitList("ra, dec"))
	assert.Equal(t, []string{"koi_[gr]mag", "^x{1,2}$"}, SplitList("koi_[gr]mag,^x{1,2}$"))
	assert.Nil(t, SplitList(" , "))
}

func TestIsPattern(t *testing.T) {
	assert.False(t, IsPattern("koi_gmag"))
	assert.True(t, IsPattern("koi_*"))
	assert.True(t, IsPattern("^ra$"))
}
