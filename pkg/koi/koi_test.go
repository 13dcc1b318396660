package koi_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kepmap/pkg/errors"
	"github.com/agentstation/kepmap/pkg/koi"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want koi.Name
	}{
		{name: "int", raw: 123, want: "K00123.01"},
		{name: "int64", raw: int64(5), want: "K00005.01"},
		{name: "uint16", raw: uint16(7), want: "K00007.01"},
		{name: "float", raw: 123.01, want: "K00123.01"},
		{name: "float whole", raw: 123.0, want: "K00123.00"},
		{name: "float rounds", raw: 5.019, want: "K00005.02"},
		{name: "float rounds binary value", raw: 123.005, want: "K00123.00"},
		{name: "string decimal rounds binary value", raw: "123.005", want: "K00123.00"},
		{name: "float32", raw: float32(70.03), want: "K00070.03"},
		{name: "string integer", raw: "123", want: "K00123.01"},
		{name: "string integer padded", raw: "  123\n", want: "K00123.01"},
		{name: "string decimal", raw: "123.01", want: "K00123.01"},
		{name: "string decimal one digit", raw: "123.1", want: "K00123.10"},
		{name: "canonical", raw: "K00123.01", want: "K00123.01"},
		{name: "star prefix", raw: "K00123", want: "K00123.01"},
		{name: "star prefix with letter", raw: "K00123A", want: "K00123.01"},
		{name: "koi dash", raw: "KOI-123", want: "K00123.01"},
		{name: "koi underscore", raw: "koi_123", want: "K00123.01"},
		{name: "koi no separator", raw: "KOI123", want: "K00123.01"},
		{name: "koi decimal", raw: "koi-123.01", want: "K00123.01"},
		{name: "koi decimal mixed case", raw: "Koi_123.02", want: "K00123.02"},
		{name: "canonical embedded", raw: "candidate K00070.03 (confirmed)", want: "K00070.03"},
		{name: "name passthrough", raw: koi.Name("K00001.01"), want: "K00001.01"},
		{name: "max star", raw: 99999, want: "K99999.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := koi.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestParse_LastMatchWins(t *testing.T) {
	// "K00123" satisfies the star-prefix matcher; nothing later overrides it.
	got, err := koi.Parse("K00123")
	require.NoError(t, err)
	assert.Equal(t, koi.Name("K00123.01"), got)

	// The star-prefix matcher only needs the prefix at the end of the input,
	// and no later matcher fires, so its result stands.
	got, err = koi.Parse("xK00042")
	require.NoError(t, err)
	assert.Equal(t, koi.Name("K00042.01"), got)

	// A KOI-prefixed decimal overrides the canonical substring found before it.
	got, err = koi.Parse("K00001.01 aka KOI-2.03")
	require.NoError(t, err)
	assert.Equal(t, koi.Name("K00002.03"), got)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  any
	}{
		{name: "words", raw: "not-an-id"},
		{name: "empty", raw: ""},
		{name: "spaces", raw: "   "},
		{name: "lowercase canonical", raw: "k00123.01"},
		{name: "negative int", raw: -4},
		{name: "too many digits", raw: 123456},
		{name: "too many digits string", raw: "123456"},
		{name: "nan", raw: math.NaN()},
		{name: "inf", raw: math.Inf(1)},
		{name: "negative float", raw: -1.01},
		{name: "unsupported type", raw: []int{1}},
		{name: "nil", raw: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := koi.Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidIdentifier(err), "got %v", err)
		})
	}
}

func TestNormalize_EquivalentSpellings(t *testing.T) {
	spellings := []any{123, 123.0, "123", "123.01", "K00123.01", "KOI-123", "koi_123", "koi-123.01"}

	for _, raw := range spellings {
		star, err := koi.Normalize(raw, koi.StarOnly())
		require.NoError(t, err, "raw %v", raw)
		assert.Equal(t, koi.Name("K00123"), star, "raw %v", raw)
	}

	// Every spelling that names candidate .01 agrees at candidate level.
	for _, raw := range []any{123, "123", "123.01", "K00123.01", "KOI-123", "koi_123", "koi-123.01"} {
		full, err := koi.Normalize(raw)
		require.NoError(t, err, "raw %v", raw)
		assert.Equal(t, koi.Name("K00123.01"), full, "raw %v", raw)
	}
}

func TestNormalize_Projections(t *testing.T) {
	got, err := koi.Normalize(5)
	require.NoError(t, err)
	assert.Equal(t, koi.Name("K00005.01"), got)

	got, err = koi.Normalize(5, koi.StarOnly(), koi.AsNumber())
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	got, err = koi.Normalize("KOI-5.02", koi.AsNumber())
	require.NoError(t, err)
	assert.InDelta(t, 5.02, got, 1e-9)

	got, err = koi.Normalize("KOI-5.02", koi.StarOnly())
	require.NoError(t, err)
	assert.Equal(t, koi.Name("K00005"), got)

	_, err = koi.Normalize("not-an-id")
	assert.True(t, errors.IsInvalidIdentifier(err))
}

func TestName_Accessors(t *testing.T) {
	n := koi.MustParse("KOI-1234.05")
	assert.Equal(t, "K01234.05", n.String())
	assert.Equal(t, koi.Name("K01234"), n.Star())
	assert.Equal(t, 1234, n.StarNumber())
	assert.Equal(t, 5, n.Candidate())
	assert.InDelta(t, 1234.05, n.Number(), 1e-9)
	assert.False(t, n.IsStar())

	s := n.Star()
	assert.True(t, s.IsStar())
	assert.True(t, s.Valid())
	assert.Equal(t, 0, s.Candidate())
	assert.Equal(t, s, s.Star())

	assert.False(t, koi.Name("K1").Valid())
}

func TestStarHelpers(t *testing.T) {
	name, err := koi.StarName("koi_42.03")
	require.NoError(t, err)
	assert.Equal(t, koi.Name("K00042"), name)

	num, err := koi.StarNumber(" KOI-42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, num)

	_, err = koi.StarNumber("nope")
	assert.True(t, errors.IsInvalidIdentifier(err))

	assert.Panics(t, func() { koi.MustParse("nope") })
}
