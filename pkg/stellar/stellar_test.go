package stellar_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/kepmap/pkg/candidates"
	"github.com/agentstation/kepmap/pkg/errors"
	"github.com/agentstation/kepmap/pkg/koi"
	"github.com/agentstation/kepmap/pkg/stellar"
	"github.com/agentstation/kepmap/pkg/table"
)

const stellarCSV = `kepid,teff,logg,feh,mass,mass_err1,mass_err2,radius
10797460,5455,4.467,0.14,0.919,0.052,-0.046,0.927
757076,5160,3.58,-0.08,,,,27.384
757099,5519,4.5,-0.04,0.865,0.02,-0.01,0.868
12345,6000,4.4,0.0,1.02,,,1.1
`

const koiCSV = `kepid,kepoi_name,ra,dec
10797460,K00752.01,291.93423,48.141651
99999999,K00042.01,280.0,40.0
`

// loader serves tables by name.
type loader map[string]*table.Table

func (l loader) Load(_ context.Context, name string) (*table.Table, error) {
	t, ok := l[name]
	if !ok {
		return nil, errors.NewCatalogUnavailableError(name, errors.ErrArchiveUnavailable)
	}
	return t, nil
}

func newLoader(t *testing.T) loader {
	t.Helper()
	rawStars, err := table.ParseCSV("q1_q17_dr24_stellar", stellar.KeyColumn, strings.NewReader(stellarCSV))
	require.NoError(t, err)
	stars, err := stellar.Definition("").Prepare(rawStars)
	require.NoError(t, err)

	rawKOIs, err := table.ParseCSV("cumulative", candidates.KeyColumn, strings.NewReader(koiCSV))
	require.NoError(t, err)

	return loader{"q1_q17_dr24_stellar": stars, "cumulative": rawKOIs}
}

func newAccessor(t *testing.T) *stellar.Accessor {
	t.Helper()
	l := newLoader(t)
	return stellar.New(l, "", stellar.WithCandidates(candidates.New(l, "")))
}

func TestDefinition_DropsMissingMass(t *testing.T) {
	tbl := newLoader(t)["q1_q17_dr24_stellar"]
	assert.Equal(t, []string{"10797460", "757099", "12345"}, tbl.Keys())

	unchanged, err := stellar.DropMissing("nope")(tbl)
	require.NoError(t, err)
	assert.Same(t, tbl, unchanged)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	a := newAccessor(t)

	tests := []struct {
		name string
		id   any
		want string
	}{
		{name: "koi integer", id: 752, want: "10797460"},
		{name: "koi string", id: "KOI-752.01", want: "10797460"},
		{name: "koi name", id: koi.Name("K00752.01"), want: "10797460"},
		{name: "kic integer", id: 10797460, want: "10797460"},
		{name: "kic string", id: "757099", want: "757099"},
		{name: "kic prefixed", id: "KIC 757099", want: "757099"},
		{name: "kic float", id: 757099.0, want: "757099"},
		{name: "kic int64", id: int64(757099), want: "757099"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, err := a.Resolve(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, row.Key())
		})
	}
}

func TestResolve_FallsBackToStarID(t *testing.T) {
	ctx := context.Background()
	a := newAccessor(t)

	// 12345 normalizes to K12345.01, which the candidate table does not hold,
	// so the number is read as a KIC id.
	rec, err := a.Properties(ctx, 12345, "teff", "mass")
	require.NoError(t, err)
	assert.Equal(t, 6000.0, rec.Float("teff"))
	assert.Equal(t, 1.02, rec.Float("mass"))

	rec, err = a.Properties(ctx, "12345", "teff")
	require.NoError(t, err)
	assert.Equal(t, 6000.0, rec.Float("teff"))
}

func TestResolve_Errors(t *testing.T) {
	ctx := context.Background()
	a := newAccessor(t)

	_, err := a.Resolve(ctx, "KOI-42")
	require.Error(t, err)
	assert.True(t, errors.IsPropertyNotFound(err), "candidate resolved to a star without a stellar row")

	_, err = a.Resolve(ctx, 757076)
	require.Error(t, err)
	assert.True(t, errors.IsUnknownIdentifier(err), "row dropped at load time")

	_, err = a.Resolve(ctx, "not-an-id")
	assert.True(t, errors.IsUnknownIdentifier(err))

	_, err = a.Resolve(ctx, -5)
	assert.True(t, errors.IsUnknownIdentifier(err))

	_, err = a.Resolve(ctx, 1.5)
	assert.True(t, errors.IsUnknownIdentifier(err))
}

func TestResolve_CatalogUnavailable(t *testing.T) {
	ctx := context.Background()
	l := newLoader(t)

	noStars := loader{"cumulative": l["cumulative"]}
	_, err := stellar.New(noStars, "", stellar.WithCandidates(candidates.New(noStars, ""))).Resolve(ctx, 752)
	assert.True(t, errors.IsCatalogUnavailable(err))

	noKOIs := loader{"q1_q17_dr24_stellar": l["q1_q17_dr24_stellar"]}
	_, err = stellar.New(noKOIs, "", stellar.WithCandidates(candidates.New(noKOIs, ""))).Resolve(ctx, 752)
	assert.True(t, errors.IsCatalogUnavailable(err))
}

func TestResolve_WithoutCandidates(t *testing.T) {
	a := stellar.New(newLoader(t), "")
	row, err := a.Resolve(context.Background(), 757099)
	require.NoError(t, err)
	assert.Equal(t, "757099", row.Key())

	_, err = a.Resolve(context.Background(), "KOI-752")
	assert.True(t, errors.IsUnknownIdentifier(err))
}

func TestProperties(t *testing.T) {
	ctx := context.Background()
	a := newAccessor(t)

	rec, err := a.Properties(ctx, "K00752.01", "mass", "mass_err1", "mass_err2")
	require.NoError(t, err)
	assert.Equal(t, []string{"mass", "mass_err1", "mass_err2"}, rec.Names())
	assert.Equal(t, -0.046, rec.Float("mass_err2"))

	_, err = a.Properties(ctx, 752, "mass", "nope")
	assert.True(t, errors.IsPropertyNotFound(err))

	all, err := a.Properties(ctx, 752)
	require.NoError(t, err)
	assert.Len(t, all.Fields, 8)

	v, err := a.Property(ctx, 12345, "mass_err1")
	require.NoError(t, err)
	assert.True(t, v.IsNaN(), "missing error bar is a NaN value")

	f, _ := v.Float()
	assert.True(t, math.IsNaN(f))
}
