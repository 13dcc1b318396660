package errors_test

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/agentstation/kepmap/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestInvalidIdentifierError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := pkgerrors.NewInvalidIdentifierError("not-an-id", "")
		assert.Equal(t, `"not-an-id" is not a valid KOI name`, err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidIdentifier))
		assert.True(t, pkgerrors.IsInvalidIdentifier(err))
	})

	t.Run("with reason", func(t *testing.T) {
		err := pkgerrors.NewInvalidIdentifierError(-4, "negative star number")
		assert.Contains(t, err.Error(), "-4")
		assert.Contains(t, err.Error(), "negative star number")
	})

	t.Run("not an unknown identifier", func(t *testing.T) {
		err := pkgerrors.NewInvalidIdentifierError("x", "")
		assert.False(t, pkgerrors.IsUnknownIdentifier(err))
	})
}

func TestUnknownIdentifierError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := pkgerrors.NewUnknownIdentifierError("cumulative", "K00001.01", nil)
		assert.Equal(t, "K00001.01 not found in cumulative", err.Error())
		assert.True(t, pkgerrors.IsUnknownIdentifier(err))
	})

	t.Run("wrapping an invalid identifier", func(t *testing.T) {
		cause := pkgerrors.NewInvalidIdentifierError("junk", "")
		err := pkgerrors.NewUnknownIdentifierError("cumulative", "junk", cause)
		assert.True(t, pkgerrors.IsUnknownIdentifier(err))
		assert.True(t, pkgerrors.IsInvalidIdentifier(err))

		var invalid *pkgerrors.InvalidIdentifierError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "junk", invalid.Raw)
	})
}

func TestPropertyNotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  *pkgerrors.PropertyNotFoundError
		want string
	}{
		{
			name: "column on row",
			err:  pkgerrors.NewPropertyNotFoundError("stellar", "757450", "foo"),
			want: "property foo not found for 757450 in stellar",
		},
		{
			name: "column on table",
			err:  pkgerrors.NewPropertyNotFoundError("stellar", "", "foo"),
			want: "stellar has no column foo",
		},
		{
			name: "missing row",
			err:  pkgerrors.NewPropertyNotFoundError("stellar", "757450", ""),
			want: "no stellar row for 757450",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, pkgerrors.IsPropertyNotFound(tt.err))
		})
	}
}

func TestCatalogUnavailableError(t *testing.T) {
	t.Run("wraps the archive error", func(t *testing.T) {
		apiErr := pkgerrors.NewAPIError("https://archive.test", 503, "Service Unavailable")
		err := pkgerrors.NewCatalogUnavailableError("cumulative", apiErr)

		assert.True(t, pkgerrors.IsCatalogUnavailable(err))
		assert.True(t, errors.Is(err, pkgerrors.ErrArchiveUnavailable))
		assert.Contains(t, err.Error(), "cumulative")
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("loading: %w", pkgerrors.NewCatalogUnavailableError("q1_q17_dr24_stellar", nil))
		assert.True(t, pkgerrors.IsCatalogUnavailable(err))
	})
}

func TestAPIError(t *testing.T) {
	t.Run("client error is not archive unavailable", func(t *testing.T) {
		err := pkgerrors.NewAPIError("https://archive.test", 404, "Not Found")
		assert.False(t, errors.Is(err, pkgerrors.ErrArchiveUnavailable))
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("with wrapped error", func(t *testing.T) {
		base := errors.New("connection refused")
		err := &pkgerrors.APIError{Endpoint: "https://archive.test", Message: "request failed", Err: base}
		assert.Equal(t, base, err.Unwrap())
		assert.Contains(t, err.Error(), "request failed")
	})
}

func TestIOError(t *testing.T) {
	base := errors.New("permission denied")
	err := pkgerrors.WrapIO("write", "/tmp/cumulative.db", base)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write")
	assert.Contains(t, err.Error(), "/tmp/cumulative.db")
	assert.True(t, errors.Is(err, base))

	assert.NoError(t, pkgerrors.WrapIO("write", "x", nil))
}

func TestParseError(t *testing.T) {
	err := &pkgerrors.ParseError{Format: "csv", File: "cumulative", Line: 12, Message: "wrong number of fields"}
	assert.Equal(t, "parse error in csv at cumulative:12: wrong number of fields", err.Error())

	assert.NoError(t, pkgerrors.WrapParse("csv", "x", nil))
}

func TestResourceError(t *testing.T) {
	base := errors.New("boom")
	err := pkgerrors.WrapResource("load", "catalog", "cumulative", base)
	assert.Equal(t, "failed to load catalog cumulative: boom", err.Error())
	assert.True(t, errors.Is(err, base))
}

func TestTimeoutError(t *testing.T) {
	err := pkgerrors.NewTimeoutError("fetch", "30s", "archive did not answer")
	assert.True(t, pkgerrors.IsTimeout(err))
	assert.Contains(t, err.Error(), "30s")
}

func TestValidationError(t *testing.T) {
	err := pkgerrors.NewValidationError("data_dir", "", "cannot be empty")
	assert.True(t, pkgerrors.IsValidationError(err))
	assert.Equal(t, "validation failed for field data_dir: cannot be empty", err.Error())
}
