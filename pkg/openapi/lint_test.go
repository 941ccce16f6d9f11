package openapi_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-opforms/pkg/openapi"
)

func TestLint_ReportsUnsupportedExtensions(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "lint.yaml"))
	require.NoError(t, err)

	violations, err := openapi.Lint(context.Background(), data)
	require.NoError(t, err)

	got := make([]string, 0, len(violations))
	for _, v := range violations {
		got = append(got, v.String())
	}
	require.Equal(t, []string{
		`operation > create_job > requestBody -> x-opforms-dynamic must be a boolean, found string`,
		`operation > create_job > requestBody -> x-opforms-order names unknown property "missing"`,
		`operation > create_job > requestBody > properties.mode -> x-opforms-view: unknown view kind "Slider"`,
		`operation > create_job > requestBody > properties.name -> unsupported extension "x-opforms-widget" (supported: x-opforms-dynamic, x-opforms-order, x-opforms-view)`,
	}, got)
}

func TestLint_CleanDocument(t *testing.T) {
	violations, err := openapi.Lint(context.Background(), loadFixture(t))
	require.NoError(t, err)
	require.Empty(t, violations)
}

func TestLint_EmptyPayload(t *testing.T) {
	_, err := openapi.Lint(context.Background(), nil)
	require.Error(t, err)
}
