package graphql_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/goliatone/go-opforms/pkg/graphql"
	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/types"
)

func exportOperator(t *testing.T) operator.Operator {
	t.Helper()
	inputs := types.NewObject()
	_, err := inputs.Str("path", types.Required(), types.WithDescription("Destination path"))
	require.NoError(t, err)
	_, err = inputs.Enum("format", []any{"csv", "json"}, types.WithDefault("csv"))
	require.NoError(t, err)
	_, err = inputs.Enum("level", []any{1, 2, 3})
	require.NoError(t, err)
	_, err = inputs.SampleID("sample")
	require.NoError(t, err)
	_, err = inputs.List("tags", types.NewString())
	require.NoError(t, err)

	nested := types.NewObject()
	_, err = nested.Int("retries", types.WithDefault(3))
	require.NoError(t, err)
	_, err = inputs.Obj("options", nested)
	require.NoError(t, err)

	return operator.Operator{Name: "export_samples", Inputs: inputs}
}

func TestTypeName(t *testing.T) {
	require.Equal(t, "ExportSamples", graphql.TypeName("export_samples"))
	require.Equal(t, "VoxelExport", graphql.TypeName("@voxel/export"))
	require.Equal(t, "T3d", graphql.TypeName("3d"))
}

func TestInputDefinitions(t *testing.T) {
	op := exportOperator(t)
	defs, err := graphql.InputDefinitions(op.Name, op.Inputs)
	require.NoError(t, err)

	root := defs.ForName("ExportSamplesInput")
	require.NotNil(t, root)
	require.Equal(t, ast.InputObject, root.Kind)

	path := root.Fields.ForName("path")
	require.Equal(t, "String!", path.Type.String())
	require.Equal(t, "Destination path", path.Description)

	format := root.Fields.ForName("format")
	require.Equal(t, "ExportSamplesFormat", format.Type.String())
	require.Equal(t, ast.EnumValue, format.DefaultValue.Kind)

	require.Equal(t, "Float", root.Fields.ForName("level").Type.String())
	require.Equal(t, "ID", root.Fields.ForName("sample").Type.String())
	require.Equal(t, "[String!]", root.Fields.ForName("tags").Type.String())
	require.Equal(t, "ExportSamplesOptionsInput", root.Fields.ForName("options").Type.String())

	enum := defs.ForName("ExportSamplesFormat")
	require.NotNil(t, enum)
	require.Len(t, enum.EnumValues, 2)

	nested := defs.ForName("ExportSamplesOptionsInput")
	require.NotNil(t, nested)
	require.Equal(t, "3", nested.Fields.ForName("retries").DefaultValue.Raw)
}

func TestSDL_Parses(t *testing.T) {
	sdl, err := graphql.SDL(exportOperator(t), operator.Operator{Name: "reload", Inputs: types.NewObject()})
	require.NoError(t, err)
	require.Contains(t, sdl, "input ExportSamplesInput")
	require.Contains(t, sdl, "enum ExportSamplesFormat")

	doc, err := parser.ParseSchema(&ast.Source{Input: sdl})
	require.NoError(t, err)
	require.NotNil(t, doc.Definitions.ForName("ReloadInput"))
}

func TestSchemaDocument_NameCollision(t *testing.T) {
	a := operator.Operator{Name: "export_samples", Inputs: types.NewObject()}
	b := operator.Operator{Name: "export-samples", Inputs: types.NewObject()}
	_, err := graphql.SchemaDocument(a, b)
	require.ErrorContains(t, err, "generated twice")
}
