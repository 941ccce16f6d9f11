package html_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/render"
	"github.com/goliatone/go-opforms/pkg/renderers/html"
	"github.com/goliatone/go-opforms/pkg/types"
)

func exportOperator(t *testing.T) operator.Operator {
	t.Helper()
	split := types.NewRadioGroup(types.ViewConfig{Label: "Split"})
	split.AddChoice("train", types.ViewConfig{Label: "Train"})
	split.AddChoice("val", types.ViewConfig{Label: "Validation"})

	params := types.NewObject()
	_, err := params.DefineProperty("threshold", types.NewNumber(types.WithMin(0), types.WithMax(1)))
	require.NoError(t, err)

	inputs := types.NewObject()
	_, err = inputs.Str("note", types.WithView(types.NewNotice(types.ViewConfig{Label: "Exports run in the background"})))
	require.NoError(t, err)
	_, err = inputs.Str("path", types.Required(), types.WithDescription("<script>alert(1)</script><em>Absolute</em> path"))
	require.NoError(t, err)
	_, err = inputs.Str("split", types.WithView(split), types.WithDefault("val"))
	require.NoError(t, err)
	_, err = inputs.Enum("format", []any{"csv", "json"})
	require.NoError(t, err)
	_, err = inputs.Bool("overwrite", types.WithDefault(true))
	require.NoError(t, err)
	_, err = inputs.List("fields", types.MustEnum("a", "b"))
	require.NoError(t, err)
	_, err = inputs.Obj("params", params)
	require.NoError(t, err)

	return operator.Operator{Name: "export", Label: "Export", Inputs: inputs}
}

func TestRender_Controls(t *testing.T) {
	r := html.New()
	require.Equal(t, "html", r.Name())

	out, err := r.Render(context.Background(), exportOperator(t), render.RenderOptions{
		Values:     map[string]any{"format": "json", "fields": []any{"b"}, "params": map[string]any{"threshold": 0.5}},
		Errors:     map[string][]string{"path": {"Path is required"}},
		FormErrors: []string{"Could not export"},
		Hidden:     []render.HiddenField{render.CSRFToken("_csrf", "tok")},
	})
	require.NoError(t, err)
	doc := string(out)

	require.Contains(t, doc, `action="/operators/export"`)
	require.Contains(t, doc, `<input type="hidden" name="_operator" value="export">`)
	require.Contains(t, doc, `<input type="hidden" name="_csrf" value="tok">`)
	require.Contains(t, doc, `class="opforms-notice"`)
	require.Contains(t, doc, `<em>Absolute</em> path`)
	require.NotContains(t, doc, "<script>")
	require.Contains(t, doc, "Path is required")
	require.Contains(t, doc, "Could not export")
	require.Contains(t, doc, `<input type="radio" name="split" value="val" checked> Validation`)
	require.Contains(t, doc, `<option value="json" selected>json</option>`)
	require.Contains(t, doc, `name="overwrite" value="true" checked`)
	require.Contains(t, doc, `name="fields[]" multiple`)
	require.Contains(t, doc, `<option value="b" selected>b</option>`)
	require.Contains(t, doc, `<fieldset class="opforms-group" data-path="params">`)
	require.Contains(t, doc, `name="params.threshold" value="0.5" min="0" max="1" step="any"`)
	require.Less(t, strings.Index(doc, `name="path"`), strings.Index(doc, `name="split"`))
}

func TestRender_DynamicFormIsFlagged(t *testing.T) {
	out, err := html.New().Render(context.Background(), operator.Operator{Name: "reload", Dynamic: true}, render.RenderOptions{})
	require.NoError(t, err)
	require.Contains(t, string(out), `data-needs-resolution="true"`)
	require.Contains(t, string(out), "<h2>Reload</h2>")
}

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
		Assets: theme.Assets{
			Prefix: "/assets/acme",
			Files:  map[string]string{html.AssetStylesheet: "forms.css"},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens:    map[string]string{"brand": "#654321"},
				Templates: map[string]string{html.PartialRow: "compact_row.tpl"},
			},
		},
	}
}

func TestThemes_ConfigMergesVariant(t *testing.T) {
	themes := html.NewThemes()
	require.NoError(t, themes.Register(acmeManifest()))

	cfg, err := themes.Config("", "dark")
	require.NoError(t, err)
	require.Equal(t, "acme", cfg.Theme)
	require.Equal(t, "#654321", cfg.Tokens["brand"])
	require.Equal(t, "#654321", cfg.CSSVars["--brand"])
	require.Equal(t, "compact_row.tpl", cfg.Partials[html.PartialRow])
	require.Equal(t, "/assets/acme/forms.css", cfg.AssetURL(html.AssetStylesheet))
	require.Empty(t, cfg.AssetURL("missing"))

	_, err = themes.Select("acme", "light")
	require.Error(t, err)
	_, err = themes.Select("other", "")
	require.Error(t, err)
}

func TestRender_ThemeTokensAndPartials(t *testing.T) {
	themes := html.NewThemes()
	require.NoError(t, themes.Register(acmeManifest()))

	overrides := fstest.MapFS{
		"compact_row.tpl": {Data: []byte(`<i data-row="{{ row.Path }}"></i>`)},
	}
	r := html.New(html.WithTheme(themes, "acme", "dark"), html.WithTemplates(overrides), html.WithSubmitLabel("Run"))

	inputs := types.NewObject()
	_, err := inputs.Str("name")
	require.NoError(t, err)

	out, err := r.Render(context.Background(), operator.Operator{Name: "greet", Inputs: inputs}, render.RenderOptions{})
	require.NoError(t, err)
	doc := string(out)

	require.Contains(t, doc, `style="--brand: #654321"`)
	require.Contains(t, doc, `href="/assets/acme/forms.css"`)
	require.Contains(t, doc, `opforms--acme opforms--dark`)
	require.Contains(t, doc, `<i data-row="name"></i>`)
	require.Contains(t, doc, ">Run</button>")
}
