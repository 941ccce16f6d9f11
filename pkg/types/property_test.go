package types_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-opforms/pkg/types"
)

func TestProperty_InheritsInvalidFromNestedObject(t *testing.T) {
	inner := types.NewObject()
	if _, err := inner.Str("broken", types.WithInvalid(true)); err != nil {
		t.Fatalf("define: %v", err)
	}
	outer := types.NewObject()
	if _, err := outer.DefineProperty("inner", inner); err != nil {
		t.Fatalf("define: %v", err)
	}

	prop, _ := outer.Property("inner")
	if !prop.Invalid() {
		t.Fatalf("expected inner property to inherit invalidity")
	}
	if _, set := prop.InvalidOverride(); set {
		t.Fatalf("inner was never marked explicitly")
	}
}

func TestProperty_InvalidityTracksDeepNesting(t *testing.T) {
	leafParent := types.NewObject()
	middle := types.NewObject()
	root := types.NewObject()

	if _, err := middle.Obj("leafParent", leafParent); err != nil {
		t.Fatalf("define: %v", err)
	}
	rootProp, err := root.Obj("middle", middle)
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if rootProp.Invalid() {
		t.Fatalf("tree has no invalid leaves yet")
	}

	// Added after the outer properties were built.
	if _, err := leafParent.Bool("flag", types.WithInvalid(true)); err != nil {
		t.Fatalf("define: %v", err)
	}
	if !rootProp.Invalid() {
		t.Fatalf("expected invalidity to surface three levels up")
	}
	if !rootProp.HasInvalidDescendants() {
		t.Fatalf("expected HasInvalidDescendants")
	}
}

func deepChain(t *testing.T, depth int) (*types.Object, *types.Object) {
	t.Helper()
	root := types.NewObject()
	current := root
	for i := 0; i < depth; i++ {
		next := types.NewObject()
		if _, err := current.Obj("n", next); err != nil {
			t.Fatalf("define level %d: %v", i, err)
		}
		current = next
	}
	if _, err := current.Str("leaf"); err != nil {
		t.Fatalf("define leaf: %v", err)
	}
	return root, current
}

func TestProperty_InvalidityScalesWithDepth(t *testing.T) {
	const depth = 96
	root, bottom := deepChain(t, depth)
	top, _ := root.Property("n")

	start := time.Now()
	if top.Invalid() {
		t.Fatalf("chain without invalid leaves reported invalid")
	}
	if _, ok := root.Descriptor()["properties"]; !ok {
		t.Fatalf("descriptor missing properties")
	}

	if _, err := bottom.Str("broken", types.WithInvalid(true)); err != nil {
		t.Fatalf("define: %v", err)
	}
	if !top.Invalid() {
		t.Fatalf("expected invalidity to surface %d levels up", depth)
	}
	properties, _ := root.Descriptor()["properties"].(types.PropertyMap)
	n, ok := properties.Get("n")
	if !ok {
		t.Fatalf("descriptor missing property n")
	}
	if invalid, _ := n["invalid"].(bool); !invalid {
		t.Fatalf("expected root descriptor to flag n as invalid")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("validity walk over %d levels took %s", depth, elapsed)
	}
}

func TestProperty_ExplicitOverrideWins(t *testing.T) {
	inner := types.NewObject()
	if _, err := inner.Str("broken", types.WithInvalid(true)); err != nil {
		t.Fatalf("define: %v", err)
	}
	middle := types.NewObject()
	forcedValid, err := middle.Obj("inner", inner, types.WithInvalid(false))
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if forcedValid.Invalid() {
		t.Fatalf("explicit override must win")
	}
	if !forcedValid.HasInvalidDescendants() {
		t.Fatalf("descendant inspection is unaffected by the override")
	}

	outer := types.NewObject()
	top, err := outer.Obj("middle", middle)
	if err != nil {
		t.Fatalf("define: %v", err)
	}
	if !top.Invalid() {
		t.Fatalf("grandparent sees the invalid grandchild through the forced-valid child")
	}

	forcedInvalid, err := types.NewProperty(types.NewString(), types.WithInvalid(true))
	if err != nil {
		t.Fatalf("new property: %v", err)
	}
	if !forcedInvalid.Invalid() {
		t.Fatalf("explicit invalid must be kept")
	}
}

func TestProperty_NonObjectTypesNeverContribute(t *testing.T) {
	list := types.MustList(types.NewString())
	for _, typ := range []types.TypeNode{
		types.NewString(), types.NewBoolean(), types.NewNumber(), list,
		types.MustEnum("x"), types.NewSampleID(),
	} {
		p, err := types.NewProperty(typ)
		if err != nil {
			t.Fatalf("new property: %v", err)
		}
		if p.Invalid() || p.HasInvalidDescendants() {
			t.Fatalf("%s property must be valid", typ.Kind())
		}
	}
}

func TestProperty_InvalidDescriptorCarriesErrorFields(t *testing.T) {
	p, err := types.NewProperty(types.NewString(),
		types.WithInvalid(true),
		types.WithErrorMessage("Name is taken"),
		types.WithDefault("bob"),
		types.WithChoices("bob", "alice"),
	)
	if err != nil {
		t.Fatalf("new property: %v", err)
	}

	want := types.Descriptor{
		"type":          types.Descriptor{"name": "String"},
		"default":       "bob",
		"required":      false,
		"choices":       []any{"bob", "alice"},
		"view":          nil,
		"invalid":       true,
		"error_message": "Name is taken",
	}
	if diff := cmp.Diff(want, p.Descriptor()); diff != "" {
		t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestProperty_Defaults(t *testing.T) {
	p, err := types.NewProperty(types.NewBoolean())
	if err != nil {
		t.Fatalf("new property: %v", err)
	}
	if p.ErrorMessage() != types.DefaultErrorMessage {
		t.Fatalf("expected default error message, got %q", p.ErrorMessage())
	}
	if p.Required() || p.Default() != nil || p.Choices() != nil || p.View() != nil {
		t.Fatalf("unexpected defaults on %+v", p.Descriptor())
	}

	labelled, err := types.NewProperty(types.NewBoolean(), types.WithLabel("Enabled"))
	if err != nil {
		t.Fatalf("new property: %v", err)
	}
	if labelled.View() == nil || labelled.View().Label() != "Enabled" {
		t.Fatalf("label override should create a view")
	}

	if _, err := types.NewProperty(nil); !errors.Is(err, types.ErrSchemaDefinition) {
		t.Fatalf("expected definition error for nil type, got %v", err)
	}
}

func TestTypeNodes_Descriptors(t *testing.T) {
	cases := []struct {
		name string
		node types.TypeNode
		want types.Descriptor
	}{
		{"string", types.NewString(), types.Descriptor{"name": "String"}},
		{"boolean", types.NewBoolean(), types.Descriptor{"name": "Boolean"}},
		{"sample id", types.NewSampleID(), types.Descriptor{"name": "String"}},
		{
			"int number",
			types.NewNumber(types.AsInt(), types.WithMin(0), types.WithMax(10)),
			types.Descriptor{"name": "Number", "min": 0.0, "max": 10.0, "int": true},
		},
		{
			"float number omits float flag",
			types.NewNumber(types.AsFloat()),
			types.Descriptor{"name": "Number", "min": nil, "max": nil, "int": false},
		},
		{
			"list",
			types.MustList(types.NewBoolean(), types.WithMinItems(1), types.WithMaxItems(3)),
			types.Descriptor{
				"name":         "List",
				"element_type": types.Descriptor{"name": "Boolean"},
				"min_items":    1,
				"max_items":    3,
			},
		},
		{
			"mixed enum",
			types.MustEnum("a", 1, true),
			types.Descriptor{"name": "Enum", "values": []any{"a", 1, true}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.node.Descriptor()); diff != "" {
				t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNumber_KindFlags(t *testing.T) {
	n := types.NewNumber(types.AsInt(), types.AsFloat())
	if n.IsInt() || !n.IsFloat() {
		t.Fatalf("last flavour option should win")
	}
	if _, ok := n.Min(); ok {
		t.Fatalf("min should be unset")
	}
}

func TestList_RejectsBadBounds(t *testing.T) {
	if _, err := types.NewList(nil); !errors.Is(err, types.ErrSchemaDefinition) {
		t.Fatalf("expected error for nil element, got %v", err)
	}
	if _, err := types.NewList(types.NewString(), types.WithMinItems(3), types.WithMaxItems(1)); !errors.Is(err, types.ErrSchemaDefinition) {
		t.Fatalf("expected error for inverted bounds, got %v", err)
	}
}

func TestTrigger_Descriptor(t *testing.T) {
	params := map[string]any{"target": "ground_truth"}
	trigger := types.NewTrigger("@voxel51/export_samples", params)
	params["target"] = "mutated"

	want := types.Descriptor{
		"name":     "Trigger",
		"operator": "@voxel51/export_samples",
		"params":   map[string]any{"target": "ground_truth"},
	}
	if diff := cmp.Diff(want, trigger.Descriptor()); diff != "" {
		t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
	}

	bare := types.NewTrigger("reload", nil)
	if bare.Descriptor()["params"] != nil {
		t.Fatalf("expected null params")
	}
}
