package formdef_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-opforms/pkg/formdef"
	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/types"
)

func TestLoadFS_Testdata(t *testing.T) {
	ops, err := formdef.LoadFS(context.Background(), os.DirFS("testdata"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("expected 2 operators, got %d", len(ops))
	}

	export := ops[0]
	if export.Name != "export_samples" || export.Label != "Export samples" {
		t.Fatalf("unexpected operator: %+v", export)
	}
	wantOrder := []string{"path", "format", "overwrite", "threshold", "tags", "options"}
	if diff := cmp.Diff(wantOrder, export.Inputs.Names()); diff != "" {
		t.Fatalf("input order mismatch (-want +got):\n%s", diff)
	}

	path, _ := export.Inputs.Property("path")
	if !path.Required() || path.View().Label() != "Destination" {
		t.Fatalf("unexpected path property: %+v", path.Descriptor())
	}

	format, _ := export.Inputs.Property("format")
	dropdown, ok := format.View().(*types.Choices)
	if !ok || dropdown.Kind() != types.ViewKindDropdown {
		t.Fatalf("expected dropdown view, got %T", format.View())
	}
	if diff := cmp.Diff([]any{"csv", "json", "parquet"}, dropdown.Values()); diff != "" {
		t.Fatalf("choice values mismatch (-want +got):\n%s", diff)
	}
	if format.Default() != "csv" {
		t.Fatalf("expected default csv, got %v", format.Default())
	}

	threshold, _ := export.Inputs.Property("threshold")
	number := threshold.Type().(*types.Number)
	if max, ok := number.Max(); !ok || max != 1 || !number.IsFloat() {
		t.Fatalf("unexpected threshold number: %+v", number.Descriptor())
	}

	level, err := export.Inputs.Lookup("options.level")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !level.Type().(*types.Number).IsInt() {
		t.Fatalf("expected integral level")
	}

	tags, _ := export.Inputs.Property("tags")
	list := tags.Type().(*types.List)
	if min, _ := list.MinItems(); min != 1 || list.Element().Kind() != types.KindString {
		t.Fatalf("unexpected list: %+v", list.Descriptor())
	}

	trigger := export.Triggers["on_success"]
	if trigger == nil || trigger.Operator() != "reload_dataset" || trigger.Params()["refresh"] != true {
		t.Fatalf("unexpected trigger: %+v", trigger)
	}

	reload := ops[1]
	if !reload.Dynamic || !reload.Inputs.Dynamic() {
		t.Fatalf("expected dynamic reload operator")
	}
	sample, _ := reload.Inputs.Property("sample")
	if sample.Type().Kind() != types.KindSampleID {
		t.Fatalf("expected sample id, got %s", sample.Type().Kind())
	}
}

func TestLoadRegistry_ResolvesTriggers(t *testing.T) {
	reg := operator.NewRegistry()
	if err := formdef.LoadRegistry(context.Background(), os.DirFS("testdata"), reg); err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if err := reg.CheckTriggers(); err != nil {
		t.Fatalf("check triggers: %v", err)
	}
}

func TestLoadFS_DuplicateOperatorAcrossFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("operators:\n  dup:\n    inputs:\n      x: string\n")},
		"b.yml":  {Data: []byte("operators:\n  dup: {}\n")},
	}
	_, err := formdef.LoadFS(context.Background(), fsys)
	if err == nil || !strings.Contains(err.Error(), `duplicate operator "dup"`) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestParse_DuplicatePropertyIsDefinitionError(t *testing.T) {
	doc := "operators:\n  op:\n    inputs:\n      x: string\n      x: int\n"
	_, err := formdef.Parse([]byte(doc), "dup.yaml")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), `"x"`) {
		t.Fatalf("expected error naming the property, got %v", err)
	}
}

func TestParse_DefinitionErrorsUnwrap(t *testing.T) {
	doc := "operators:\n  op:\n    inputs:\n      a.b: string\n"
	_, err := formdef.Parse([]byte(doc), "dotted.yaml")
	if !errors.Is(err, types.ErrSchemaDefinition) {
		t.Fatalf("expected definition error, got %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":          "   ",
		"no operators":   "other: 1\n",
		"unknown type":   "operators:\n  op:\n    inputs:\n      x: uuid\n",
		"enum no values": "operators:\n  op:\n    inputs:\n      x:\n        type: enum\n",
		"list no elem":   "operators:\n  op:\n    inputs:\n      x:\n        type: list\n",
		"bad view":       "operators:\n  op:\n    inputs:\n      x:\n        type: string\n        view: {kind: carousel}\n",
		"trigger target": "operators:\n  op:\n    triggers:\n      t: {}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := formdef.Parse([]byte(doc), name+".yaml"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseObject_KeepsOrder(t *testing.T) {
	obj, err := formdef.ParseObject([]byte("b: string\na:\n  type: int\n  required: true\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "a"}, obj.Names()); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}
