package operator_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/types"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	reg := operator.NewRegistry()
	inputs := types.NewObject()
	if _, err := inputs.Str("path", types.Required()); err != nil {
		t.Fatalf("define: %v", err)
	}

	reg.MustRegister(operator.Operator{Name: " export ", Inputs: inputs})
	reg.MustRegister(operator.Operator{
		Name: "reload",
		Triggers: map[string]*types.Trigger{
			"on_success": types.NewTrigger("export", map[string]any{"path": "/tmp"}),
		},
	})

	if diff := cmp.Diff([]string{"export", "reload"}, reg.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	op, err := reg.Resolve(types.NewTrigger("export", nil))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if op.Inputs != inputs || op.Outputs == nil {
		t.Fatalf("unexpected operator forms: %+v", op)
	}
	if err := reg.CheckTriggers(); err != nil {
		t.Fatalf("check triggers: %v", err)
	}

	if err := reg.Register(operator.Operator{Name: "export"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
	if err := reg.Register(operator.Operator{Name: "  "}); err == nil {
		t.Fatalf("expected missing name error")
	}
}

func TestRegistry_UnknownTriggerTarget(t *testing.T) {
	reg := operator.NewRegistry()
	reg.MustRegister(operator.Operator{
		Name: "a",
		Triggers: map[string]*types.Trigger{
			"next": types.NewTrigger("missing", nil),
		},
	})

	err := reg.CheckTriggers()
	if err == nil || !strings.Contains(err.Error(), `unknown operator "missing"`) {
		t.Fatalf("expected unknown operator error, got %v", err)
	}
	if _, err := reg.Resolve(types.NewTrigger("missing", nil)); err == nil {
		t.Fatalf("expected resolve error")
	}
}

func TestOperator_DynamicMarksInputs(t *testing.T) {
	op := operator.Operator{Name: "dyn", Dynamic: true}
	if err := op.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !op.Inputs.Dynamic() {
		t.Fatalf("expected inputs marked dynamic")
	}

	d := op.Descriptor()
	inputs := d["inputs"].(types.Descriptor)
	if inputs["needsResolution"] != true {
		t.Fatalf("expected needsResolution in inputs descriptor")
	}
	if d["label"] != nil {
		t.Fatalf("expected null label, got %v", d["label"])
	}
}
