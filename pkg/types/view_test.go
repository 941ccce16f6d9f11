package types_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-opforms/pkg/types"
)

func TestChoices_ValuesKeepInsertionOrder(t *testing.T) {
	choices := types.NewChoices(types.ViewConfig{})
	choices.AddChoice("A", types.ViewConfig{})
	choices.AddChoice("B", types.ViewConfig{})

	if diff := cmp.Diff([]any{"A", "B"}, choices.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestChoices_CloneIsIndependent(t *testing.T) {
	space := 2
	source := types.NewRadioGroup(types.ViewConfig{Label: "Mode", Space: &space})
	source.AddChoice("fast", types.ViewConfig{Label: "Fast"})

	clone := source.Clone().(*types.Choices)
	if diff := cmp.Diff(source.Descriptor(), clone.Descriptor()); diff != "" {
		t.Fatalf("clone differs from source (-source +clone):\n%s", diff)
	}
	if clone.Kind() != types.ViewKindRadioGroup {
		t.Fatalf("clone kind changed to %s", clone.Kind())
	}

	clone.AddChoice("slow", types.ViewConfig{})
	if got := len(source.Choices()); got != 1 {
		t.Fatalf("source gained choices: %d", got)
	}
	if source.Choices()[0] == clone.Choices()[0] {
		t.Fatalf("choices must be deep-cloned")
	}
}

func TestChoices_SeedChoicesAreCopied(t *testing.T) {
	seed := types.NewChoice("x", types.ViewConfig{Label: "X"})
	dropdown := types.NewDropdown(types.ViewConfig{}, seed, nil)

	if len(dropdown.Choices()) != 1 {
		t.Fatalf("expected nil seeds to be skipped")
	}
	if dropdown.Choices()[0] == seed {
		t.Fatalf("seed choice must be copied")
	}
}

func TestChoices_DescriptorReportsChoicesName(t *testing.T) {
	for _, view := range []*types.Choices{
		types.NewChoices(types.ViewConfig{}),
		types.NewRadioGroup(types.ViewConfig{}),
		types.NewDropdown(types.ViewConfig{}),
	} {
		d := view.Descriptor()
		if d.Name() != "Choices" {
			t.Fatalf("%s: expected wire name Choices, got %q", view.Kind(), d.Name())
		}
	}
}

func TestChoices_Descriptor(t *testing.T) {
	dropdown := types.NewDropdown(types.ViewConfig{Label: "Split", Description: "Dataset split"})
	dropdown.AddChoice("train", types.ViewConfig{Label: "Train"})

	want := types.Descriptor{
		"name":        "Choices",
		"label":       "Split",
		"description": "Dataset split",
		"caption":     nil,
		"space":       nil,
		"choices": []types.Descriptor{
			{
				"name":        "Choice",
				"label":       "Train",
				"description": nil,
				"caption":     nil,
				"space":       nil,
				"value":       "train",
			},
		},
	}
	if diff := cmp.Diff(want, dropdown.Descriptor()); diff != "" {
		t.Fatalf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestBasicViews_CloneAndDescriptor(t *testing.T) {
	space := 6
	cfg := types.ViewConfig{Label: "L", Description: "D", Caption: "C", Space: &space}
	cases := map[types.ViewKind]*types.BasicView{
		types.ViewKindView:    types.NewView(cfg),
		types.ViewKindNotice:  types.NewNotice(cfg),
		types.ViewKindHeader:  types.NewHeader(cfg),
		types.ViewKindWarning: types.NewWarning(cfg),
		types.ViewKindButton:  types.NewButton(cfg),
	}
	space = 99

	for kind, view := range cases {
		want := types.Descriptor{
			"name":        string(kind),
			"label":       "L",
			"description": "D",
			"caption":     "C",
			"space":       6,
		}
		if diff := cmp.Diff(want, view.Descriptor()); diff != "" {
			t.Fatalf("%s descriptor mismatch (-want +got):\n%s", kind, diff)
		}
		clone := view.Clone()
		if clone == types.View(view) {
			t.Fatalf("%s clone returned the same node", kind)
		}
		if diff := cmp.Diff(view.Descriptor(), clone.Descriptor()); diff != "" {
			t.Fatalf("%s clone mismatch (-want +got):\n%s", kind, diff)
		}
		if got := clone.Config(); got.Label != "L" || got.Space == nil || *got.Space != 6 {
			t.Fatalf("%s config snapshot lost: %+v", kind, got)
		}
	}
}

func TestChoice_CloneKeepsValue(t *testing.T) {
	choice := types.NewChoice(3, types.ViewConfig{Label: "Three"})
	clone := choice.Clone().(*types.Choice)
	if clone.Value() != 3 || clone.Label() != "Three" {
		t.Fatalf("unexpected clone: %+v", clone.Descriptor())
	}
}
