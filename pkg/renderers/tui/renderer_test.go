package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-opforms/pkg/operator"
	"github.com/goliatone/go-opforms/pkg/render"
	"github.com/goliatone/go-opforms/pkg/types"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
}

// Input mimics survey by re-asking until the validator accepts a response.
func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	for {
		if s.inputPos >= len(s.inputs) {
			return "", errors.New("no input scripted")
		}
		val := s.inputs[s.inputPos]
		s.inputPos++
		if cfg.Validator != nil {
			if err := cfg.Validator(val); err != nil {
				s.infoMessages = append(s.infoMessages, err.Error())
				continue
			}
		}
		return val, nil
	}
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func decode(t *testing.T, out []byte) map[string]any {
	t.Helper()
	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode output %s: %v", out, err)
	}
	return got
}

func define(t *testing.T, fn func() (*types.Property, error)) {
	t.Helper()
	if _, err := fn(); err != nil {
		t.Fatalf("define: %v", err)
	}
}

func TestRender_StringAndEnum(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"hello"},
		selectIdx: []int{1},
		confirm:   []bool{true},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	inputs := types.NewObject()
	define(t, func() (*types.Property, error) { return inputs.Str("title", types.Required()) })
	define(t, func() (*types.Property, error) { return inputs.Enum("status", []any{"draft", "published"}) })
	define(t, func() (*types.Property, error) { return inputs.Bool("notify") })

	op := operator.Operator{Name: "publish", Label: "Publish", Inputs: inputs}
	out, err := r.Render(context.Background(), op, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	want := map[string]any{"title": "hello", "status": "published", "notify": true}
	if diff := cmp.Diff(want, decode(t, out)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if driver.infoMessages[0] != "Publish" {
		t.Fatalf("expected operator header, got %v", driver.infoMessages)
	}
}

func TestRender_NumberValidation(t *testing.T) {
	driver := &stubDriver{
		inputs: []string{"-1", "2.5", "10"},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	inputs := types.NewObject()
	define(t, func() (*types.Property, error) {
		return inputs.DefineProperty("count", types.NewNumber(types.AsInt(), types.WithMin(0)), types.Required())
	})

	out, err := r.Render(context.Background(), operator.Operator{Name: "count", Inputs: inputs}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := decode(t, out)["count"]; got != 10.0 {
		t.Fatalf("expected count 10, got %v", got)
	}
	// header + two rejected responses
	if len(driver.infoMessages) != 3 {
		t.Fatalf("expected validation messages for invalid inputs, got %v", driver.infoMessages)
	}
}

func TestRender_ChoicesViewAndLists(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{0},
		multiIdx:  [][]int{{0, 2}},
		textAreas: []string{"1\n\n2\n3"},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	split := types.NewRadioGroup(types.ViewConfig{Label: "Split"})
	split.AddChoice("train", types.ViewConfig{Label: "Train"})
	split.AddChoice("val", types.ViewConfig{Label: "Validation"})

	inputs := types.NewObject()
	define(t, func() (*types.Property, error) { return inputs.Str("split", types.WithView(split)) })
	define(t, func() (*types.Property, error) { return inputs.List("fields", types.MustEnum("a", "b", "c")) })
	define(t, func() (*types.Property, error) { return inputs.List("sizes", types.NewNumber(types.AsInt())) })

	out, err := r.Render(context.Background(), operator.Operator{Name: "split", Inputs: inputs}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := map[string]any{
		"split":  "train",
		"fields": []any{"a", "c"},
		"sizes":  []any{1.0, 2.0, 3.0},
	}
	if diff := cmp.Diff(want, decode(t, out)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_NestedObjectsAndObjectLists(t *testing.T) {
	driver := &stubDriver{
		inputs:  []string{"0.5", "cat", "dog"},
		confirm: []bool{true, true, false},
	}
	r, err := New(WithPromptDriver(driver))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	params := types.NewObject()
	define(t, func() (*types.Property, error) { return params.Float("threshold") })
	item := types.NewObject()
	define(t, func() (*types.Property, error) { return item.Str("label", types.Required()) })

	inputs := types.NewObject()
	define(t, func() (*types.Property, error) { return inputs.Obj("params", params) })
	define(t, func() (*types.Property, error) { return inputs.List("classes", item) })

	opts := render.RenderOptions{Errors: map[string][]string{"classes.label": {"Label taken"}}}
	out, err := r.Render(context.Background(), operator.Operator{Name: "classes", Inputs: inputs}, opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := map[string]any{
		"params":  map[string]any{"threshold": 0.5},
		"classes": []any{map[string]any{"label": "cat"}, map[string]any{"label": "dog"}},
	}
	if diff := cmp.Diff(want, decode(t, out)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	taken := 0
	for _, msg := range driver.infoMessages {
		if strings.Contains(msg, "Label taken") {
			taken++
		}
	}
	if taken != 2 {
		t.Fatalf("expected item error shown for each item, got %v", driver.infoMessages)
	}
}

func TestRender_DisplayViewsAreNotPrompted(t *testing.T) {
	driver := &stubDriver{}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	inputs := types.NewObject()
	define(t, func() (*types.Property, error) {
		return inputs.Str("notice", types.WithView(types.NewNotice(types.ViewConfig{Label: "Heads up"})))
	})
	define(t, func() (*types.Property, error) {
		return inputs.Str("warning", types.WithView(types.NewWarning(types.ViewConfig{Label: "Careful", Description: "Slow"})))
	})
	define(t, func() (*types.Property, error) {
		return inputs.Str("go", types.WithView(types.NewButton(types.ViewConfig{Label: "Go"})))
	})

	out, err := r.Render(context.Background(), operator.Operator{Name: "info", Inputs: inputs}, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no values, got %q", out)
	}
	want := []string{"info", "Heads up", "! Careful: Slow"}
	if diff := cmp.Diff(want, driver.infoMessages); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if r.ContentType() != "text/plain" {
		t.Fatalf("unexpected content type %s", r.ContentType())
	}
}

func TestRender_PrefillAndFormOutput(t *testing.T) {
	driver := &stubDriver{inputs: []string{"x"}}
	r, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded),
		WithSubmitTransformer(func(values map[string]any) (map[string]any, error) {
			values["extra"] = "1"
			return values, nil
		}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	inputs := types.NewObject()
	define(t, func() (*types.Property, error) { return inputs.Str("name") })

	out, err := r.Render(context.Background(), operator.Operator{Name: "n", Inputs: inputs},
		render.RenderOptions{FormErrors: []string{"Try again"}, Values: map[string]any{"name": "prev"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "extra=1&name=x" {
		t.Fatalf("unexpected form output %q", out)
	}
	if driver.infoMessages[1] != "x Try again" {
		t.Fatalf("expected form error, got %v", driver.infoMessages)
	}
}

func TestRender_DynamicFormNeedsResolution(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	_, err = r.Render(context.Background(), operator.Operator{Name: "dyn", Dynamic: true}, render.RenderOptions{})
	if !errors.Is(err, ErrNeedsResolution) {
		t.Fatalf("expected ErrNeedsResolution, got %v", err)
	}
}

func TestRender_DriverErrorsPropagate(t *testing.T) {
	r, err := New(WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	inputs := types.NewObject()
	define(t, func() (*types.Property, error) { return inputs.Str("name") })

	if _, err := r.Render(context.Background(), operator.Operator{Name: "n", Inputs: inputs}, render.RenderOptions{}); err == nil {
		t.Fatalf("expected driver error")
	}
}
