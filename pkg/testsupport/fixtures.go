// Package testsupport holds fixture and golden-file helpers shared by the
// package tests.
package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-opforms/pkg/formdef"
	"github.com/goliatone/go-opforms/pkg/operator"
)

// UpdateEnv is the environment variable that rewrites goldens instead of
// comparing against them.
const UpdateEnv = "UPDATE_GOLDENS"

// LoadOperators loads every definition file under dir.
func LoadOperators(t *testing.T, dir string) []operator.Operator {
	t.Helper()

	ops, err := formdef.LoadFS(context.Background(), os.DirFS(dir))
	if err != nil {
		t.Fatalf("load definitions: %v", err)
	}
	return ops
}

// MustOperator loads dir and returns the operator named name.
func MustOperator(t *testing.T, dir, name string) operator.Operator {
	t.Helper()

	for _, op := range LoadOperators(t, dir) {
		if op.Name == name {
			return op
		}
	}
	t.Fatalf("operator %q not found in %s", name, dir)
	return operator.Operator{}
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv(UpdateEnv) == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// AssertJSONGolden compares got with the golden JSON at path after decoding
// both, so formatting differences do not matter.
func AssertJSONGolden(t *testing.T, path string, got []byte) {
	t.Helper()
	if WriteMaybeGolden(t, path, got) {
		return
	}

	var want, have any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	if err := json.Unmarshal(got, &have); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if diff := cmp.Diff(want, have); diff != "" {
		t.Fatalf("golden %s mismatch (-want +got):\n%s", path, diff)
	}
}
