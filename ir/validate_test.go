package ir

import (
	"strings"
	"testing"
)

func TestValidate_ValidProgram(t *testing.T) {
	program := &Program{
		Stage: StageFragment,
		Fields: []Field{
			{Name: "color", Type: TypeVec4, Layout: &Layout{Direction: DirectionOutput}},
		},
		Methods: []Method{
			{
				Name:   "main",
				Locals: []Local{{Type: TypeVec4}},
				Body: []Operation{
					LoadField{Field: 0},
					LoadLocal{Local: 0},
					Deref{},
					Store{},
				},
			},
		},
	}

	errors, err := Validate(program)
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	for _, e := range errors {
		t.Errorf("unexpected validation error: %s", e.Error())
	}
}

func TestValidate_NilProgram(t *testing.T) {
	_, err := Validate(nil)
	if err == nil {
		t.Error("Expected error for nil program, got nil")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		program *Program
		want    string
	}{
		{
			name:    "missing entry point",
			program: &Program{Methods: []Method{{Name: "helper"}}},
			want:    `no "main" method`,
		},
		{
			name: "duplicate field",
			program: &Program{
				Fields:  []Field{{Name: "a", Type: TypeFloat32}, {Name: "a", Type: TypeFloat32}},
				Methods: []Method{{Name: "main"}},
			},
			want: `duplicate field "a"`,
		},
		{
			name: "untyped field",
			program: &Program{
				Fields:  []Field{{Name: "a"}},
				Methods: []Method{{Name: "main"}},
			},
			want: `field "a" has no type`,
		},
		{
			name:    "duplicate method",
			program: &Program{Methods: []Method{{Name: "main"}, {Name: "main"}}},
			want:    `duplicate method "main"`,
		},
		{
			name: "field out of range",
			program: &Program{Methods: []Method{{
				Name: "main",
				Body: []Operation{StoreField{Field: 2}},
			}}},
			want: "in method main, operation 0: field index 2 out of range",
		},
		{
			name: "local out of range",
			program: &Program{Methods: []Method{{
				Name: "main",
				Body: []Operation{PushUint{Value: 1}, StoreLocal{Local: 0}},
			}}},
			want: "in method main, operation 1: local index 0 out of range",
		},
		{
			name: "empty construct",
			program: &Program{Methods: []Method{{
				Name: "main",
				Body: []Operation{Construct{Type: TypeVec2}},
			}}},
			want: "construct of 0 components",
		},
		{
			name: "nil operation",
			program: &Program{Methods: []Method{{
				Name: "main",
				Body: []Operation{nil},
			}}},
			want: "nil operation",
		},
		{
			name: "untyped local",
			program: &Program{Methods: []Method{{
				Name:   "main",
				Locals: []Local{{Name: "tmp"}},
			}}},
			want: "in method main: local 0 has no type",
		},
		{
			name:    "unknown stage",
			program: &Program{Stage: Stage(9), Methods: []Method{{Name: "main"}}},
			want:    "unknown stage 9",
		},
		{
			name:    "geometry without max vertices",
			program: &Program{Stage: StageGeometry, Methods: []Method{{Name: "main"}}},
			want:    "declares no max vertices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors, err := Validate(tt.program)
			if err != nil {
				t.Fatalf("Validate returned error: %v", err)
			}
			for _, e := range errors {
				if strings.Contains(e.Error(), tt.want) {
					return
				}
			}
			t.Errorf("no error containing %q in %v", tt.want, errors)
		})
	}
}
