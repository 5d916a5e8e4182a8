package ir

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const lightingTOML = `
name = "lighting"
stage = "fragment"

[options]
origin = "lower-left"
pixel-center-integer = true

[[enum]]
name = "Mode"
underlying = "ushort"

[[struct]]
name = "Light"
[[struct.field]]
name = "color"
type = "vec4"
[[struct.field]]
name = "mode"
type = "Mode"

[[field]]
name = "normal"
type = "vec3"
[field.layout]
direction = "in"
location = 1

[[field]]
name = "fragColor"
type = "vec4"
[field.layout]
direction = "out"

[[field]]
name = "lights"
type = "Light[4]"
[field.layout]
binding = 2
descriptor-set = 1

[[field]]
name = "scratch"
type = "float"

[[method]]
name = "main"
locals = ["intensity: float", "vec3"]
body = [
  "load_field fragColor",
  "load_field lights",
  "access 0",
  "access 0",
  "deref",
  "push_float 0.5",
  "mul",
  "store",
  "return",
]

[[method]]
name = "brightness"
returns = "float"
body = ["push_float 1.25", "return"]
`

func TestDecodeTOML(t *testing.T) {
	program, err := DecodeTOML([]byte(lightingTOML))
	if err != nil {
		t.Fatalf("DecodeTOML failed: %v", err)
	}

	if program.Name != "lighting" || program.Stage != StageFragment {
		t.Errorf("program = %q (%s)", program.Name, program.Stage)
	}
	if program.Options.Origin != OriginLowerLeft || !program.Options.PixelCenterInteger {
		t.Errorf("options = %+v", program.Options)
	}

	if len(program.Fields) != 4 {
		t.Fatalf("got %d fields, want 4", len(program.Fields))
	}

	normal := program.Fields[0]
	if normal.Layout == nil || normal.Layout.Direction != DirectionInput || normal.Layout.Location != 1 {
		t.Errorf("normal layout = %+v", normal.Layout)
	}
	if normal.Layout.Binding != nil || normal.Layout.SpecID != nil {
		t.Error("unset binding and spec-id should stay nil")
	}

	lights := program.Fields[2]
	if lights.Layout.Binding == nil || *lights.Layout.Binding != 2 || lights.Layout.DescriptorSet != 1 {
		t.Errorf("lights layout = %+v", lights.Layout)
	}
	if got := Signature(lights.Type); got != "array<struct Light{color:vec4;mode:u16},4>" {
		t.Errorf("lights type = %s", got)
	}

	if program.Fields[3].Layout != nil {
		t.Error("a field without a layout table should have a nil layout")
	}

	if len(program.Methods) != 2 {
		t.Fatalf("got %d methods, want 2", len(program.Methods))
	}
	main := program.Methods[0]
	if main.Result != nil {
		t.Errorf("main result = %#v, want nil", main.Result)
	}
	if len(main.Locals) != 2 || main.Locals[0].Name != "intensity" || main.Locals[1].Name != "" {
		t.Errorf("locals = %+v", main.Locals)
	}
	wantBody := []Operation{
		LoadField{Field: 1},
		LoadField{Field: 2},
		Access{Index: 0},
		Access{Index: 0},
		Deref{},
		PushFloat{Value: 0.5},
		Binary{Op: BinaryMultiply},
		Store{},
		Return{},
	}
	if len(main.Body) != len(wantBody) {
		t.Fatalf("body has %d operations, want %d", len(main.Body), len(wantBody))
	}
	for i := range wantBody {
		if main.Body[i] != wantBody[i] {
			t.Errorf("operation %d = %#v, want %#v", i, main.Body[i], wantBody[i])
		}
	}

	if got := Signature(program.Methods[1].Result); got != "f32" {
		t.Errorf("brightness result = %s, want f32", got)
	}

	if errs, err := Validate(program); err != nil || len(errs) != 0 {
		t.Errorf("decoded program does not validate: %v %v", errs, err)
	}
}

func TestDecodeTOML_UnknownDirection(t *testing.T) {
	src := `
stage = "vertex"
[[field]]
name = "odd"
type = "float"
[field.layout]
direction = "sideways"
[[method]]
name = "main"
`
	program, err := DecodeTOML([]byte(src))
	if err != nil {
		t.Fatalf("DecodeTOML failed: %v", err)
	}
	if d := program.Fields[0].Layout.Direction; d.String() != "unknown" {
		t.Errorf("direction = %s, want unknown", d)
	}
}

func TestDecodeTOML_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad stage", `stage = "pixel"`, `unknown stage "pixel"`},
		{"bad type", "stage = \"vertex\"\n[[field]]\nname = \"a\"\ntype = \"vec5\"", `unknown type "vec5"`},
		{"bad array", "stage = \"vertex\"\n[[field]]\nname = \"a\"\ntype = \"float[x]\"", `array length "x"`},
		{"bad builtin", "stage = \"vertex\"\n[[field]]\nname = \"a\"\ntype = \"vec4\"\n[field.layout]\nbuiltin = \"nose\"", `unknown builtin "nose"`},
		{"bad operation", "stage = \"vertex\"\n[[method]]\nname = \"main\"\nbody = [\"jump 3\"]", `unknown operation "jump"`},
		{"bad arity", "stage = \"vertex\"\n[[method]]\nname = \"main\"\nbody = [\"extract\"]", "extract takes 1 argument(s), got 0"},
		{"enum over float", "stage = \"vertex\"\n[[enum]]\nname = \"E\"\nunderlying = \"float\"", "is not an integer"},
		{"too many dimensions", "stage = \"compute\"\n[options]\nworkgroup = [1, 2, 3, 4]", "at most 3 allowed"},
		{"malformed toml", "stage = ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTOML([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	d := &decoder{named: map[string]Type{}}
	tests := []struct {
		in   string
		want string
	}{
		{"byte", "u8"},
		{"sbyte", "i8"},
		{"char", "u8"},
		{"int", "i32"},
		{"ulong", "u64"},
		{"double", "f64"},
		{"decimal", "f128"},
		{"sampler2d", "sampled_image2d"},
		{"vec2[3]", "array<vec2,3>"},
		{"float[]", "array<f32,0>"},
		{"mat4[2][3]", "array<array<mat4,2>,3>"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			typ, err := d.parseType(tt.in)
			if err != nil {
				t.Fatalf("parseType failed: %v", err)
			}
			if got := Signature(typ); got != tt.want {
				t.Errorf("parseType(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lighting.toml")
	if err := os.WriteFile(path, []byte(lightingTOML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	program, err := LoadTOML(path)
	if err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}
	if program.Name != "lighting" {
		t.Errorf("name = %q, want lighting", program.Name)
	}

	if _, err := LoadTOML(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
