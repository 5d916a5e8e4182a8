package ir

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml"
)

// tomlProgram represents a program description as it is encoded in TOML.
type tomlProgram struct {
	Name    string        `toml:"name"`
	Stage   string        `toml:"stage"`
	Options *tomlOptions  `toml:"options"`
	Enums   []*tomlEnum   `toml:"enum"`
	Structs []*tomlStruct `toml:"struct"`
	Fields  []*tomlField  `toml:"field"`
	Methods []*tomlMethod `toml:"method"`
}

// tomlOptions represents the stage-level qualifiers.
type tomlOptions struct {
	Origin             string  `toml:"origin"`
	PixelCenterInteger bool    `toml:"pixel-center-integer"`
	EarlyFragmentTests bool    `toml:"early-fragment-tests"`
	InputPrimitive     string  `toml:"input-primitive"`
	OutputPrimitive    string  `toml:"output-primitive"`
	MaxVertices        int64   `toml:"max-vertices"`
	PatchVertices      int64   `toml:"patch-vertices"`
	Workgroup          []int64 `toml:"workgroup"`
}

type tomlEnum struct {
	Name       string `toml:"name"`
	Underlying string `toml:"underlying"`
}

type tomlStruct struct {
	Name   string             `toml:"name"`
	Fields []*tomlStructField `toml:"field"`
}

type tomlStructField struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

type tomlField struct {
	Name   string      `toml:"name"`
	Type   string      `toml:"type"`
	Layout *tomlLayout `toml:"layout"`
}

// tomlLayout uses -1 for unset optional indices.
type tomlLayout struct {
	Location      int64  `toml:"location"`
	Binding       int64  `toml:"binding" default:"-1"`
	DescriptorSet int64  `toml:"descriptor-set"`
	Align         int64  `toml:"align" default:"-1"`
	Offset        int64  `toml:"offset" default:"-1"`
	PushConstant  bool   `toml:"push-constant"`
	Builtin       string `toml:"builtin"`
	SpecID        int64  `toml:"spec-id" default:"-1"`
	Direction     string `toml:"direction"`
}

type tomlMethod struct {
	Name    string   `toml:"name"`
	Returns string   `toml:"returns"`
	Locals  []string `toml:"locals"`
	Body    []string `toml:"body"`
}

// LoadTOML reads and decodes the program description at path.
func LoadTOML(path string) (*Program, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeTOML(buff)
}

// DecodeTOML decodes a program description from TOML.
func DecodeTOML(data []byte) (*Program, error) {
	tp := &tomlProgram{}
	if err := toml.Unmarshal(data, tp); err != nil {
		return nil, err
	}

	d := &decoder{named: make(map[string]Type)}
	return d.program(tp)
}

// decoder holds the named types declared so far.
type decoder struct {
	named map[string]Type
}

func (d *decoder) program(tp *tomlProgram) (*Program, error) {
	stage, err := parseStage(tp.Stage)
	if err != nil {
		return nil, err
	}

	program := &Program{Name: tp.Name, Stage: stage}
	if tp.Options != nil {
		if program.Options, err = parseOptions(tp.Options); err != nil {
			return nil, err
		}
	}

	for _, te := range tp.Enums {
		underlying, err := d.parseType(te.Underlying)
		if err != nil {
			return nil, fmt.Errorf("enum %s: %w", te.Name, err)
		}
		it, ok := underlying.(Int)
		if !ok {
			return nil, fmt.Errorf("enum %s: underlying type %q is not an integer", te.Name, te.Underlying)
		}
		if err := d.declare(te.Name, Enum{Name: te.Name, Underlying: it}); err != nil {
			return nil, err
		}
	}

	for _, ts := range tp.Structs {
		st := Struct{Name: ts.Name, Fields: make([]StructField, 0, len(ts.Fields))}
		for _, tf := range ts.Fields {
			ft, err := d.parseType(tf.Type)
			if err != nil {
				return nil, fmt.Errorf("struct %s, field %s: %w", ts.Name, tf.Name, err)
			}
			st.Fields = append(st.Fields, StructField{Name: tf.Name, Type: ft})
		}
		if err := d.declare(ts.Name, st); err != nil {
			return nil, err
		}
	}

	fieldIndex := make(map[string]int, len(tp.Fields))
	for i, tf := range tp.Fields {
		ft, err := d.parseType(tf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", tf.Name, err)
		}
		field := Field{Name: tf.Name, Type: ft}
		if tf.Layout != nil {
			if field.Layout, err = parseLayout(tf.Layout); err != nil {
				return nil, fmt.Errorf("field %s: %w", tf.Name, err)
			}
		}
		program.Fields = append(program.Fields, field)
		fieldIndex[tf.Name] = i
	}

	for _, tm := range tp.Methods {
		method, err := d.method(tm, fieldIndex)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", tm.Name, err)
		}
		program.Methods = append(program.Methods, method)
	}

	return program, nil
}

func (d *decoder) declare(name string, t Type) error {
	if name == "" {
		return fmt.Errorf("type declaration without a name")
	}
	if _, ok := d.named[name]; ok {
		return fmt.Errorf("type %s declared twice", name)
	}
	d.named[name] = t
	return nil
}

func (d *decoder) method(tm *tomlMethod, fieldIndex map[string]int) (Method, error) {
	method := Method{Name: tm.Name}
	if tm.Returns != "" && tm.Returns != "void" {
		result, err := d.parseType(tm.Returns)
		if err != nil {
			return Method{}, err
		}
		method.Result = result
	}

	for _, local := range tm.Locals {
		name, typ := "", local
		if i := strings.IndexByte(local, ':'); i >= 0 {
			name, typ = strings.TrimSpace(local[:i]), local[i+1:]
		}
		lt, err := d.parseType(typ)
		if err != nil {
			return Method{}, err
		}
		method.Locals = append(method.Locals, Local{Name: name, Type: lt})
	}

	for i, line := range tm.Body {
		op, err := d.parseOperation(line, fieldIndex)
		if err != nil {
			return Method{}, fmt.Errorf("operation %d (%q): %w", i, line, err)
		}
		method.Body = append(method.Body, op)
	}
	return method, nil
}

// parseType parses a type expression: a scalar, vector or matrix name, a
// declared enum or struct name, or T[N] for arrays (T[] leaves the length
// unresolved).
//
//nolint:gocyclo,cyclop // Type name dispatch
func (d *decoder) parseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "]") {
		open := strings.LastIndexByte(s, '[')
		if open <= 0 {
			return nil, fmt.Errorf("malformed array type %q", s)
		}
		elem, err := d.parseType(s[:open])
		if err != nil {
			return nil, err
		}
		var length uint32
		if inner := strings.TrimSpace(s[open+1 : len(s)-1]); inner != "" {
			n, err := strconv.ParseUint(inner, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("array length %q: %w", inner, err)
			}
			length = uint32(n)
		}
		return Array{Elem: elem, Len: length}, nil
	}

	switch s {
	case "bool":
		return Bool{}, nil
	case "byte", "uint8":
		return Int{Width: 8}, nil
	case "sbyte", "int8":
		return Int{Width: 8, Signed: true}, nil
	case "char":
		return Char{}, nil
	case "short", "int16":
		return Int{Width: 16, Signed: true}, nil
	case "ushort", "uint16":
		return Int{Width: 16}, nil
	case "int", "int32":
		return Int{Width: 32, Signed: true}, nil
	case "uint", "uint32":
		return Int{Width: 32}, nil
	case "long", "int64":
		return Int{Width: 64, Signed: true}, nil
	case "ulong", "uint64":
		return Int{Width: 64}, nil
	case "float", "float32":
		return Float{Width: 32}, nil
	case "double", "float64":
		return Float{Width: 64}, nil
	case "decimal":
		return Float{Width: 128}, nil
	case "void":
		return Void{}, nil
	case "vec2":
		return Vector{Count: 2}, nil
	case "vec3":
		return Vector{Count: 3}, nil
	case "vec4":
		return Vector{Count: 4}, nil
	case "mat4":
		return Matrix4{}, nil
	case "sampler2d":
		return SampledImage2D{}, nil
	case "string":
		return String{}, nil
	case "datetime":
		return DateTime{}, nil
	case "null":
		return Null{}, nil
	}

	if t, ok := d.named[s]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("unknown type %q", s)
}

//nolint:gocyclo,cyclop // Operation mnemonic dispatch
func (d *decoder) parseOperation(line string, fieldIndex map[string]int) (Operation, error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return nil, fmt.Errorf("empty operation")
	}
	args := words[1:]
	wantArgs := func(n int) error {
		if len(args) != n {
			return fmt.Errorf("%s takes %d argument(s), got %d", words[0], n, len(args))
		}
		return nil
	}
	field := func() (int, error) {
		if err := wantArgs(1); err != nil {
			return 0, err
		}
		if i, ok := fieldIndex[args[0]]; ok {
			return i, nil
		}
		return strconv.Atoi(args[0])
	}
	index := func(arg string) (uint32, error) {
		n, err := strconv.ParseUint(arg, 10, 32)
		return uint32(n), err
	}

	switch words[0] {
	case "load_field":
		i, err := field()
		return LoadField{Field: i}, err
	case "store_field":
		i, err := field()
		return StoreField{Field: i}, err
	case "load_local":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		i, err := strconv.Atoi(args[0])
		return LoadLocal{Local: i}, err
	case "store_local":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		i, err := strconv.Atoi(args[0])
		return StoreLocal{Local: i}, err
	case "store":
		return Store{}, wantArgs(0)
	case "deref":
		return Deref{}, wantArgs(0)
	case "push_uint":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		v, err := index(args[0])
		return PushUint{Value: v}, err
	case "push_float":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(args[0], 32)
		return PushFloat{Value: float32(v)}, err
	case "extract":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		i, err := index(args[0])
		return Extract{Index: i}, err
	case "extract2":
		if err := wantArgs(2); err != nil {
			return nil, err
		}
		row, err := index(args[0])
		if err != nil {
			return nil, err
		}
		col, err := index(args[1])
		return Extract2{Row: row, Col: col}, err
	case "access":
		if err := wantArgs(1); err != nil {
			return nil, err
		}
		i, err := index(args[0])
		return Access{Index: i}, err
	case "construct":
		if err := wantArgs(2); err != nil {
			return nil, err
		}
		t, err := d.parseType(args[0])
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(args[1])
		return Construct{Type: t, Count: n}, err
	case "sin":
		return Math{Fun: MathSin}, wantArgs(0)
	case "cos":
		return Math{Fun: MathCos}, wantArgs(0)
	case "inversesqrt":
		return Math{Fun: MathInverseSqrt}, wantArgs(0)
	case "narrow_vec4":
		return NarrowVec4{}, wantArgs(0)
	case "narrow_mat4":
		return NarrowMat4{}, wantArgs(0)
	case "add":
		return Binary{Op: BinaryAdd}, wantArgs(0)
	case "sub":
		return Binary{Op: BinarySubtract}, wantArgs(0)
	case "mul":
		return Binary{Op: BinaryMultiply}, wantArgs(0)
	case "div":
		return Binary{Op: BinaryDivide}, wantArgs(0)
	case "dup":
		return Dup{}, wantArgs(0)
	case "pop":
		return Pop{}, wantArgs(0)
	case "return":
		return Return{}, wantArgs(0)
	default:
		return nil, fmt.Errorf("unknown operation %q", words[0])
	}
}

func parseStage(s string) (Stage, error) {
	switch s {
	case "vertex":
		return StageVertex, nil
	case "fragment":
		return StageFragment, nil
	case "geometry":
		return StageGeometry, nil
	case "tessellation":
		return StageTessellation, nil
	case "compute", "kernel":
		return StageCompute, nil
	default:
		return 0, fmt.Errorf("unknown stage %q", s)
	}
}

func parseOptions(to *tomlOptions) (StageOptions, error) {
	var opts StageOptions
	switch to.Origin {
	case "", "upper-left":
		opts.Origin = OriginUpperLeft
	case "lower-left":
		opts.Origin = OriginLowerLeft
	default:
		return opts, fmt.Errorf("unknown origin %q", to.Origin)
	}
	opts.PixelCenterInteger = to.PixelCenterInteger
	opts.EarlyFragmentTests = to.EarlyFragmentTests

	switch to.InputPrimitive {
	case "", "points":
		opts.InputPrimitive = InputPoints
	case "lines":
		opts.InputPrimitive = InputLines
	case "lines-adjacency":
		opts.InputPrimitive = InputLinesAdjacency
	case "triangles":
		opts.InputPrimitive = InputTriangles
	case "triangles-adjacency":
		opts.InputPrimitive = InputTrianglesAdjacency
	default:
		return opts, fmt.Errorf("unknown input primitive %q", to.InputPrimitive)
	}

	switch to.OutputPrimitive {
	case "", "points":
		opts.OutputPrimitive = OutputPoints
	case "line-strip":
		opts.OutputPrimitive = OutputLineStrip
	case "triangle-strip":
		opts.OutputPrimitive = OutputTriangleStrip
	default:
		return opts, fmt.Errorf("unknown output primitive %q", to.OutputPrimitive)
	}

	if to.MaxVertices < 0 || to.PatchVertices < 0 {
		return opts, fmt.Errorf("vertex counts must not be negative")
	}
	opts.MaxVertices = uint32(to.MaxVertices)
	opts.PatchVertices = uint32(to.PatchVertices)

	if len(to.Workgroup) > 3 {
		return opts, fmt.Errorf("workgroup has %d dimensions, at most 3 allowed", len(to.Workgroup))
	}
	for i, n := range to.Workgroup {
		if n < 0 {
			return opts, fmt.Errorf("workgroup dimension %d is negative", i)
		}
		opts.Workgroup[i] = uint32(n)
	}
	return opts, nil
}

func parseLayout(tl *tomlLayout) (*Layout, error) {
	layout := &Layout{PushConstant: tl.PushConstant}

	if tl.Location < 0 || tl.DescriptorSet < 0 {
		return nil, fmt.Errorf("location and descriptor-set must not be negative")
	}
	layout.Location = uint32(tl.Location)
	layout.DescriptorSet = uint32(tl.DescriptorSet)
	layout.Binding = optionalIndex(tl.Binding)
	layout.Align = optionalIndex(tl.Align)
	layout.Offset = optionalIndex(tl.Offset)
	layout.SpecID = optionalIndex(tl.SpecID)

	builtin, err := parseBuiltin(tl.Builtin)
	if err != nil {
		return nil, err
	}
	layout.Builtin = builtin

	switch tl.Direction {
	case "", "private":
		layout.Direction = DirectionPrivate
	case "input", "in":
		layout.Direction = DirectionInput
	case "output", "out":
		layout.Direction = DirectionOutput
	default:
		// Left for the compiler to report; it falls back to private storage.
		layout.Direction = Direction(0xFF)
	}
	return layout, nil
}

func optionalIndex(v int64) *uint32 {
	if v < 0 {
		return nil
	}
	u := uint32(v)
	return &u
}

var builtinNames = map[string]Builtin{
	"":                       BuiltinNone,
	"position":               BuiltinPosition,
	"point-size":             BuiltinPointSize,
	"clip-distance":          BuiltinClipDistance,
	"cull-distance":          BuiltinCullDistance,
	"vertex-index":           BuiltinVertexIndex,
	"instance-index":         BuiltinInstanceIndex,
	"primitive-id":           BuiltinPrimitiveID,
	"invocation-id":          BuiltinInvocationID,
	"layer":                  BuiltinLayer,
	"viewport-index":         BuiltinViewportIndex,
	"tess-level-outer":       BuiltinTessLevelOuter,
	"tess-level-inner":       BuiltinTessLevelInner,
	"tess-coord":             BuiltinTessCoord,
	"patch-vertices":         BuiltinPatchVertices,
	"frag-coord":             BuiltinFragCoord,
	"point-coord":            BuiltinPointCoord,
	"front-facing":           BuiltinFrontFacing,
	"sample-id":              BuiltinSampleID,
	"sample-position":        BuiltinSamplePosition,
	"sample-mask":            BuiltinSampleMask,
	"frag-depth":             BuiltinFragDepth,
	"helper-invocation":      BuiltinHelperInvocation,
	"num-workgroups":         BuiltinNumWorkgroups,
	"workgroup-size":         BuiltinWorkgroupSize,
	"workgroup-id":           BuiltinWorkgroupID,
	"local-invocation-id":    BuiltinLocalInvocationID,
	"global-invocation-id":   BuiltinGlobalInvocationID,
	"local-invocation-index": BuiltinLocalInvocationIndex,
}

func parseBuiltin(s string) (Builtin, error) {
	if b, ok := builtinNames[s]; ok {
		return b, nil
	}
	return BuiltinNone, fmt.Errorf("unknown builtin %q", s)
}
