package ir

// Program is one shader stage ready for compilation.
type Program struct {
	// Name is informational only.
	Name string

	Stage   Stage
	Options StageOptions

	// Fields holds the global declarations in declaration order.
	Fields []Field

	// Methods holds the method declarations in declaration order.
	// The method named EntryPointName becomes the stage entry point.
	Methods []Method
}

// EntryPointName is the method name registered as the stage entry point.
const EntryPointName = "main"

// Stage represents the shader stage kind.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
	StageGeometry
	StageTessellation
	StageCompute
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageGeometry:
		return "geometry"
	case StageTessellation:
		return "tessellation"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// StageOptions carries the stage-level layout qualifiers.
type StageOptions struct {
	// Origin selects the fragment coordinate origin.
	Origin Origin

	// PixelCenterInteger shifts fragment coordinates to integer pixel centers.
	PixelCenterInteger bool

	// EarlyFragmentTests forces depth and stencil tests before fragment execution.
	EarlyFragmentTests bool

	// Geometry primitives and vertex budget.
	InputPrimitive  InputPrimitive
	OutputPrimitive OutputPrimitive
	MaxVertices     uint32

	// PatchVertices is the tessellation control output patch size.
	PatchVertices uint32

	// Workgroup is the compute local size; zero components default to 1.
	Workgroup [3]uint32
}

// Origin represents the fragment coordinate origin.
type Origin uint8

const (
	OriginUpperLeft Origin = iota
	OriginLowerLeft
)

// InputPrimitive represents a geometry input primitive.
type InputPrimitive uint8

const (
	InputPoints InputPrimitive = iota
	InputLines
	InputLinesAdjacency
	InputTriangles
	InputTrianglesAdjacency
)

// OutputPrimitive represents a geometry output primitive.
type OutputPrimitive uint8

const (
	OutputPoints OutputPrimitive = iota
	OutputLineStrip
	OutputTriangleStrip
)

// Field is a global declaration.
type Field struct {
	Name   string
	Type   Type
	Layout *Layout // nil means private storage without decorations
}

// Layout is the declarative metadata attached to a global declaration.
type Layout struct {
	Location      uint32
	Binding       *uint32
	DescriptorSet uint32
	Align         *uint32
	Offset        *uint32
	PushConstant  bool
	Builtin       Builtin
	SpecID        *uint32
	Direction     Direction
}

// Direction represents the interface direction of a global.
type Direction uint8

const (
	DirectionPrivate Direction = iota
	DirectionInput
	DirectionOutput
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionPrivate:
		return "private"
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Builtin represents a predefined semantic role bound to an interface variable.
type Builtin uint8

const (
	BuiltinNone Builtin = iota
	BuiltinPosition
	BuiltinPointSize
	BuiltinClipDistance
	BuiltinCullDistance
	BuiltinVertexIndex
	BuiltinInstanceIndex
	BuiltinPrimitiveID
	BuiltinInvocationID
	BuiltinLayer
	BuiltinViewportIndex
	BuiltinTessLevelOuter
	BuiltinTessLevelInner
	BuiltinTessCoord
	BuiltinPatchVertices
	BuiltinFragCoord
	BuiltinPointCoord
	BuiltinFrontFacing
	BuiltinSampleID
	BuiltinSamplePosition
	BuiltinSampleMask
	BuiltinFragDepth
	BuiltinHelperInvocation
	BuiltinNumWorkgroups
	BuiltinWorkgroupSize
	BuiltinWorkgroupID
	BuiltinLocalInvocationID
	BuiltinGlobalInvocationID
	BuiltinLocalInvocationIndex
)

// Method is a method declaration.
type Method struct {
	Name   string
	Result Type // nil means void
	Locals []Local
	Body   []Operation
}

// Local is a method-local variable declaration.
type Local struct {
	Name string // optional; the declaration index is used when empty
	Type Type
}

// Type is the closed set of semantic types a description may use.
type Type interface {
	irType()
}

// Bool is the boolean type.
type Bool struct{}

func (Bool) irType() {}

// Int is an integer type. Width is in bits (8, 16, 32 or 64).
type Int struct {
	Width  uint8
	Signed bool
}

func (Int) irType() {}

// Char is an 8-bit character; it is compiled as an unsigned 8-bit integer.
type Char struct{}

func (Char) irType() {}

// Float is a floating point type. Width is in bits (32, 64 or 128).
type Float struct {
	Width uint8
}

func (Float) irType() {}

// Vector is a vector of 32-bit floats with 2, 3 or 4 components.
type Vector struct {
	Count uint8
}

func (Vector) irType() {}

// Matrix4 is a 4x4 matrix of 32-bit floats.
type Matrix4 struct{}

func (Matrix4) irType() {}

// Array is a fixed-length array. Len zero means the length is unresolved.
type Array struct {
	Elem Type
	Len  uint32
}

func (Array) irType() {}

// Pointer is a pointer to Elem; the storage class is chosen by the compiler.
type Pointer struct {
	Elem Type
}

func (Pointer) irType() {}

// SampledImage2D is an opaque sampled 2D float image.
type SampledImage2D struct{}

func (SampledImage2D) irType() {}

// Struct is an aggregate with ordered fields.
type Struct struct {
	Name   string
	Fields []StructField
}

func (Struct) irType() {}

// StructField is a member of a Struct.
type StructField struct {
	Name string
	Type Type
}

// Void is the absent type.
type Void struct{}

func (Void) irType() {}

// Enum is an enumeration; it is compiled as its underlying integer.
type Enum struct {
	Name       string
	Underlying Int
}

func (Enum) irType() {}

// String is a text type. It cannot be compiled.
type String struct{}

func (String) irType() {}

// DateTime is a timestamp type. It cannot be compiled.
type DateTime struct{}

func (DateTime) irType() {}

// Null is the null type. It cannot be compiled.
type Null struct{}

func (Null) irType() {}

// Common types.
var (
	TypeFloat32 Type = Float{Width: 32}
	TypeUint32  Type = Int{Width: 32}
	TypeInt32   Type = Int{Width: 32, Signed: true}
	TypeVec2    Type = Vector{Count: 2}
	TypeVec3    Type = Vector{Count: 3}
	TypeVec4    Type = Vector{Count: 4}
	TypeMat4    Type = Matrix4{}
)

// Underlying resolves the types that are compiled as another type:
// enums become their integer and characters become unsigned 8-bit integers.
func Underlying(t Type) Type {
	switch t := t.(type) {
	case Enum:
		return t.Underlying
	case Char:
		return Int{Width: 8}
	case nil:
		return Void{}
	default:
		return t
	}
}
