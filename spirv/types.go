package spirv

import (
	"math"
	"strconv"

	"github.com/gogpu/spvgen/ir"
)

// TypeKey identifies a SPIR-V type: a semantic type plus the storage class
// that applies when the type is a pointer.
type TypeKey struct {
	Type    ir.Type
	Storage StorageClass
}

// ValueOf returns the key of a non-pointer type.
func ValueOf(t ir.Type) TypeKey {
	return TypeKey{Type: t, Storage: StorageClassNone}
}

// PointerTo returns the key of a pointer to elem in storage class sc.
func PointerTo(elem ir.Type, sc StorageClass) TypeKey {
	return TypeKey{Type: ir.Pointer{Elem: elem}, Storage: sc}
}

// Normalize substitutes underlying types and applies the storage class rules:
// only pointers keep a storage class, and pointers to sampled images always
// live in UniformConstant.
func (k TypeKey) Normalize() TypeKey {
	t := ir.Underlying(k.Type)
	ptr, ok := t.(ir.Pointer)
	if !ok {
		return TypeKey{Type: t, Storage: StorageClassNone}
	}
	ptr.Elem = ir.Underlying(ptr.Elem)
	if isOpaque(ptr.Elem) {
		return TypeKey{Type: ptr, Storage: StorageClassUniformConstant}
	}
	return TypeKey{Type: ptr, Storage: k.Storage}
}

// Elem returns the pointee key of a pointer key.
func (k TypeKey) Elem() (TypeKey, bool) {
	ptr, ok := ir.Underlying(k.Type).(ir.Pointer)
	if !ok {
		return TypeKey{}, false
	}
	return ValueOf(ptr.Elem), true
}

// IsPointer reports whether the key names a pointer type.
func (k TypeKey) IsPointer() bool {
	_, ok := ir.Underlying(k.Type).(ir.Pointer)
	return ok
}

func (k TypeKey) signature() string {
	k = k.Normalize()
	b := ir.AppendSignature(make([]byte, 0, 32), k.Type)
	if k.Storage != StorageClassNone {
		b = append(b, '@')
		b = strconv.AppendUint(b, uint64(k.Storage), 10)
	}
	return string(b)
}

// isOpaque reports whether t is a sampled image or an array of them.
func isOpaque(t ir.Type) bool {
	switch t := ir.Underlying(t).(type) {
	case ir.SampledImage2D:
		return true
	case ir.Array:
		return isOpaque(t.Elem)
	default:
		return false
	}
}

// ValueBinding is the type and debug name recorded for an id.
type ValueBinding struct {
	Type TypeKey
	Name string
}

// Interner maps type keys and literal constants to ids, emitting each
// definition the first time it is requested.
type Interner struct {
	builder *ModuleBuilder

	// Type cache (signature → SPIR-V ID)
	types map[string]uint32

	// Constant pools, keyed by raw bit pattern
	uints  map[uint32]uint32
	floats map[uint32]uint32

	// Function type cache (return type ID → SPIR-V ID)
	functionTypes map[uint32]uint32

	// Struct type IDs already decorated with Block
	blocks map[uint32]bool

	values map[uint32]*ValueBinding
}

// NewInterner creates an interner emitting into builder.
func NewInterner(builder *ModuleBuilder) *Interner {
	return &Interner{
		builder:       builder,
		types:         make(map[string]uint32),
		uints:         make(map[uint32]uint32),
		floats:        make(map[uint32]uint32),
		functionTypes: make(map[uint32]uint32),
		blocks:        make(map[uint32]bool),
		values:        make(map[uint32]*ValueBinding),
	}
}

// Bind records the type and name of id.
func (in *Interner) Bind(id uint32, key TypeKey, name string) {
	in.values[id] = &ValueBinding{Type: key.Normalize(), Name: name}
}

// Value returns the binding recorded for id.
func (in *Interner) Value(id uint32) (*ValueBinding, error) {
	v, ok := in.values[id]
	if !ok {
		return nil, errorf(ErrInternalError, "id %d has no recorded type", id)
	}
	return v, nil
}

// SetName attaches a debug name to an existing binding and emits OpName.
func (in *Interner) SetName(id uint32, name string) error {
	v, err := in.Value(id)
	if err != nil {
		return err
	}
	v.Name = name
	if name != "" {
		in.builder.AddName(id, name)
	}
	return nil
}

// TypeID returns the id of the type named by key, emitting its definition
// and the definitions it depends on first.
func (in *Interner) TypeID(key TypeKey) (uint32, error) {
	key = key.Normalize()
	sig := key.signature()
	if id, ok := in.types[sig]; ok {
		return id, nil
	}

	id, err := in.emitType(key)
	if err != nil {
		return 0, err
	}
	in.types[sig] = id
	in.values[id] = &ValueBinding{Type: key}
	return id, nil
}

//nolint:gocyclo,cyclop,funlen // Type dispatch requires many cases
func (in *Interner) emitType(key TypeKey) (uint32, error) {
	switch t := key.Type.(type) {
	case ir.Bool:
		return in.builder.AddTypeBool(), nil

	case ir.Int:
		switch t.Width {
		case 8:
			in.builder.AddCapability(CapabilityInt8)
		case 16:
			in.builder.AddCapability(CapabilityInt16)
		case 32:
		case 64:
			in.builder.AddCapability(CapabilityInt64)
		default:
			return 0, errorf(ErrUnsupportedType, "integer width %d", t.Width)
		}
		return in.builder.AddTypeInt(uint32(t.Width), t.Signed), nil

	case ir.Float:
		switch t.Width {
		case 16:
			in.builder.AddCapability(CapabilityFloat16)
		case 32, 128:
		case 64:
			in.builder.AddCapability(CapabilityFloat64)
		default:
			return 0, errorf(ErrUnsupportedType, "float width %d", t.Width)
		}
		return in.builder.AddTypeFloat(uint32(t.Width)), nil

	case ir.Void:
		return in.builder.AddTypeVoid(), nil

	case ir.Pointer:
		pointee, err := in.TypeID(TypeKey{Type: t.Elem, Storage: key.Storage})
		if err != nil {
			return 0, err
		}
		return in.builder.AddTypePointer(key.Storage, pointee), nil

	case ir.Vector:
		if t.Count < 2 || t.Count > 4 {
			return 0, errorf(ErrUnsupportedType, "vector of %d components", t.Count)
		}
		component, err := in.TypeID(ValueOf(ir.TypeFloat32))
		if err != nil {
			return 0, err
		}
		return in.builder.AddTypeVector(component, uint32(t.Count)), nil

	case ir.Matrix4:
		column, err := in.TypeID(ValueOf(ir.TypeVec4))
		if err != nil {
			return 0, err
		}
		id := in.builder.AddTypeMatrix(column, 4)
		in.builder.AddDecorate(id, DecorationColMajor)
		return id, nil

	case ir.Array:
		if t.Len == 0 {
			return 0, errorf(ErrUnsupportedType, "array of %s has no resolved length", ir.Signature(t.Elem))
		}
		elem, err := in.TypeID(ValueOf(t.Elem))
		if err != nil {
			return 0, err
		}
		length, err := in.ConstantUint(t.Len)
		if err != nil {
			return 0, err
		}
		return in.builder.AddTypeArray(elem, length), nil

	case ir.SampledImage2D:
		sampled, err := in.TypeID(ValueOf(ir.TypeFloat32))
		if err != nil {
			return 0, err
		}
		image := in.builder.AddTypeImage(sampled, Dim2D, 0, 0, 0, 1, ImageFormatUnknown)
		return in.builder.AddTypeSampledImage(image), nil

	case ir.Struct:
		return in.emitStruct(t)

	case ir.String, ir.DateTime, ir.Null:
		return 0, errorf(ErrUnsupportedType, "%s cannot be represented in SPIR-V", ir.Signature(t))

	default:
		return 0, errorf(ErrInternalError, "unhandled type %T", t)
	}
}

func (in *Interner) emitStruct(t ir.Struct) (uint32, error) {
	members := make([]uint32, len(t.Fields))
	for i, field := range t.Fields {
		id, err := in.TypeID(ValueOf(field.Type))
		if err != nil {
			return 0, err
		}
		members[i] = id
	}

	id := in.builder.AddTypeStruct(members...)
	if t.Name != "" {
		in.builder.AddName(id, t.Name)
	}

	// Offsets are a running sum of natural sizes, without alignment padding.
	var offset uint32
	for i, field := range t.Fields {
		in.builder.AddMemberDecorate(id, uint32(i), DecorationOffset, offset)
		if field.Name != "" {
			in.builder.AddMemberName(id, uint32(i), field.Name)
		}
		size, err := NaturalSize(field.Type)
		if err != nil {
			return 0, err
		}
		offset += size
	}
	return id, nil
}

// FunctionType returns the id of a parameterless function type returning returnType.
func (in *Interner) FunctionType(returnType uint32) uint32 {
	if id, ok := in.functionTypes[returnType]; ok {
		return id
	}
	id := in.builder.AddTypeFunction(returnType)
	in.functionTypes[returnType] = id
	return id
}

// MarkBlock decorates a struct type id with Block once.
func (in *Interner) MarkBlock(structID uint32) {
	if in.blocks[structID] {
		return
	}
	in.blocks[structID] = true
	in.builder.AddDecorate(structID, DecorationBlock)
}

// ConstantUint returns the id of an unsigned 32-bit constant.
func (in *Interner) ConstantUint(value uint32) (uint32, error) {
	if id, ok := in.uints[value]; ok {
		return id, nil
	}
	typeID, err := in.TypeID(ValueOf(ir.TypeUint32))
	if err != nil {
		return 0, err
	}
	id := in.builder.AddConstant(typeID, value)
	name := "uint_" + strconv.FormatUint(uint64(value), 10)
	in.builder.AddName(id, name)
	in.Bind(id, ValueOf(ir.TypeUint32), name)
	in.uints[value] = id
	return id, nil
}

// ConstantFloat returns the id of a 32-bit float constant. Constants are
// pooled by bit pattern, so 0.0 and -0.0 are distinct.
func (in *Interner) ConstantFloat(value float32) (uint32, error) {
	bits := math.Float32bits(value)
	if id, ok := in.floats[bits]; ok {
		return id, nil
	}
	typeID, err := in.TypeID(ValueOf(ir.TypeFloat32))
	if err != nil {
		return 0, err
	}
	id := in.builder.AddConstant(typeID, bits)
	name := "float_" + strconv.FormatFloat(float64(value), 'g', -1, 32)
	in.builder.AddName(id, name)
	in.Bind(id, ValueOf(ir.TypeFloat32), name)
	in.floats[bits] = id
	return id, nil
}

// NaturalSize returns the byte size used for struct member offsets.
func NaturalSize(t ir.Type) (uint32, error) {
	switch t := ir.Underlying(t).(type) {
	case ir.Bool:
		return 4, nil
	case ir.Int:
		return uint32(t.Width) / 8, nil
	case ir.Float:
		return uint32(t.Width) / 8, nil
	case ir.Vector:
		return 4 * uint32(t.Count), nil
	case ir.Matrix4:
		return 64, nil
	case ir.Array:
		elem, err := NaturalSize(t.Elem)
		if err != nil {
			return 0, err
		}
		return elem * t.Len, nil
	case ir.Struct:
		var size uint32
		for _, field := range t.Fields {
			s, err := NaturalSize(field.Type)
			if err != nil {
				return 0, err
			}
			size += s
		}
		return size, nil
	default:
		return 0, errorf(ErrUnsupportedType, "%s has no natural size", ir.Signature(t))
	}
}
