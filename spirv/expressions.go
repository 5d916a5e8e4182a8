package spirv

import (
	"fmt"

	"github.com/gogpu/spvgen/ir"
)

// ExpressionBuilder emits function body instructions, recording the type of
// every result and deriving debug names from the operands.
type ExpressionBuilder struct {
	builder *ModuleBuilder
	types   *Interner

	// GLSL.std.450 import ID, created on first use
	glslExtID uint32
}

// NewExpressionBuilder creates an expression builder sharing the interner's module.
func NewExpressionBuilder(builder *ModuleBuilder, types *Interner) *ExpressionBuilder {
	return &ExpressionBuilder{builder: builder, types: types}
}

var swizzle = [4]string{".x", ".y", ".z", ".w"}

// result records a new value and emits its name when it has one.
func (e *ExpressionBuilder) result(id uint32, key TypeKey, name string) uint32 {
	e.types.Bind(id, key, name)
	if name != "" {
		e.builder.AddName(id, name)
	}
	return id
}

func suffixed(base, suffix string) string {
	if base == "" {
		return ""
	}
	return base + suffix
}

// sameType reports whether two types compile to the same SPIR-V type.
func sameType(a, b ir.Type) bool {
	return ir.Signature(a) == ir.Signature(b)
}

func (e *ExpressionBuilder) pointer(id uint32) (*ValueBinding, TypeKey, error) {
	v, err := e.types.Value(id)
	if err != nil {
		return nil, TypeKey{}, err
	}
	elem, ok := v.Type.Elem()
	if !ok {
		return nil, TypeKey{}, errorf(ErrInvalidProgram, "id %d of type %s is not a pointer", id, ir.Signature(v.Type.Type))
	}
	return v, elem, nil
}

// Load reads the value a pointer points to.
func (e *ExpressionBuilder) Load(pointer uint32) (uint32, error) {
	v, elem, err := e.pointer(pointer)
	if err != nil {
		return 0, err
	}
	typeID, err := e.types.TypeID(elem)
	if err != nil {
		return 0, err
	}
	id := e.builder.AddLoad(typeID, pointer)
	return e.result(id, elem, suffixed(v.Name, "-loaded")), nil
}

// Store writes value through pointer. The value must have the pointee type.
func (e *ExpressionBuilder) Store(pointer, value uint32) error {
	_, elem, err := e.pointer(pointer)
	if err != nil {
		return err
	}
	v, err := e.types.Value(value)
	if err != nil {
		return err
	}
	if !sameType(elem.Type, v.Type.Type) {
		return errorf(ErrInvalidProgram, "storing %s through a pointer to %s",
			ir.Signature(v.Type.Type), ir.Signature(elem.Type))
	}
	e.builder.AddStore(pointer, value)
	return nil
}

// componentType returns the type of member index of a composite value type.
func componentType(t ir.Type, index uint32) (ir.Type, error) {
	switch t := ir.Underlying(t).(type) {
	case ir.Vector:
		if index >= uint32(t.Count) {
			return nil, errorf(ErrInvalidProgram, "component %d of a %d-component vector", index, t.Count)
		}
		return ir.TypeFloat32, nil
	case ir.Matrix4:
		if index >= 4 {
			return nil, errorf(ErrInvalidProgram, "column %d of a 4x4 matrix", index)
		}
		return ir.TypeVec4, nil
	case ir.Array:
		if index >= t.Len {
			return nil, errorf(ErrInvalidProgram, "element %d of an array of length %d", index, t.Len)
		}
		return t.Elem, nil
	case ir.Struct:
		if index >= uint32(len(t.Fields)) {
			return nil, errorf(ErrInvalidProgram, "member %d of struct %s with %d fields", index, t.Name, len(t.Fields))
		}
		return t.Fields[index].Type, nil
	default:
		return nil, errorf(ErrInvalidProgram, "%s is not a composite", ir.Signature(t))
	}
}

// CompositeExtract reads component index of a composite value.
func (e *ExpressionBuilder) CompositeExtract(base uint32, index uint32) (uint32, error) {
	v, err := e.types.Value(base)
	if err != nil {
		return 0, err
	}
	elem, err := componentType(v.Type.Type, index)
	if err != nil {
		return 0, err
	}
	key := ValueOf(elem)
	typeID, err := e.types.TypeID(key)
	if err != nil {
		return 0, err
	}

	name := v.Name
	if index < 4 {
		name = suffixed(v.Name, swizzle[index])
	}
	id := e.builder.AddCompositeExtract(typeID, base, index)
	return e.result(id, key, name), nil
}

// CompositeExtract2 reads element [row][col] of a nested composite value.
func (e *ExpressionBuilder) CompositeExtract2(base uint32, row, col uint32) (uint32, error) {
	v, err := e.types.Value(base)
	if err != nil {
		return 0, err
	}
	inner, err := componentType(v.Type.Type, row)
	if err != nil {
		return 0, err
	}
	elem, err := componentType(inner, col)
	if err != nil {
		return 0, err
	}
	key := ValueOf(elem)
	typeID, err := e.types.TypeID(key)
	if err != nil {
		return 0, err
	}

	id := e.builder.AddCompositeExtract(typeID, base, row, col)
	return e.result(id, key, suffixed(v.Name, fmt.Sprintf("[%d][%d]", row, col))), nil
}

// AccessChain returns a pointer to member index of the composite base points
// to. The result keeps the storage class of base.
func (e *ExpressionBuilder) AccessChain(base uint32, index uint32) (uint32, error) {
	v, elem, err := e.pointer(base)
	if err != nil {
		return 0, err
	}
	member, err := componentType(elem.Type, index)
	if err != nil {
		return 0, err
	}
	key := PointerTo(member, v.Type.Storage)
	typeID, err := e.types.TypeID(key)
	if err != nil {
		return 0, err
	}
	indexID, err := e.types.ConstantUint(index)
	if err != nil {
		return 0, err
	}

	name := v.Name
	if index < 4 {
		name = suffixed(v.Name, fmt.Sprintf("[%d]", index))
	}
	id := e.builder.AddAccessChain(typeID, base, indexID)
	return e.result(id, key, name), nil
}

// CompositeConstruct builds a composite of type t from parts. Vectors take
// float scalars or smaller vectors covering every component; other
// composites take one value per member.
func (e *ExpressionBuilder) CompositeConstruct(t ir.Type, parts []uint32) (uint32, error) {
	partTypes := make([]ir.Type, len(parts))
	for i, part := range parts {
		v, err := e.types.Value(part)
		if err != nil {
			return 0, err
		}
		partTypes[i] = v.Type.Type
	}
	if err := checkConstituents(t, partTypes); err != nil {
		return 0, err
	}
	key := ValueOf(t)
	typeID, err := e.types.TypeID(key)
	if err != nil {
		return 0, err
	}
	id := e.builder.AddCompositeConstruct(typeID, parts...)
	return e.result(id, key, ""), nil
}

// Math applies a GLSL.std.450 function to a float scalar or vector.
func (e *ExpressionBuilder) Math(fun ir.MathFunction, arg uint32) (uint32, error) {
	var inst uint32
	switch fun {
	case ir.MathSin:
		inst = GLSLstd450Sin
	case ir.MathCos:
		inst = GLSLstd450Cos
	case ir.MathInverseSqrt:
		inst = GLSLstd450InverseSqrt
	default:
		return 0, errorf(ErrUnsupportedFeature, "math function %d", fun)
	}

	v, err := e.types.Value(arg)
	if err != nil {
		return 0, err
	}
	switch ir.Underlying(v.Type.Type).(type) {
	case ir.Float, ir.Vector:
	default:
		return 0, errorf(ErrInvalidProgram, "%s of %s", fun, ir.Signature(v.Type.Type))
	}
	typeID, err := e.types.TypeID(v.Type)
	if err != nil {
		return 0, err
	}

	if e.glslExtID == 0 {
		e.glslExtID = e.builder.AddExtInstImport(GLSLStd450Name)
	}
	id := e.builder.AddExtInst(typeID, e.glslExtID, inst, arg)
	return e.result(id, v.Type, ""), nil
}

func checkConstituents(t ir.Type, parts []ir.Type) error {
	if vec, ok := ir.Underlying(t).(ir.Vector); ok {
		components := 0
		for _, p := range parts {
			if pv, ok := ir.Underlying(p).(ir.Vector); ok {
				components += int(pv.Count)
				continue
			}
			if !sameType(p, ir.TypeFloat32) {
				return errorf(ErrInvalidProgram, "%s component in a %s construct", ir.Signature(p), ir.Signature(t))
			}
			components++
		}
		if components != int(vec.Count) {
			return errorf(ErrInvalidProgram, "constructing %s from %d components", ir.Signature(t), components)
		}
		return nil
	}

	var members int
	switch t := ir.Underlying(t).(type) {
	case ir.Matrix4:
		members = 4
	case ir.Array:
		members = int(t.Len)
	case ir.Struct:
		members = len(t.Fields)
	default:
		return errorf(ErrInvalidProgram, "%s is not a composite", ir.Signature(t))
	}
	if len(parts) != members {
		return errorf(ErrInvalidProgram, "constructing %s from %d values, want %d", ir.Signature(t), len(parts), members)
	}
	for i, p := range parts {
		want, err := componentType(t, uint32(i))
		if err != nil {
			return err
		}
		if !sameType(p, want) {
			return errorf(ErrInvalidProgram, "member %d of %s: got %s, want %s",
				i, ir.Signature(t), ir.Signature(p), ir.Signature(want))
		}
	}
	return nil
}

// NarrowVec4 keeps the first three components of a 4-component vector.
func (e *ExpressionBuilder) NarrowVec4(value uint32) (uint32, error) {
	v, err := e.types.Value(value)
	if err != nil {
		return 0, err
	}
	if vec, ok := ir.Underlying(v.Type.Type).(ir.Vector); !ok || vec.Count != 4 {
		return 0, errorf(ErrInvalidProgram, "narrowing %s to vec3", ir.Signature(v.Type.Type))
	}

	parts := make([]uint32, 3)
	for i := range parts {
		if parts[i], err = e.CompositeExtract(value, uint32(i)); err != nil {
			return 0, err
		}
	}
	id, err := e.CompositeConstruct(ir.TypeVec3, parts)
	if err != nil {
		return 0, err
	}
	if err := e.types.SetName(id, suffixed(v.Name, ".xyz")); err != nil {
		return 0, err
	}
	return id, nil
}

// NarrowMat4 would keep the upper-left 3x3 block of a 4x4 matrix; there is
// no 3x3 matrix type, so it always fails.
func (e *ExpressionBuilder) NarrowMat4(value uint32) (uint32, error) {
	if _, err := e.types.Value(value); err != nil {
		return 0, err
	}
	return 0, errorf(ErrUnsupportedFeature, "narrowing a 4x4 matrix to 3x3")
}

// Binary emits an arithmetic operation. The opcode follows the operand
// scalar kind, with dedicated opcodes for matrix and vector products.
//
//nolint:gocyclo,cyclop // Operand shape dispatch
func (e *ExpressionBuilder) Binary(op ir.BinaryOperator, left, right uint32) (uint32, error) {
	lv, err := e.types.Value(left)
	if err != nil {
		return 0, err
	}
	rv, err := e.types.Value(right)
	if err != nil {
		return 0, err
	}
	lt, rt := ir.Underlying(lv.Type.Type), ir.Underlying(rv.Type.Type)

	if op == ir.BinaryMultiply {
		opcode, result, a, b, ok := productOpcode(lt, rt, left, right)
		if ok {
			key := ValueOf(result)
			typeID, err := e.types.TypeID(key)
			if err != nil {
				return 0, err
			}
			id := e.builder.AddBinaryOp(opcode, typeID, a, b)
			return e.result(id, key, ""), nil
		}
	}

	if ir.Signature(lt) != ir.Signature(rt) {
		return 0, errorf(ErrInvalidProgram, "%s %s %s: mismatched operand types", ir.Signature(lt), op, ir.Signature(rt))
	}

	var float, signed bool
	switch t := lt.(type) {
	case ir.Float, ir.Vector:
		float = true
	case ir.Int:
		signed = t.Signed
	case ir.Matrix4:
		return 0, errorf(ErrUnsupportedFeature, "matrix %s matrix", op)
	default:
		return 0, errorf(ErrInvalidProgram, "binary operator %s on %s", op, ir.Signature(lt))
	}

	var opcode OpCode
	switch op {
	case ir.BinaryAdd:
		if float {
			opcode = OpFAdd
		} else {
			opcode = OpIAdd
		}
	case ir.BinarySubtract:
		if float {
			opcode = OpFSub
		} else {
			opcode = OpISub
		}
	case ir.BinaryMultiply:
		if float {
			opcode = OpFMul
		} else {
			opcode = OpIMul
		}
	case ir.BinaryDivide:
		if float {
			opcode = OpFDiv
		} else if signed {
			opcode = OpSDiv
		} else {
			opcode = OpUDiv
		}
	default:
		return 0, errorf(ErrUnsupportedFeature, "binary operator %d", op)
	}

	key := ValueOf(lt)
	typeID, err := e.types.TypeID(key)
	if err != nil {
		return 0, err
	}
	id := e.builder.AddBinaryOp(opcode, typeID, left, right)
	return e.result(id, key, ""), nil
}

// productOpcode picks the SPIR-V product for mixed matrix, vector and scalar
// operands. The returned operands are reordered where SPIR-V expects the
// scalar last.
func productOpcode(lt, rt ir.Type, left, right uint32) (OpCode, ir.Type, uint32, uint32, bool) {
	_, lMat := lt.(ir.Matrix4)
	_, rMat := rt.(ir.Matrix4)
	lVec, lIsVec := lt.(ir.Vector)
	rVec, rIsVec := rt.(ir.Vector)
	lScalar := isFloat32(lt)
	rScalar := isFloat32(rt)

	switch {
	case lMat && rMat:
		return OpMatrixTimesMatrix, ir.TypeMat4, left, right, true
	case lMat && rIsVec && rVec.Count == 4:
		return OpMatrixTimesVector, ir.TypeVec4, left, right, true
	case lIsVec && lVec.Count == 4 && rMat:
		return OpVectorTimesMatrix, ir.TypeVec4, left, right, true
	case lMat && rScalar:
		return OpMatrixTimesScalar, ir.TypeMat4, left, right, true
	case lScalar && rMat:
		return OpMatrixTimesScalar, ir.TypeMat4, right, left, true
	case lIsVec && rScalar:
		return OpVectorTimesScalar, lVec, left, right, true
	case lScalar && rIsVec:
		return OpVectorTimesScalar, rVec, right, left, true
	default:
		return 0, nil, 0, 0, false
	}
}

func isFloat32(t ir.Type) bool {
	f, ok := t.(ir.Float)
	return ok && f.Width == 32
}
