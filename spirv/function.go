package spirv

import (
	"strconv"

	"github.com/gogpu/spvgen/ir"
)

// Function is a compiled method.
type Function struct {
	ID         uint32
	Name       string
	ReturnType uint32
	Locals     []*Variable
}

// bodyCompiler translates one method body with an explicit operand stack.
type bodyCompiler struct {
	c        *Compiler
	method   *ir.Method
	function *Function
	stack    []uint32
	returned bool
}

func (bc *bodyCompiler) push(id uint32) {
	bc.stack = append(bc.stack, id)
}

func (bc *bodyCompiler) pop(op int) (uint32, error) {
	if len(bc.stack) == 0 {
		return 0, errorf(ErrInvalidProgram, "method %s, operation %d: operand stack underflow", bc.method.Name, op)
	}
	id := bc.stack[len(bc.stack)-1]
	bc.stack = bc.stack[:len(bc.stack)-1]
	return id, nil
}

func (bc *bodyCompiler) global(op, index int) (*Variable, error) {
	if index < 0 || index >= len(bc.c.globals) {
		return nil, errorf(ErrInvalidProgram, "method %s, operation %d: field index %d out of range", bc.method.Name, op, index)
	}
	return bc.c.globals[index], nil
}

func (bc *bodyCompiler) local(op, index int) (*Variable, error) {
	if index < 0 || index >= len(bc.function.Locals) {
		return nil, errorf(ErrInvalidProgram, "method %s, operation %d: local index %d out of range", bc.method.Name, op, index)
	}
	return bc.function.Locals[index], nil
}

// compileMethod emits one function: the signature, a single block holding
// the locals and the translated body, and a trailing return when the body
// does not end with one.
func (c *Compiler) compileMethod(method *ir.Method) (*Function, error) {
	returnKey := ValueOf(method.Result)
	if method.Result == nil {
		returnKey = ValueOf(ir.Void{})
	}
	returnType, err := c.types.TypeID(returnKey)
	if err != nil {
		return nil, err
	}
	funcType := c.types.FunctionType(returnType)

	fn := &Function{
		ID:         c.builder.AddFunction(funcType, returnType, FunctionControlNone),
		Name:       method.Name,
		ReturnType: returnType,
	}
	c.builder.AddName(fn.ID, method.Name)
	c.builder.AddLabel()

	for i, local := range method.Locals {
		if isOpaque(local.Type) {
			return nil, errorf(ErrUnsupportedType, "method %s: local %d of opaque type %s",
				method.Name, i, ir.Signature(local.Type))
		}
		key := PointerTo(local.Type, StorageClassFunction).Normalize()
		typeID, err := c.types.TypeID(key)
		if err != nil {
			return nil, err
		}
		name := local.Name
		if name == "" {
			name = "local" + strconv.Itoa(i)
		}
		id := c.builder.AddLocalVariable(typeID)
		c.builder.AddName(id, name)
		c.types.Bind(id, key, name)
		fn.Locals = append(fn.Locals, &Variable{ID: id, Type: key, Storage: StorageClassFunction, Name: name})
	}

	bc := &bodyCompiler{c: c, method: method, function: fn}
	for i, op := range method.Body {
		if bc.returned {
			return nil, errorf(ErrInvalidProgram, "method %s, operation %d: unreachable after return", method.Name, i)
		}
		if err := bc.emitOperation(i, op); err != nil {
			return nil, err
		}
	}

	if !bc.returned {
		if _, void := ir.Underlying(method.Result).(ir.Void); !void {
			return nil, errorf(ErrInvalidProgram, "method %s: missing return value", method.Name)
		}
		c.builder.AddReturn()
	}
	c.builder.AddFunctionEnd()
	return fn, nil
}

//nolint:gocyclo,cyclop,funlen // Operation dispatch requires many cases
func (bc *bodyCompiler) emitOperation(index int, op ir.Operation) error {
	exprs := bc.c.exprs

	// unary pops one operand and pushes the result of f.
	unary := func(f func(uint32) (uint32, error)) error {
		arg, err := bc.pop(index)
		if err != nil {
			return err
		}
		id, err := f(arg)
		if err != nil {
			return err
		}
		bc.push(id)
		return nil
	}

	switch op := op.(type) {
	case ir.LoadField:
		v, err := bc.global(index, op.Field)
		if err != nil {
			return err
		}
		bc.push(v.ID)

	case ir.LoadLocal:
		v, err := bc.local(index, op.Local)
		if err != nil {
			return err
		}
		bc.push(v.ID)

	case ir.StoreField:
		v, err := bc.global(index, op.Field)
		if err != nil {
			return err
		}
		value, err := bc.pop(index)
		if err != nil {
			return err
		}
		return exprs.Store(v.ID, value)

	case ir.StoreLocal:
		v, err := bc.local(index, op.Local)
		if err != nil {
			return err
		}
		value, err := bc.pop(index)
		if err != nil {
			return err
		}
		return exprs.Store(v.ID, value)

	case ir.Store:
		value, err := bc.pop(index)
		if err != nil {
			return err
		}
		pointer, err := bc.pop(index)
		if err != nil {
			return err
		}
		return exprs.Store(pointer, value)

	case ir.Deref:
		return unary(exprs.Load)

	case ir.PushUint:
		id, err := bc.c.types.ConstantUint(op.Value)
		if err != nil {
			return err
		}
		bc.push(id)

	case ir.PushFloat:
		id, err := bc.c.types.ConstantFloat(op.Value)
		if err != nil {
			return err
		}
		bc.push(id)

	case ir.Extract:
		return unary(func(base uint32) (uint32, error) {
			return exprs.CompositeExtract(base, op.Index)
		})

	case ir.Extract2:
		return unary(func(base uint32) (uint32, error) {
			return exprs.CompositeExtract2(base, op.Row, op.Col)
		})

	case ir.Access:
		return unary(func(base uint32) (uint32, error) {
			return exprs.AccessChain(base, op.Index)
		})

	case ir.Construct:
		if op.Count < 0 || op.Count > len(bc.stack) {
			return errorf(ErrInvalidProgram, "method %s, operation %d: construct of %d values with %d on the stack",
				bc.method.Name, index, op.Count, len(bc.stack))
		}
		split := len(bc.stack) - op.Count
		parts := append([]uint32(nil), bc.stack[split:]...)
		bc.stack = bc.stack[:split]
		id, err := exprs.CompositeConstruct(op.Type, parts)
		if err != nil {
			return err
		}
		bc.push(id)

	case ir.Math:
		return unary(func(arg uint32) (uint32, error) {
			return exprs.Math(op.Fun, arg)
		})

	case ir.NarrowVec4:
		return unary(exprs.NarrowVec4)

	case ir.NarrowMat4:
		return unary(exprs.NarrowMat4)

	case ir.Binary:
		right, err := bc.pop(index)
		if err != nil {
			return err
		}
		left, err := bc.pop(index)
		if err != nil {
			return err
		}
		id, err := exprs.Binary(op.Op, left, right)
		if err != nil {
			return err
		}
		bc.push(id)

	case ir.Dup:
		top, err := bc.pop(index)
		if err != nil {
			return err
		}
		bc.push(top)
		bc.push(top)

	case ir.Pop:
		_, err := bc.pop(index)
		return err

	case ir.Return:
		bc.returned = true
		if _, void := ir.Underlying(bc.method.Result).(ir.Void); void {
			bc.c.builder.AddReturn()
			return nil
		}
		value, err := bc.pop(index)
		if err != nil {
			return err
		}
		v, err := bc.c.types.Value(value)
		if err != nil {
			return err
		}
		if !sameType(v.Type.Type, bc.method.Result) {
			return errorf(ErrInvalidProgram, "method %s, operation %d: returning %s from a method of type %s",
				bc.method.Name, index, ir.Signature(v.Type.Type), ir.Signature(bc.method.Result))
		}
		bc.c.builder.AddReturnValue(value)

	case nil:
		return errorf(ErrInvalidProgram, "method %s, operation %d: nil operation", bc.method.Name, index)

	default:
		return errorf(ErrInternalError, "method %s, operation %d: unhandled operation %T", bc.method.Name, index, op)
	}
	return nil
}
