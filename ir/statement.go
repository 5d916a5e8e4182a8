package ir

// Operation is one step of a method body.
// Bodies are straight-line: operations run in order against an operand stack
// of values, and there is no branching.
type Operation interface {
	operation()
}

// LoadField pushes a pointer to the global field at Field.
type LoadField struct {
	Field int
}

func (LoadField) operation() {}

// LoadLocal pushes a pointer to the method local at Local.
type LoadLocal struct {
	Local int
}

func (LoadLocal) operation() {}

// StoreField pops a value and stores it into the global field at Field.
type StoreField struct {
	Field int
}

func (StoreField) operation() {}

// StoreLocal pops a value and stores it into the method local at Local.
type StoreLocal struct {
	Local int
}

func (StoreLocal) operation() {}

// Store pops a value, then a pointer, and stores the value through the pointer.
type Store struct{}

func (Store) operation() {}

// Deref pops a pointer and pushes the value it points to.
type Deref struct{}

func (Deref) operation() {}

// PushUint pushes an unsigned 32-bit constant.
type PushUint struct {
	Value uint32
}

func (PushUint) operation() {}

// PushFloat pushes a 32-bit float constant.
type PushFloat struct {
	Value float32
}

func (PushFloat) operation() {}

// Extract pops a composite value and pushes its component at Index.
type Extract struct {
	Index uint32
}

func (Extract) operation() {}

// Extract2 pops a composite value and pushes the component at [Row][Col].
type Extract2 struct {
	Row uint32
	Col uint32
}

func (Extract2) operation() {}

// Access pops a pointer to a composite and pushes a pointer to its member at Index.
type Access struct {
	Index uint32
}

func (Access) operation() {}

// Construct pops Count values and pushes a composite of Type built from them
// in push order.
type Construct struct {
	Type  Type
	Count int
}

func (Construct) operation() {}

// Math pops a value and pushes the result of an extended math function.
type Math struct {
	Fun MathFunction
}

func (Math) operation() {}

// MathFunction represents an extended math function.
type MathFunction uint8

const (
	MathSin MathFunction = iota
	MathCos
	MathInverseSqrt
)

// String returns the function name.
func (f MathFunction) String() string {
	switch f {
	case MathSin:
		return "sin"
	case MathCos:
		return "cos"
	case MathInverseSqrt:
		return "inversesqrt"
	default:
		return "unknown"
	}
}

// NarrowVec4 pops a 4-component vector and pushes its first three components.
type NarrowVec4 struct{}

func (NarrowVec4) operation() {}

// NarrowMat4 pops a 4x4 matrix and pushes its upper-left 3x3 block.
type NarrowMat4 struct{}

func (NarrowMat4) operation() {}

// Binary pops the right operand, then the left, and pushes Left Op Right.
type Binary struct {
	Op BinaryOperator
}

func (Binary) operation() {}

// BinaryOperator represents an arithmetic operator.
type BinaryOperator uint8

const (
	BinaryAdd BinaryOperator = iota
	BinarySubtract
	BinaryMultiply
	BinaryDivide
)

// String returns the operator symbol.
func (op BinaryOperator) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySubtract:
		return "-"
	case BinaryMultiply:
		return "*"
	case BinaryDivide:
		return "/"
	default:
		return "?"
	}
}

// Dup duplicates the value on top of the stack.
type Dup struct{}

func (Dup) operation() {}

// Pop discards the value on top of the stack.
type Pop struct{}

func (Pop) operation() {}

// Return ends the method. A method with a result pops the returned value.
type Return struct{}

func (Return) operation() {}
