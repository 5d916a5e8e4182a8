package disasm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Opcodes referenced by the renderer and by callers inspecting modules.
const (
	OpSource             uint16 = 3
	OpSourceExtension    uint16 = 4
	OpName               uint16 = 5
	OpMemberName         uint16 = 6
	OpString             uint16 = 7
	OpExtension          uint16 = 10
	OpExtInstImport      uint16 = 11
	OpExtInst            uint16 = 12
	OpMemoryModel        uint16 = 14
	OpEntryPoint         uint16 = 15
	OpExecutionMode      uint16 = 16
	OpCapability         uint16 = 17
	OpTypeVoid           uint16 = 19
	OpTypeBool           uint16 = 20
	OpTypeInt            uint16 = 21
	OpTypeFloat          uint16 = 22
	OpTypeVector         uint16 = 23
	OpTypeMatrix         uint16 = 24
	OpTypeImage          uint16 = 25
	OpTypeSampledImage   uint16 = 27
	OpTypeArray          uint16 = 28
	OpTypeStruct         uint16 = 30
	OpTypePointer        uint16 = 32
	OpTypeFunction       uint16 = 33
	OpConstant           uint16 = 43
	OpFunction           uint16 = 54
	OpFunctionEnd        uint16 = 56
	OpVariable           uint16 = 59
	OpLoad               uint16 = 61
	OpStore              uint16 = 62
	OpAccessChain        uint16 = 65
	OpDecorate           uint16 = 71
	OpMemberDecorate     uint16 = 72
	OpCompositeConstruct uint16 = 80
	OpCompositeExtract   uint16 = 81
	OpLabel              uint16 = 248
	OpReturn             uint16 = 253
	OpReturnValue        uint16 = 254
)

type shape uint8

const (
	noResult shape = iota
	result
	typedResult
)

// shapeOf reports where an opcode's result id lives.
//
//nolint:gocyclo,cyclop // Opcode ranges from the SPIR-V grammar
func shapeOf(op uint16) shape {
	switch {
	case op == OpString, op == OpExtInstImport, op == 73, op == OpLabel:
		return result
	case op >= 19 && op <= 39: // OpType*
		return result
	case op == OpExtInst,
		op >= 41 && op <= 52, // constants
		op == OpFunction, op == 55, op == 57,
		op >= 59 && op <= 61,
		op >= 65 && op <= 70,
		op >= 77 && op <= 84,
		op >= 86 && op <= 98,
		op >= 100 && op <= 124,
		op >= 126 && op <= 205,
		op == 245:
		return typedResult
	default:
		return noResult
	}
}

var opcodeNames = map[uint16]string{
	0: "OpNop", 1: "OpUndef", 2: "OpSourceContinued", 3: "OpSource",
	4: "OpSourceExtension", 5: "OpName", 6: "OpMemberName", 7: "OpString",
	10: "OpExtension", 11: "OpExtInstImport", 12: "OpExtInst",
	14: "OpMemoryModel", 15: "OpEntryPoint", 16: "OpExecutionMode",
	17: "OpCapability", 19: "OpTypeVoid", 20: "OpTypeBool",
	21: "OpTypeInt", 22: "OpTypeFloat", 23: "OpTypeVector",
	24: "OpTypeMatrix", 25: "OpTypeImage", 26: "OpTypeSampler",
	27: "OpTypeSampledImage", 28: "OpTypeArray", 29: "OpTypeRuntimeArray",
	30: "OpTypeStruct", 32: "OpTypePointer", 33: "OpTypeFunction",
	41: "OpConstantTrue", 42: "OpConstantFalse", 43: "OpConstant",
	44: "OpConstantComposite", 46: "OpConstantNull",
	54: "OpFunction", 55: "OpFunctionParameter", 56: "OpFunctionEnd",
	57: "OpFunctionCall", 59: "OpVariable", 61: "OpLoad", 62: "OpStore",
	65: "OpAccessChain", 71: "OpDecorate", 72: "OpMemberDecorate",
	73: "OpDecorationGroup", 74: "OpGroupDecorate", 75: "OpGroupMemberDecorate",
	79: "OpVectorShuffle", 80: "OpCompositeConstruct", 81: "OpCompositeExtract",
	86: "OpSampledImage", 87: "OpImageSampleImplicitLod",
	127: "OpFNegate", 128: "OpIAdd", 129: "OpFAdd", 130: "OpISub", 131: "OpFSub",
	132: "OpIMul", 133: "OpFMul", 134: "OpUDiv", 135: "OpSDiv", 136: "OpFDiv",
	142: "OpVectorTimesScalar", 143: "OpMatrixTimesScalar",
	144: "OpVectorTimesMatrix", 145: "OpMatrixTimesVector",
	146: "OpMatrixTimesMatrix", 148: "OpDot",
	248: "OpLabel", 249: "OpBranch", 253: "OpReturn", 254: "OpReturnValue",
}

// OpcodeName returns the mnemonic of an opcode.
func OpcodeName(op uint16) string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "Op" + strconv.Itoa(int(op))
}

var capabilities = map[uint32]string{
	0: "Matrix", 1: "Shader", 2: "Geometry", 3: "Tessellation",
	9: "Float16", 10: "Float64", 11: "Int64", 22: "Int16",
	32: "ClipDistance", 33: "CullDistance", 35: "SampleRateShading", 39: "Int8",
}

var storageClasses = map[uint32]string{
	0: "UniformConstant", 1: "Input", 2: "Uniform", 3: "Output",
	4: "Workgroup", 5: "CrossWorkgroup", 6: "Private", 7: "Function",
	8: "Generic", 9: "PushConstant", 10: "AtomicCounter", 11: "Image",
	12: "StorageBuffer",
}

var decorations = map[uint32]string{
	0: "RelaxedPrecision", 1: "SpecId", 2: "Block", 3: "BufferBlock",
	4: "RowMajor", 5: "ColMajor", 6: "ArrayStride", 7: "MatrixStride",
	11: "BuiltIn", 14: "Flat", 30: "Location", 31: "Component",
	33: "Binding", 34: "DescriptorSet", 35: "Offset",
}

const decorationBuiltIn = 11

var builtins = map[uint32]string{
	0: "Position", 1: "PointSize", 3: "ClipDistance", 4: "CullDistance",
	7: "PrimitiveId", 8: "InvocationId", 9: "Layer", 10: "ViewportIndex",
	11: "TessLevelOuter", 12: "TessLevelInner", 13: "TessCoord", 14: "PatchVertices",
	15: "FragCoord", 16: "PointCoord", 17: "FrontFacing", 18: "SampleId",
	19: "SamplePosition", 20: "SampleMask", 22: "FragDepth", 23: "HelperInvocation",
	24: "NumWorkgroups", 25: "WorkgroupSize", 26: "WorkgroupId",
	27: "LocalInvocationId", 28: "GlobalInvocationId", 29: "LocalInvocationIndex",
	42: "VertexIndex", 43: "InstanceIndex",
}

var executionModes = map[uint32]string{
	0: "Invocations", 1: "SpacingEqual", 5: "VertexOrderCcw",
	6: "PixelCenterInteger", 7: "OriginUpperLeft", 8: "OriginLowerLeft",
	9: "EarlyFragmentTests", 17: "LocalSize", 19: "InputPoints", 20: "InputLines",
	21: "InputLinesAdjacency", 22: "Triangles", 23: "InputTrianglesAdjacency",
	26: "OutputVertices", 27: "OutputPoints", 28: "OutputLineStrip",
	29: "OutputTriangleStrip",
}

var executionModels = map[uint32]string{
	0: "Vertex", 1: "TessellationControl", 2: "TessellationEvaluation",
	3: "Geometry", 4: "Fragment", 5: "GLCompute", 6: "Kernel",
}

var (
	addressingModels = map[uint32]string{0: "Logical", 1: "Physical32", 2: "Physical64"}
	memoryModels     = map[uint32]string{0: "Simple", 1: "GLSL450", 2: "OpenCL", 3: "Vulkan"}
	sourceLanguages  = map[uint32]string{0: "Unknown", 1: "ESSL", 2: "GLSL", 3: "OpenCL_C", 4: "OpenCL_CPP", 5: "HLSL"}
	dims             = map[uint32]string{0: "1D", 1: "2D", 2: "3D", 3: "Cube", 4: "Rect", 5: "Buffer", 6: "SubpassData"}
)

// ExecutionModelName returns the name of an execution model operand.
func ExecutionModelName(model uint32) string {
	return lookup(executionModels, model)
}

// ExecutionModeName returns the name of an execution mode operand.
func ExecutionModeName(mode uint32) string {
	return lookup(executionModes, mode)
}

// StorageClassName returns the name of a storage class operand.
func StorageClassName(sc uint32) string {
	return lookup(storageClasses, sc)
}

func lookup(m map[uint32]string, v uint32) string {
	if s, ok := m[v]; ok {
		return s
	}
	return strconv.FormatUint(uint64(v), 10)
}

func id(n uint32) string {
	return "%" + strconv.FormatUint(uint64(n), 10)
}

// Write renders the module as assembly text.
func Write(w io.Writer, m *Module) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "; SPIR-V\n")
	fmt.Fprintf(bw, "; Version: %s\n", m.Header.VersionString())
	fmt.Fprintf(bw, "; Generator: 0x%08X\n", m.Header.Generator)
	fmt.Fprintf(bw, "; Bound: %d\n", m.Header.Bound)
	fmt.Fprintf(bw, "; Schema: %d\n", m.Header.Schema)

	for _, inst := range m.Instructions {
		line := Render(inst)
		if _, ok := inst.ResultID(); ok {
			// Right-align results so mnemonics line up.
			eq := strings.Index(line, " = ")
			if pad := 14 - eq; pad > 0 {
				line = strings.Repeat(" ", pad) + line
			}
		} else {
			line = strings.Repeat(" ", 17) + line
		}
		fmt.Fprintln(bw, line)
	}
	return bw.Flush()
}

// Text renders the module as a string.
func (m *Module) Text() string {
	var sb strings.Builder
	_ = Write(&sb, m)
	return sb.String()
}

// Render formats one instruction.
//
//nolint:gocyclo,cyclop,funlen // switch cases for SPIR-V opcodes
func Render(inst Instruction) string {
	ops := inst.Operands
	var sb strings.Builder

	if rid, ok := inst.ResultID(); ok {
		sb.WriteString(id(rid))
		sb.WriteString(" = ")
	}
	sb.WriteString(inst.Name())

	word := func(s string) {
		sb.WriteByte(' ')
		sb.WriteString(s)
	}
	ids := func(from int) {
		for i := from; i < len(ops); i++ {
			word(id(ops[i]))
		}
	}
	literals := func(from int) {
		for i := from; i < len(ops); i++ {
			word(strconv.FormatUint(uint64(ops[i]), 10))
		}
	}
	str := func(from int) int {
		s, n := inst.LiteralString(from)
		word(strconv.Quote(s))
		return from + n
	}
	need := func(n int) bool {
		if len(ops) < n {
			word("<truncated>")
			return false
		}
		return true
	}

	switch inst.Opcode {
	case OpCapability:
		if need(1) {
			word(lookup(capabilities, ops[0]))
		}

	case OpExtension, OpSourceExtension:
		str(0)

	case OpExtInstImport, OpString:
		if need(1) {
			str(1)
		}

	case OpSource:
		if need(2) {
			word(lookup(sourceLanguages, ops[0]))
			word(strconv.FormatUint(uint64(ops[1]), 10))
			ids(2)
		}

	case OpMemoryModel:
		if need(2) {
			word(lookup(addressingModels, ops[0]))
			word(lookup(memoryModels, ops[1]))
		}

	case OpEntryPoint:
		if need(2) {
			word(lookup(executionModels, ops[0]))
			word(id(ops[1]))
			ids(str(2))
		}

	case OpExecutionMode:
		if need(2) {
			word(id(ops[0]))
			word(lookup(executionModes, ops[1]))
			literals(2)
		}

	case OpName:
		if need(1) {
			word(id(ops[0]))
			str(1)
		}

	case OpMemberName:
		if need(2) {
			word(id(ops[0]))
			word(strconv.FormatUint(uint64(ops[1]), 10))
			str(2)
		}

	case OpDecorate:
		if need(2) {
			word(id(ops[0]))
			word(lookup(decorations, ops[1]))
			if ops[1] == decorationBuiltIn && len(ops) > 2 {
				word(lookup(builtins, ops[2]))
			} else {
				literals(2)
			}
		}

	case OpMemberDecorate:
		if need(3) {
			word(id(ops[0]))
			word(strconv.FormatUint(uint64(ops[1]), 10))
			word(lookup(decorations, ops[2]))
			literals(3)
		}

	case OpTypeInt, OpTypeFloat:
		literals(1)

	case OpTypeVector, OpTypeMatrix:
		if need(3) {
			word(id(ops[1]))
			literals(2)
		}

	case OpTypeImage:
		if need(8) {
			word(id(ops[1]))
			word(lookup(dims, ops[2]))
			literals(3)
		}

	case OpTypePointer:
		if need(3) {
			word(lookup(storageClasses, ops[1]))
			word(id(ops[2]))
		}

	case OpConstant:
		if need(2) {
			word(id(ops[0]))
			literals(2)
		}

	case OpFunction:
		if need(4) {
			word(id(ops[0]))
			word("None")
			word(id(ops[3]))
		}

	case OpVariable:
		if need(3) {
			word(id(ops[0]))
			word(lookup(storageClasses, ops[2]))
			ids(3)
		}

	case OpCompositeExtract:
		if need(3) {
			word(id(ops[0]))
			word(id(ops[2]))
			literals(3)
		}

	case OpExtInst:
		if need(4) {
			word(id(ops[0]))
			word(id(ops[2]))
			word(strconv.FormatUint(uint64(ops[3]), 10))
			ids(4)
		}

	default:
		switch shapeOf(inst.Opcode) {
		case result:
			ids(1)
		case typedResult:
			if need(2) {
				word(id(ops[0]))
				ids(2)
			}
		default:
			ids(0)
		}
	}
	return sb.String()
}
