package spirv

// Version represents a SPIR-V version.
type Version struct {
	Major uint8
	Minor uint8
}

// Common SPIR-V versions
var (
	Version1_0 = Version{1, 0}
	Version1_2 = Version{1, 2}
	Version1_3 = Version{1, 3}
	Version1_4 = Version{1, 4}
	Version1_5 = Version{1, 5}
	Version1_6 = Version{1, 6}
)

// Options configures SPIR-V generation.
type Options struct {
	// Version is the SPIR-V version written to the header
	Version Version

	// Capabilities are additional capabilities to declare
	Capabilities []Capability

	// Extensions are declared with OpExtension
	Extensions []string

	// SourceFile is recorded in an OpString referenced by OpSource.
	// Empty omits it.
	SourceFile string

	// Logger receives non-fatal diagnostics. Nil discards them.
	Logger Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Version: Version1_2,
	}
}

// Logger receives warnings raised while compiling.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// SPIR-V magic number and constants
const (
	MagicNumber = 0x07230203
	GeneratorID = 13<<16 | 1
)

// Capability represents a SPIR-V capability.
type Capability uint32

const (
	CapabilityMatrix            Capability = 0
	CapabilityShader            Capability = 1
	CapabilityGeometry          Capability = 2
	CapabilityTessellation      Capability = 3
	CapabilityFloat16           Capability = 9
	CapabilityFloat64           Capability = 10
	CapabilityInt64             Capability = 11
	CapabilityInt16             Capability = 22
	CapabilityClipDistance      Capability = 32
	CapabilityCullDistance      Capability = 33
	CapabilitySampleRateShading Capability = 35
	CapabilityInt8              Capability = 39
)

// OpCode represents a SPIR-V opcode.
type OpCode uint16

const (
	OpNop                 OpCode = 0
	OpSource              OpCode = 3
	OpSourceExtension     OpCode = 4
	OpName                OpCode = 5
	OpMemberName          OpCode = 6
	OpString              OpCode = 7
	OpExtension           OpCode = 10
	OpExtInstImport       OpCode = 11
	OpExtInst             OpCode = 12
	OpMemoryModel         OpCode = 14
	OpEntryPoint          OpCode = 15
	OpExecutionMode       OpCode = 16
	OpCapability          OpCode = 17
	OpTypeVoid            OpCode = 19
	OpTypeBool            OpCode = 20
	OpTypeInt             OpCode = 21
	OpTypeFloat           OpCode = 22
	OpTypeVector          OpCode = 23
	OpTypeMatrix          OpCode = 24
	OpTypeImage           OpCode = 25
	OpTypeSampler         OpCode = 26
	OpTypeSampledImage    OpCode = 27
	OpTypeArray           OpCode = 28
	OpTypeStruct          OpCode = 30
	OpTypePointer         OpCode = 32
	OpTypeFunction        OpCode = 33
	OpConstantTrue        OpCode = 41
	OpConstantFalse       OpCode = 42
	OpConstant            OpCode = 43
	OpConstantComposite   OpCode = 44
	OpFunction            OpCode = 54
	OpFunctionParameter   OpCode = 55
	OpFunctionEnd         OpCode = 56
	OpFunctionCall        OpCode = 57
	OpVariable            OpCode = 59
	OpLoad                OpCode = 61
	OpStore               OpCode = 62
	OpAccessChain         OpCode = 65
	OpDecorate            OpCode = 71
	OpMemberDecorate      OpCode = 72
	OpDecorationGroup     OpCode = 73
	OpGroupDecorate       OpCode = 74
	OpGroupMemberDecorate OpCode = 75
	OpVectorShuffle       OpCode = 79
	OpCompositeConstruct  OpCode = 80
	OpCompositeExtract    OpCode = 81
	OpFNegate             OpCode = 127
	OpIAdd                OpCode = 128
	OpFAdd                OpCode = 129
	OpISub                OpCode = 130
	OpFSub                OpCode = 131
	OpIMul                OpCode = 132
	OpFMul                OpCode = 133
	OpUDiv                OpCode = 134
	OpSDiv                OpCode = 135
	OpFDiv                OpCode = 136
	OpVectorTimesScalar   OpCode = 142
	OpMatrixTimesScalar   OpCode = 143
	OpVectorTimesMatrix   OpCode = 144
	OpMatrixTimesVector   OpCode = 145
	OpMatrixTimesMatrix   OpCode = 146
	OpDot                 OpCode = 148
	OpLabel               OpCode = 248
	OpBranch              OpCode = 249
	OpReturn              OpCode = 253
	OpReturnValue         OpCode = 254
)

// Decoration represents a SPIR-V decoration.
type Decoration uint32

const (
	DecorationSpecID        Decoration = 1
	DecorationBlock         Decoration = 2
	DecorationRowMajor      Decoration = 4
	DecorationColMajor      Decoration = 5
	DecorationArrayStride   Decoration = 6
	DecorationMatrixStride  Decoration = 7
	DecorationBuiltIn       Decoration = 11
	DecorationLocation      Decoration = 30
	DecorationBinding       Decoration = 33
	DecorationDescriptorSet Decoration = 34
	DecorationOffset        Decoration = 35
)

// StorageClass represents a SPIR-V storage class.
type StorageClass uint32

const (
	StorageClassUniformConstant StorageClass = 0
	StorageClassInput           StorageClass = 1
	StorageClassUniform         StorageClass = 2
	StorageClassOutput          StorageClass = 3
	StorageClassWorkgroup       StorageClass = 4
	StorageClassPrivate         StorageClass = 6
	StorageClassFunction        StorageClass = 7
	StorageClassPushConstant    StorageClass = 9
	StorageClassStorageBuffer   StorageClass = 12

	// StorageClassNone marks type keys of non-pointer types. It is never encoded.
	StorageClassNone StorageClass = 0xFFFFFFFF
)

// String returns the storage class name.
func (s StorageClass) String() string {
	switch s {
	case StorageClassUniformConstant:
		return "UniformConstant"
	case StorageClassInput:
		return "Input"
	case StorageClassUniform:
		return "Uniform"
	case StorageClassOutput:
		return "Output"
	case StorageClassWorkgroup:
		return "Workgroup"
	case StorageClassPrivate:
		return "Private"
	case StorageClassFunction:
		return "Function"
	case StorageClassPushConstant:
		return "PushConstant"
	case StorageClassStorageBuffer:
		return "StorageBuffer"
	case StorageClassNone:
		return "None"
	default:
		return "Unknown"
	}
}

// ExecutionModel represents a shader stage.
type ExecutionModel uint32

const (
	ExecutionModelVertex                 ExecutionModel = 0
	ExecutionModelTessellationControl    ExecutionModel = 1
	ExecutionModelTessellationEvaluation ExecutionModel = 2
	ExecutionModelGeometry               ExecutionModel = 3
	ExecutionModelFragment               ExecutionModel = 4
	ExecutionModelGLCompute              ExecutionModel = 5
	ExecutionModelKernel                 ExecutionModel = 6
)

// ExecutionMode represents an entry point execution mode.
type ExecutionMode uint32

const (
	ExecutionModeInvocations             ExecutionMode = 0
	ExecutionModeSpacingEqual            ExecutionMode = 1
	ExecutionModeVertexOrderCcw          ExecutionMode = 5
	ExecutionModePixelCenterInteger      ExecutionMode = 6
	ExecutionModeOriginUpperLeft         ExecutionMode = 7
	ExecutionModeOriginLowerLeft         ExecutionMode = 8
	ExecutionModeEarlyFragmentTests      ExecutionMode = 9
	ExecutionModeLocalSize               ExecutionMode = 17
	ExecutionModeInputPoints             ExecutionMode = 19
	ExecutionModeInputLines              ExecutionMode = 20
	ExecutionModeInputLinesAdjacency     ExecutionMode = 21
	ExecutionModeTriangles               ExecutionMode = 22
	ExecutionModeInputTrianglesAdjacency ExecutionMode = 23
	ExecutionModeOutputVertices          ExecutionMode = 26
	ExecutionModeOutputPoints            ExecutionMode = 27
	ExecutionModeOutputLineStrip         ExecutionMode = 28
	ExecutionModeOutputTriangleStrip     ExecutionMode = 29
)

// AddressingModel represents a SPIR-V addressing model.
type AddressingModel uint32

const (
	AddressingModelLogical AddressingModel = 0
)

// MemoryModel represents a SPIR-V memory model.
type MemoryModel uint32

const (
	MemoryModelSimple  MemoryModel = 0
	MemoryModelGLSL450 MemoryModel = 1
)

// FunctionControl represents function control flags.
type FunctionControl uint32

const (
	FunctionControlNone FunctionControl = 0
)

// SourceLanguage represents the language recorded by OpSource.
type SourceLanguage uint32

const (
	SourceLanguageUnknown SourceLanguage = 0
	SourceLanguageGLSL    SourceLanguage = 2
)

// Dim represents an image dimensionality.
type Dim uint32

const (
	Dim1D Dim = 0
	Dim2D Dim = 1
	Dim3D Dim = 2
)

// ImageFormat represents an image texel format.
type ImageFormat uint32

const (
	ImageFormatUnknown ImageFormat = 0
)

// BuiltIn represents a SPIR-V built-in variable.
type BuiltIn uint32

const (
	BuiltInPosition             BuiltIn = 0
	BuiltInPointSize            BuiltIn = 1
	BuiltInClipDistance         BuiltIn = 3
	BuiltInCullDistance         BuiltIn = 4
	BuiltInPrimitiveID          BuiltIn = 7
	BuiltInInvocationID         BuiltIn = 8
	BuiltInLayer                BuiltIn = 9
	BuiltInViewportIndex        BuiltIn = 10
	BuiltInTessLevelOuter       BuiltIn = 11
	BuiltInTessLevelInner       BuiltIn = 12
	BuiltInTessCoord            BuiltIn = 13
	BuiltInPatchVertices        BuiltIn = 14
	BuiltInFragCoord            BuiltIn = 15
	BuiltInPointCoord           BuiltIn = 16
	BuiltInFrontFacing          BuiltIn = 17
	BuiltInSampleID             BuiltIn = 18
	BuiltInSamplePosition       BuiltIn = 19
	BuiltInSampleMask           BuiltIn = 20
	BuiltInFragDepth            BuiltIn = 22
	BuiltInHelperInvocation     BuiltIn = 23
	BuiltInNumWorkgroups        BuiltIn = 24
	BuiltInWorkgroupSize        BuiltIn = 25
	BuiltInWorkgroupID          BuiltIn = 26
	BuiltInLocalInvocationID    BuiltIn = 27
	BuiltInGlobalInvocationID   BuiltIn = 28
	BuiltInLocalInvocationIndex BuiltIn = 29
	BuiltInVertexIndex          BuiltIn = 42
	BuiltInInstanceIndex        BuiltIn = 43
)

// GLSLstd450 instruction numbers.
const (
	GLSLstd450Sin         = 13
	GLSLstd450Cos         = 14
	GLSLstd450InverseSqrt = 32
)

// GLSLStd450Name is the extended instruction set imported for math functions.
const GLSLStd450Name = "GLSL.std.450"

// Fixed source information recorded in the debug section.
const (
	SourceVersion = 400
)

// SourceExtensions are recorded with OpSourceExtension in every module.
var SourceExtensions = []string{
	"GL_ARB_separate_shader_objects",
	"GL_ARB_shading_language_420pack",
}
