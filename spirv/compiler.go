package spirv

import (
	"github.com/gogpu/spvgen/ir"
)

// EntryPoint describes the registered stage entry point.
type EntryPoint struct {
	Models     []ExecutionModel
	Function   uint32
	Name       string
	Interfaces []uint32
}

// Compiler translates one program description to a SPIR-V module.
// A Compiler owns all of its buffers and compiles exactly once; independent
// compilers may run concurrently.
type Compiler struct {
	options Options
	log     Logger

	builder *ModuleBuilder
	types   *Interner
	exprs   *ExpressionBuilder

	// Global variables in field order
	globals []*Variable

	// Input and Output variable IDs in resolution order
	interfaces []uint32

	functions []*Function
	entry     *EntryPoint
	used      bool
}

// NewCompiler creates a compiler.
func NewCompiler(options Options) *Compiler {
	if options.Version == (Version{}) {
		options.Version = DefaultOptions().Version
	}
	log := options.Logger
	if log == nil {
		log = nopLogger{}
	}
	builder := NewModuleBuilder(options.Version)
	types := NewInterner(builder)
	return &Compiler{
		options: options,
		log:     log,
		builder: builder,
		types:   types,
		exprs:   NewExpressionBuilder(builder, types),
	}
}

// Compile translates a program description to SPIR-V words.
// On error no module is returned.
func Compile(program *ir.Program, options Options) ([]uint32, error) {
	return NewCompiler(options).Compile(program)
}

// Compile translates a program description to SPIR-V words.
func (c *Compiler) Compile(program *ir.Program) ([]uint32, error) {
	if c.used {
		return nil, NewError(ErrInvalidState, "compiler instance already used")
	}
	c.used = true
	if program == nil {
		return nil, NewError(ErrInvalidProgram, "program is nil")
	}
	if len(ExecutionModels(program.Stage)) == 0 {
		return nil, errorf(ErrInvalidProgram, "program %q has unknown stage %d", program.Name, program.Stage)
	}
	if program.Stage == ir.StageGeometry && program.Options.MaxVertices == 0 {
		return nil, errorf(ErrInvalidProgram, "geometry program %q has no output vertex count", program.Name)
	}

	entryIndex := -1
	for i := range program.Methods {
		if program.Methods[i].Name == ir.EntryPointName {
			entryIndex = i
			break
		}
	}
	if entryIndex < 0 {
		return nil, errorf(ErrEntryPointNotFound, "program %q has no %q method", program.Name, ir.EntryPointName)
	}

	// 1. Capabilities
	c.emitCapabilities(program.Stage)

	// 2. Memory model
	c.builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	// 3. Source information
	var file uint32
	if c.options.SourceFile != "" {
		file = c.builder.AddString(c.options.SourceFile)
	}
	c.builder.AddSource(SourceLanguageGLSL, SourceVersion, file)
	for _, ext := range SourceExtensions {
		c.builder.AddSourceExtension(ext)
	}

	// 4. Global variables
	for _, field := range program.Fields {
		v, err := c.declareGlobal(field)
		if err != nil {
			return nil, err
		}
		c.globals = append(c.globals, v)
	}

	// 5. Functions
	for i := range program.Methods {
		fn, err := c.compileMethod(&program.Methods[i])
		if err != nil {
			return nil, err
		}
		c.functions = append(c.functions, fn)
	}

	// 6. Entry point and execution modes (now that we have function IDs)
	c.emitEntryPoint(program, c.functions[entryIndex])

	return c.builder.Assemble(), nil
}

// Globals returns the global variables declared by the last compilation.
func (c *Compiler) Globals() []*Variable {
	return c.globals
}

// Functions returns the functions compiled by the last compilation.
func (c *Compiler) Functions() []*Function {
	return c.functions
}

// EntryPoint returns the registered entry point, or nil before compilation.
func (c *Compiler) EntryPoint() *EntryPoint {
	return c.entry
}

// emitCapabilities adds the required capabilities and the requested extensions.
func (c *Compiler) emitCapabilities(stage ir.Stage) {
	// Shader capability is required for all shader stages
	c.builder.AddCapability(CapabilityShader)

	switch stage {
	case ir.StageGeometry:
		c.builder.AddCapability(CapabilityGeometry)
	case ir.StageTessellation:
		c.builder.AddCapability(CapabilityTessellation)
	}

	// Add user-requested capabilities
	for _, capability := range c.options.Capabilities {
		c.builder.AddCapability(capability)
	}
	for _, ext := range c.options.Extensions {
		c.builder.AddExtension(ext)
	}
}

// ExecutionModels returns the execution models a stage is registered under,
// or nil for an unknown stage.
func ExecutionModels(stage ir.Stage) []ExecutionModel {
	switch stage {
	case ir.StageVertex:
		return []ExecutionModel{ExecutionModelVertex}
	case ir.StageFragment:
		return []ExecutionModel{ExecutionModelFragment}
	case ir.StageGeometry:
		return []ExecutionModel{ExecutionModelGeometry}
	case ir.StageTessellation:
		return []ExecutionModel{ExecutionModelTessellationControl, ExecutionModelTessellationEvaluation}
	case ir.StageCompute:
		return []ExecutionModel{ExecutionModelGLCompute}
	default:
		return nil
	}
}

func (c *Compiler) emitEntryPoint(program *ir.Program, fn *Function) {
	entry := &EntryPoint{
		Models:     ExecutionModels(program.Stage),
		Function:   fn.ID,
		Name:       fn.Name,
		Interfaces: c.interfaces,
	}
	for _, model := range entry.Models {
		c.builder.AddEntryPoint(model, fn.ID, fn.Name, entry.Interfaces)
	}
	c.entry = entry

	opts := program.Options
	switch program.Stage {
	case ir.StageFragment:
		if opts.Origin == ir.OriginLowerLeft {
			c.builder.AddExecutionMode(fn.ID, ExecutionModeOriginLowerLeft)
		} else {
			c.builder.AddExecutionMode(fn.ID, ExecutionModeOriginUpperLeft)
		}
		if opts.PixelCenterInteger {
			c.builder.AddExecutionMode(fn.ID, ExecutionModePixelCenterInteger)
		}
		if opts.EarlyFragmentTests {
			c.builder.AddExecutionMode(fn.ID, ExecutionModeEarlyFragmentTests)
		}

	case ir.StageGeometry:
		c.builder.AddExecutionMode(fn.ID, inputPrimitiveMode(opts.InputPrimitive))
		c.builder.AddExecutionMode(fn.ID, ExecutionModeInvocations, 1)
		c.builder.AddExecutionMode(fn.ID, outputPrimitiveMode(opts.OutputPrimitive))
		c.builder.AddExecutionMode(fn.ID, ExecutionModeOutputVertices, opts.MaxVertices)

	case ir.StageTessellation:
		vertices := opts.PatchVertices
		if vertices == 0 {
			vertices = 3
		}
		c.builder.AddExecutionMode(fn.ID, ExecutionModeOutputVertices, vertices)
		c.builder.AddExecutionMode(fn.ID, ExecutionModeTriangles)

	case ir.StageCompute:
		size := opts.Workgroup
		for i := range size {
			if size[i] == 0 {
				size[i] = 1
			}
		}
		c.builder.AddExecutionMode(fn.ID, ExecutionModeLocalSize, size[0], size[1], size[2])
	}
}

func inputPrimitiveMode(p ir.InputPrimitive) ExecutionMode {
	switch p {
	case ir.InputLines:
		return ExecutionModeInputLines
	case ir.InputLinesAdjacency:
		return ExecutionModeInputLinesAdjacency
	case ir.InputTriangles:
		return ExecutionModeTriangles
	case ir.InputTrianglesAdjacency:
		return ExecutionModeInputTrianglesAdjacency
	default:
		return ExecutionModeInputPoints
	}
}

func outputPrimitiveMode(p ir.OutputPrimitive) ExecutionMode {
	switch p {
	case ir.OutputLineStrip:
		return ExecutionModeOutputLineStrip
	case ir.OutputTriangleStrip:
		return ExecutionModeOutputTriangleStrip
	default:
		return ExecutionModeOutputPoints
	}
}
