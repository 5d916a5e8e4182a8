// Package spirv compiles program descriptions to SPIR-V.
//
// SPIR-V is the standard intermediate language for GPU shaders,
// used by Vulkan, OpenCL, and other APIs.
//
// # Compiler
//
// The Compiler translates one ir.Program to a SPIR-V word stream:
//
//	words, err := spirv.Compile(program, spirv.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//
// A Compiler instance compiles exactly once. Compilation:
//   - declares the Shader capability and the stage capabilities
//   - resolves each field's layout to a storage class and decorations
//   - emits one function per method by replaying its operand stack
//   - registers "main" as the entry point with its Input and Output variables
//
// Types and constants are interned: each distinct type, storage class
// pointer, unsigned constant and float constant is defined once.
//
// # Binary Writer
//
// ModuleBuilder buffers instructions per logical section and concatenates
// them in the fixed SPIR-V order on Assemble:
//
//	builder := spirv.NewModuleBuilder(spirv.Version1_3)
//	builder.AddCapability(spirv.CapabilityShader)
//	builder.SetMemoryModel(spirv.AddressingModelLogical, spirv.MemoryModelGLSL450)
//
//	floatType := builder.AddTypeFloat(32)
//	vec4Type := builder.AddTypeVector(floatType, 4)
//
//	binary := builder.Build()
//
// # Module Layout
//
// Modules consist of:
//   - Header (magic, version, generator, bound, schema)
//   - Capabilities
//   - Extensions
//   - Extended instruction imports (GLSL.std.450)
//   - Memory model
//   - Entry points
//   - Execution modes
//   - Debug information (source, names)
//   - Annotations (decorations)
//   - Types, constants and global variables
//   - Functions
//
// # Errors
//
// Compilation errors are *Error values; use KindOf or IsUnsupported to
// inspect them.
//
// # References
//
// SPIR-V Specification: https://registry.khronos.org/SPIR-V/specs/unified1/SPIRV.html
package spirv
