// Package ir defines the program description consumed by the SPIR-V compiler.
//
// A description is an already-parsed shader class: the stage kind, the global
// field declarations with their layout metadata, and the methods with their
// local variables and a stack-machine operation sequence.
//
// # Structure
//
// A Program holds:
//   - Stage and StageOptions: the shader stage and its layout qualifiers
//   - Fields: global declarations with an optional Layout
//   - Methods: functions whose Body is a list of Operations
//
// The method named "main" becomes the stage entry point.
//
// # Types
//
// Types form a closed set (Bool, Int, Float, Vector, Matrix4, Array, Pointer,
// SampledImage2D, Struct, Void, Enum, Char, String, DateTime, Null). Enums and
// characters compile as their underlying integers; see Underlying.
// Signature gives a structural key for type identity.
//
// # Method Bodies
//
// Bodies are straight-line. Each operation pops its operands from an operand
// stack and pushes its result:
//
//	LoadField{0} Deref Extract{1} StoreField{2}
//
// loads field 0, reads its second component and stores it into field 2.
//
// # Loading Descriptions
//
// Descriptions can be built in Go or decoded from TOML with LoadTOML and
// DecodeTOML. Validate reports structural mistakes before compilation.
package ir
