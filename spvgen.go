// Package spvgen compiles shader program descriptions to SPIR-V.
//
// A program description is an already-parsed shader stage: its stage kind,
// its global fields with layout metadata, and its methods as straight-line
// stack-machine operations. Descriptions are built in Go with the ir package
// or decoded from TOML.
//
// Example usage:
//
//	program := &ir.Program{
//		Stage: ir.StageFragment,
//		Fields: []ir.Field{
//			{Name: "color", Type: ir.TypeVec4, Layout: &ir.Layout{Direction: ir.DirectionOutput}},
//		},
//		Methods: []ir.Method{{Name: "main"}},
//	}
//	binary, err := spvgen.Compile(program)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For lower-level access use the spirv package directly:
//
//	words, err := spirv.Compile(program, spirv.DefaultOptions())
package spvgen

import (
	"fmt"
	"strings"

	"github.com/gogpu/spvgen/disasm"
	"github.com/gogpu/spvgen/internal/report"
	"github.com/gogpu/spvgen/ir"
	"github.com/gogpu/spvgen/spirv"
)

// CompileOptions configures shader compilation.
type CompileOptions struct {
	// SPIRVVersion is the target SPIR-V version (default: 1.2)
	SPIRVVersion spirv.Version

	// Capabilities are declared in addition to the ones the program needs
	Capabilities []spirv.Capability

	// Extensions are declared with OpExtension
	Extensions []string

	// SourceFile names the description file in the module's debug information
	SourceFile string

	// Validate enables description validation before code generation
	Validate bool

	// Logger receives warnings; nil prints them to the console
	Logger spirv.Logger
}

// DefaultOptions returns sensible default options.
func DefaultOptions() CompileOptions {
	return CompileOptions{
		SPIRVVersion: spirv.Version1_2,
		Validate:     true,
	}
}

// Compile compiles a program description to SPIR-V binary using default options.
func Compile(program *ir.Program) ([]byte, error) {
	return CompileWithOptions(program, DefaultOptions())
}

// CompileWithOptions compiles a program description to SPIR-V binary with custom options.
func CompileWithOptions(program *ir.Program, opts CompileOptions) ([]byte, error) {
	words, err := CompileWords(program, opts)
	if err != nil {
		return nil, err
	}
	return spirv.WordsToBytes(words), nil
}

// CompileWords compiles a program description to SPIR-V words.
//
// The compilation pipeline is:
//  1. Validate the description (if enabled)
//  2. Resolve global layouts and emit types, constants and variables
//  3. Translate method bodies
//  4. Assemble the module
func CompileWords(program *ir.Program, opts CompileOptions) ([]uint32, error) {
	if opts.Validate {
		validationErrors, err := Validate(program)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if len(validationErrors) > 0 {
			return nil, fmt.Errorf("validation failed: %w", validationErrors[0])
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = report.NewConsole("spvgen")
	}
	version := opts.SPIRVVersion
	if version == (spirv.Version{}) {
		version = spirv.Version1_2
	}

	words, err := spirv.Compile(program, spirv.Options{
		Version:      version,
		Capabilities: opts.Capabilities,
		Extensions:   opts.Extensions,
		SourceFile:   opts.SourceFile,
		Logger:       logger,
	})
	if err != nil {
		return nil, fmt.Errorf("SPIR-V generation error: %w", err)
	}
	return words, nil
}

// CompileTOML decodes a TOML program description and compiles it.
func CompileTOML(data []byte, opts CompileOptions) ([]byte, error) {
	program, err := ir.DecodeTOML(data)
	if err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	return CompileWithOptions(program, opts)
}

// Validate checks a program description for structural mistakes.
func Validate(program *ir.Program) ([]ir.ValidationError, error) {
	return ir.Validate(program)
}

// Disassemble renders a SPIR-V binary as assembly text.
func Disassemble(binary []byte) (string, error) {
	module, err := disasm.DecodeBytes(binary)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := disasm.Write(&sb, module); err != nil {
		return "", err
	}
	return sb.String(), nil
}
