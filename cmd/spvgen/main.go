// Command spvgen compiles TOML program descriptions to SPIR-V.
//
// Usage:
//
//	spvgen build [options] <input.toml>
//	spvgen check <input.toml>
//	spvgen version
//
// Examples:
//
//	spvgen build shader.toml                  # Compile to shader.spv
//	spvgen build -o out.spv shader.toml       # Compile to out.spv
//	spvgen build -d shader.toml               # Also print the disassembly
//	spvgen check shader.toml                  # Validate only
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ComedicChimera/olive"

	"github.com/gogpu/spvgen"
	"github.com/gogpu/spvgen/internal/report"
	"github.com/gogpu/spvgen/ir"
	"github.com/gogpu/spvgen/spirv"
)

const spvgenVersion = "0.1.0-dev"

var versions = map[string]spirv.Version{
	"1.0": spirv.Version1_0,
	"1.2": spirv.Version1_2,
	"1.3": spirv.Version1_3,
	"1.4": spirv.Version1_4,
	"1.5": spirv.Version1_5,
	"1.6": spirv.Version1_6,
}

func main() {
	cli := olive.NewCLI("spvgen", "spvgen compiles shader program descriptions to SPIR-V", true)

	buildCmd := cli.AddSubcommand("build", "compile a program description", true)
	buildCmd.AddPrimaryArg("input", "the TOML program description", true)
	buildCmd.AddStringArg("output", "o", "the output file (default: input with .spv extension)", false)
	versionArg := buildCmd.AddSelectorArg("spirv", "sv", "the SPIR-V version written to the header", false,
		[]string{"1.0", "1.2", "1.3", "1.4", "1.5", "1.6"})
	versionArg.SetDefaultValue("1.2")
	buildCmd.AddFlag("no-validate", "nv", "skip description validation")
	buildCmd.AddFlag("disassemble", "d", "print the compiled module as text")

	checkCmd := cli.AddSubcommand("check", "validate a program description", true)
	checkCmd.AddPrimaryArg("input", "the TOML program description", true)

	cli.AddSubcommand("version", "print the spvgen version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(1)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		if !execBuildCommand(subResult) {
			os.Exit(1)
		}
	case "check":
		if !execCheckCommand(subResult) {
			os.Exit(1)
		}
	case "version":
		report.PrintInfoMessage("spvgen Version", spvgenVersion)
	}
}

// execBuildCommand executes the build subcommand and reports all errors.
func execBuildCommand(result *olive.ArgParseResult) bool {
	inputPath, _ := result.PrimaryArg()

	outputPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".spv"
	if out, ok := result.Arguments["output"]; ok {
		outputPath = out.(string)
	}

	opts := spvgen.DefaultOptions()
	if v, ok := result.Arguments["spirv"]; ok {
		opts.SPIRVVersion = versions[v.(string)]
	}
	opts.Validate = !result.HasFlag("no-validate")
	opts.SourceFile = filepath.Base(inputPath)

	console := report.NewConsole("Layout")
	opts.Logger = console

	program, err := ir.LoadTOML(inputPath)
	if err != nil {
		report.PrintErrorMessage("Description Error", err)
		return false
	}

	binary, err := spvgen.CompileWithOptions(program, opts)
	if err != nil {
		tag := "Compile Error"
		var spvErr *spirv.Error
		if errors.As(err, &spvErr) {
			tag = spvErr.Kind.String() + " Error"
		}
		report.PrintErrorMessage(tag, err)
		return false
	}

	if err := os.WriteFile(outputPath, binary, 0o644); err != nil {
		report.PrintErrorMessage("Output Error", err)
		return false
	}

	if result.HasFlag("disassemble") {
		text, err := spvgen.Disassemble(binary)
		if err != nil {
			report.PrintErrorMessage("Disassembly Error", err)
			return false
		}
		fmt.Print(text)
	}

	msg := fmt.Sprintf("compiled %s to %s (%d bytes)", inputPath, outputPath, len(binary))
	if n := console.Warnings(); n > 0 {
		msg += fmt.Sprintf(", %d warning(s)", n)
	}
	report.PrintInfoMessage("Success", msg)
	return true
}

// execCheckCommand executes the check subcommand.
func execCheckCommand(result *olive.ArgParseResult) bool {
	inputPath, _ := result.PrimaryArg()

	program, err := ir.LoadTOML(inputPath)
	if err != nil {
		report.PrintErrorMessage("Description Error", err)
		return false
	}

	validationErrors, err := spvgen.Validate(program)
	if err != nil {
		report.PrintErrorMessage("Validation Error", err)
		return false
	}
	for _, verr := range validationErrors {
		report.PrintErrorMessage("Validation Error", verr)
	}
	if len(validationErrors) > 0 {
		return false
	}

	report.PrintInfoMessage("OK", fmt.Sprintf("%s: %d field(s), %d method(s)", inputPath, len(program.Fields), len(program.Methods)))
	return true
}
