// Command spvdis disassembles SPIR-V binaries to text.
//
// Usage:
//
//	spvdis [options] <file.spv>
package main

import (
	"fmt"
	"os"

	"github.com/ComedicChimera/olive"

	"github.com/gogpu/spvgen/disasm"
	"github.com/gogpu/spvgen/internal/report"
)

func main() {
	cli := olive.NewCLI("spvdis", "spvdis prints a SPIR-V binary as assembly text", true)
	cli.AddPrimaryArg("input", "the SPIR-V binary", true)
	cli.AddStringArg("output", "o", "the output file (default: stdout)", false)
	cli.AddFlag("names", "n", "list debug names after the listing")

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		report.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(1)
	}

	if err := run(result); err != nil {
		report.PrintErrorMessage("spvdis Error", err)
		os.Exit(1)
	}
}

func run(result *olive.ArgParseResult) error {
	inputPath, _ := result.PrimaryArg()
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	module, err := disasm.DecodeBytes(data)
	if err != nil {
		return err
	}

	out := os.Stdout
	if path, ok := result.Arguments["output"]; ok {
		f, err := os.Create(path.(string))
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := disasm.Write(out, module); err != nil {
		return err
	}

	if result.HasFlag("names") {
		names := module.Names()
		for _, id := range module.ResultIDs() {
			if name, ok := names[id]; ok {
				fmt.Fprintf(out, "; %%%d %s\n", id, name)
			}
		}
	}
	return nil
}
