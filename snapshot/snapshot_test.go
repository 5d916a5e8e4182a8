// Package snapshot_test provides golden snapshot tests for the SPIR-V compiler.
//
// For each TOML program description in testdata/in/, the test compiles it,
// checks the structural properties every module must have, and compares the
// disassembly with the golden file in testdata/golden/ when one exists.
//
// To regenerate golden files after intentional changes:
//
//	UPDATE_GOLDEN=1 go test ./snapshot/...
package snapshot_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/gogpu/spvgen/disasm"
	"github.com/gogpu/spvgen/ir"
	"github.com/gogpu/spvgen/spirv"
)

// ---------------------------------------------------------------------------
// Test Runner
// ---------------------------------------------------------------------------

// programFile represents an input description loaded from disk.
type programFile struct {
	name string // base name without extension (e.g., "fragment_tint")
	path string
}

// TestSnapshots is the main golden snapshot test.
func TestSnapshots(t *testing.T) {
	programs := loadInputPrograms(t, filepath.Join("testdata", "in"))
	if len(programs) == 0 {
		t.Fatal("no input programs found in testdata/in/")
	}

	for i := range programs {
		p := &programs[i]
		t.Run(p.name, func(t *testing.T) {
			program, err := ir.LoadTOML(p.path)
			if err != nil {
				t.Fatalf("load %s: %v", p.path, err)
			}
			if errs, err := ir.Validate(program); err != nil || len(errs) > 0 {
				t.Fatalf("validate %s: %v %v", p.name, err, errs)
			}

			words, err := spirv.Compile(program, spirv.DefaultOptions())
			if err != nil {
				t.Fatalf("compile %s: %v", p.name, err)
			}
			module, err := disasm.Decode(words)
			if err != nil {
				t.Fatalf("decode %s: %v", p.name, err)
			}

			checkIDs(t, module)
			checkLayout(t, module)
			checkEntryPoint(t, program, module)

			compareGolden(t, filepath.Join("testdata", "golden", p.name+".spvasm"), module.Text())
		})
	}
}

func loadInputPrograms(t *testing.T, dir string) []programFile {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read input dir: %v", err)
	}

	var programs []programFile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		programs = append(programs, programFile{
			name: strings.TrimSuffix(e.Name(), ".toml"),
			path: filepath.Join(dir, e.Name()),
		})
	}
	sort.Slice(programs, func(i, j int) bool { return programs[i].name < programs[j].name })
	return programs
}

// ---------------------------------------------------------------------------
// Structural Checks
// ---------------------------------------------------------------------------

// checkIDs verifies every id in [1, bound) is defined exactly once.
func checkIDs(t *testing.T, module *disasm.Module) {
	t.Helper()

	seen := make(map[uint32]bool)
	for _, id := range module.ResultIDs() {
		if id == 0 || id >= module.Header.Bound {
			t.Errorf("result id %d outside [1, %d)", id, module.Header.Bound)
		}
		if seen[id] {
			t.Errorf("result id %d defined twice", id)
		}
		seen[id] = true
	}
	if uint32(len(seen)) != module.Header.Bound-1 {
		t.Errorf("%d ids defined, bound is %d", len(seen), module.Header.Bound)
	}
}

// checkLayout verifies the logical section order.
func checkLayout(t *testing.T, module *disasm.Module) {
	t.Helper()

	rank := func(op uint16) int {
		switch op {
		case disasm.OpCapability:
			return 0
		case disasm.OpExtension:
			return 1
		case disasm.OpExtInstImport:
			return 2
		case disasm.OpMemoryModel:
			return 3
		case disasm.OpEntryPoint:
			return 4
		case disasm.OpExecutionMode:
			return 5
		case disasm.OpString, disasm.OpSource, disasm.OpSourceExtension:
			return 6
		case disasm.OpName, disasm.OpMemberName:
			return 7
		case disasm.OpDecorate, disasm.OpMemberDecorate:
			return 8
		case disasm.OpFunction:
			return 10
		default:
			return 9 // types, constants, variables and function bodies
		}
	}

	current := 0
	inFunction := false
	for _, inst := range module.Instructions {
		if inst.Opcode == disasm.OpFunction {
			inFunction = true
		}
		if inFunction {
			continue
		}
		r := rank(inst.Opcode)
		if r < current {
			t.Errorf("%s at word %d is out of section order", inst.Name(), inst.Offset)
		}
		current = r
	}
}

// checkEntryPoint verifies the entry point lists exactly the Input and
// Output variables.
func checkEntryPoint(t *testing.T, program *ir.Program, module *disasm.Module) {
	t.Helper()

	wantModels := len(spirv.ExecutionModels(program.Stage))
	entries := module.Find(disasm.OpEntryPoint)
	if len(entries) != wantModels {
		t.Fatalf("got %d entry points, want %d", len(entries), wantModels)
	}

	var interfaceVars []uint32
	for _, v := range module.Find(disasm.OpVariable) {
		switch disasm.StorageClassName(v.Operands[2]) {
		case "Input", "Output":
			interfaceVars = append(interfaceVars, v.Operands[1])
		}
	}

	for _, entry := range entries {
		name, n := entry.LiteralString(2)
		if name != ir.EntryPointName {
			t.Errorf("entry point name = %q", name)
		}
		listed := entry.Operands[2+n:]
		if fmt.Sprint(listed) != fmt.Sprint(interfaceVars) {
			t.Errorf("entry point interfaces = %v, want %v", listed, interfaceVars)
		}
	}
}

// ---------------------------------------------------------------------------
// Golden File Comparison
// ---------------------------------------------------------------------------

// compareGolden compares actual output with the golden file at path.
// If UPDATE_GOLDEN is set, writes actual output as the new golden file.
// Programs without a golden file are checked structurally only.
func compareGolden(t *testing.T, path, actual string) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDEN") != "" {
		if mkErr := os.MkdirAll(filepath.Dir(path), 0o755); mkErr != nil {
			t.Fatalf("create golden dir: %v", mkErr)
		}
		if wErr := os.WriteFile(path, []byte(actual), 0o644); wErr != nil {
			t.Fatalf("write golden file: %v", wErr)
		}
		t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		t.Logf("no golden file %s; run with UPDATE_GOLDEN=1 to create it", path)
		return
	}
	if err != nil {
		t.Fatalf("read golden file %s: %v", path, err)
	}

	// Git may convert \n to \r\n on Windows checkout.
	expectedStr := strings.ReplaceAll(string(expected), "\r\n", "\n")
	actualStr := strings.ReplaceAll(actual, "\r\n", "\n")

	if expectedStr != actualStr {
		t.Errorf("output differs from golden %s:\n%s", path, diffStrings(expectedStr, actualStr))
	}
}

// diffStrings shows the first differing line with surrounding context.
func diffStrings(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	maxLines := max(len(expectedLines), len(actualLines))
	line := func(lines []string, i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	firstDiff := -1
	for i := 0; i < maxLines; i++ {
		if line(expectedLines, i) != line(actualLines, i) {
			firstDiff = i
			break
		}
	}
	if firstDiff < 0 {
		return "(no difference found)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "first difference at line %d:\n", firstDiff+1)
	fmt.Fprintf(&sb, "  expected lines: %d\n", len(expectedLines))
	fmt.Fprintf(&sb, "  actual lines:   %d\n\n", len(actualLines))

	const contextLines = 3
	start := max(firstDiff-contextLines, 0)
	end := min(firstDiff+contextLines+1, maxLines)
	for i := start; i < end; i++ {
		e, a := line(expectedLines, i), line(actualLines, i)
		prefix := " "
		if e != a {
			prefix = "!"
		}
		fmt.Fprintf(&sb, "%s %4d expected: %s\n", prefix, i+1, e)
		if e != a {
			fmt.Fprintf(&sb, "%s %4d actual:   %s\n", prefix, i+1, a)
		}
	}
	return sb.String()
}
