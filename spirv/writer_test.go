package spirv

import (
	"encoding/binary"
	"testing"
)

func TestPackOpcode(t *testing.T) {
	tests := []struct {
		name      string
		wordCount uint16
		op        OpCode
		want      uint32
	}{
		{"capability", 2, OpCapability, 0x00020011},
		{"return", 1, OpReturn, 0x000100FD},
		{"memory model", 3, OpMemoryModel, 0x0003000E},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PackOpcode(tt.wordCount, tt.op); got != tt.want {
				t.Errorf("PackOpcode(%d, %d) = 0x%08X, want 0x%08X", tt.wordCount, tt.op, got, tt.want)
			}
		})
	}
}

func TestEncodeString(t *testing.T) {
	tests := []struct {
		in   string
		want []uint32
	}{
		{"", []uint32{0}},
		{"rgb", []uint32{0x00626772}},
		{"abcd", []uint32{0x64636261, 0}},
		{"main", []uint32{0x6E69616D, 0}},
		{"GLSL.std.450", []uint32{0x4C534C47, 0x6474732E, 0x3035342E, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := EncodeString(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("EncodeString(%q) = %d words, want %d", tt.in, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("word %d: got 0x%08X, want 0x%08X", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEncodeString_UTF8(t *testing.T) {
	// "café" is five bytes: c a f 0xC3 0xA9
	got := EncodeString("café")
	want := []uint32{0xC3666163, 0x000000A9}
	if len(got) != len(want) {
		t.Fatalf("EncodeString = %d words, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d: got 0x%08X, want 0x%08X", i, got[i], want[i])
		}
	}
}

func TestInstructionBuilder_String(t *testing.T) {
	builder := NewInstructionBuilder()
	builder.AddWord(7)
	builder.AddString("hello")

	inst := builder.Build(OpName)
	encoded := inst.Encode()

	wordCount := encoded[0] >> 16
	opcode := OpCode(encoded[0] & 0xFFFF)
	if opcode != OpName {
		t.Errorf("Wrong opcode: got %d, want %d", opcode, OpName)
	}
	// opcode word, target id, "hell", "o\0\0\0"
	if wordCount != 4 || len(encoded) != 4 {
		t.Errorf("word count = %d (len %d), want 4", wordCount, len(encoded))
	}
}

func TestIDAllocator(t *testing.T) {
	ids := NewIDAllocator()
	for want := uint32(1); want <= 3; want++ {
		if got := ids.Next(); got != want {
			t.Fatalf("Next() = %d, want %d", got, want)
		}
	}
	if bound := ids.Bound(); bound != 4 {
		t.Errorf("Bound() = %d, want 4", bound)
	}

	defer func() {
		if recover() == nil {
			t.Error("Next() after Bound() should panic")
		}
	}()
	ids.Next()
}

func TestModuleBuilder_Header(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)
	builder.AddCapability(CapabilityShader)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)

	data := builder.Build()
	if len(data) != 40 {
		t.Fatalf("Module size: got %d bytes, want 40", len(data))
	}

	header := []struct {
		name string
		want uint32
	}{
		{"magic", MagicNumber},
		{"version", 1<<16 | 3<<8},
		{"generator", GeneratorID},
		{"bound", 1},
		{"schema", 0},
	}
	for i, h := range header {
		if got := binary.LittleEndian.Uint32(data[i*4:]); got != h.want {
			t.Errorf("%s: got 0x%08X, want 0x%08X", h.name, got, h.want)
		}
	}
}

func TestModuleBuilder_CapabilityOnce(t *testing.T) {
	builder := NewModuleBuilder(Version1_2)
	builder.AddCapability(CapabilityShader)
	builder.AddCapability(CapabilityShader)
	builder.AddCapability(CapabilityInt64)

	words := builder.Assemble()
	// header + two OpCapability
	if len(words) != 5+2+2 {
		t.Fatalf("got %d words, want 9", len(words))
	}
	if words[6] != uint32(CapabilityShader) || words[8] != uint32(CapabilityInt64) {
		t.Errorf("capabilities = %d, %d", words[6], words[8])
	}
}

func TestModuleBuilder_SectionOrder(t *testing.T) {
	builder := NewModuleBuilder(Version1_2)

	// Emit out of order; Assemble restores the section order.
	voidType := builder.AddTypeVoid()
	funcType := builder.AddTypeFunction(voidType)
	funcID := builder.AddFunction(funcType, voidType, FunctionControlNone)
	builder.AddLabel()
	builder.AddReturn()
	builder.AddFunctionEnd()
	builder.AddName(funcID, "main")
	builder.AddEntryPoint(ExecutionModelVertex, funcID, "main", nil)
	builder.SetMemoryModel(AddressingModelLogical, MemoryModelGLSL450)
	builder.AddCapability(CapabilityShader)

	words := builder.Assemble()

	var opcodes []OpCode
	for i := 5; i < len(words); {
		opcodes = append(opcodes, OpCode(words[i]&0xFFFF))
		i += int(words[i] >> 16)
	}
	want := []OpCode{
		OpCapability, OpMemoryModel, OpEntryPoint, OpName,
		OpTypeVoid, OpTypeFunction, OpFunction, OpLabel, OpReturn, OpFunctionEnd,
	}
	if len(opcodes) != len(want) {
		t.Fatalf("got %d instructions %v, want %v", len(opcodes), opcodes, want)
	}
	for i := range want {
		if opcodes[i] != want[i] {
			t.Errorf("instruction %d: got opcode %d, want %d", i, opcodes[i], want[i])
		}
	}
}

func TestModuleBuilder_IDAllocation(t *testing.T) {
	builder := NewModuleBuilder(Version1_3)

	id1 := builder.AllocID()
	id2 := builder.AllocID()
	id3 := builder.AllocID()

	if id1 >= id2 || id2 >= id3 {
		t.Error("IDs should be strictly increasing")
	}
	if id1 == 0 {
		t.Error("IDs should never be 0")
	}

	words := builder.Assemble()
	if words[3] != id3+1 {
		t.Errorf("bound = %d, want %d", words[3], id3+1)
	}
}

func TestBytesToWords(t *testing.T) {
	words := []uint32{MagicNumber, 0x00010200, GeneratorID}
	got, err := BytesToWords(WordsToBytes(words))
	if err != nil {
		t.Fatalf("BytesToWords failed: %v", err)
	}
	for i := range words {
		if got[i] != words[i] {
			t.Errorf("word %d: got 0x%08X, want 0x%08X", i, got[i], words[i])
		}
	}

	if _, err := BytesToWords([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated binary")
	}
}
