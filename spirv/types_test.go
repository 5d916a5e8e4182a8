package spirv

import (
	"testing"

	"github.com/gogpu/spvgen/disasm"
	"github.com/gogpu/spvgen/ir"
)

func newTestInterner() (*ModuleBuilder, *Interner) {
	builder := NewModuleBuilder(Version1_2)
	return builder, NewInterner(builder)
}

func assemble(t *testing.T, builder *ModuleBuilder) *disasm.Module {
	t.Helper()
	module, err := disasm.Decode(builder.Assemble())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	return module
}

func TestInterner_TypeOnce(t *testing.T) {
	builder, in := newTestInterner()

	first, err := in.TypeID(ValueOf(ir.TypeVec4))
	if err != nil {
		t.Fatalf("TypeID failed: %v", err)
	}
	second, err := in.TypeID(ValueOf(ir.Vector{Count: 4}))
	if err != nil {
		t.Fatalf("TypeID failed: %v", err)
	}
	if first != second {
		t.Errorf("vec4 interned twice: %d and %d", first, second)
	}

	module := assemble(t, builder)
	if n := len(module.Find(disasm.OpTypeVector)); n != 1 {
		t.Errorf("got %d OpTypeVector, want 1", n)
	}
	if n := len(module.Find(disasm.OpTypeFloat)); n != 1 {
		t.Errorf("got %d OpTypeFloat, want 1", n)
	}
}

func TestInterner_Underlying(t *testing.T) {
	_, in := newTestInterner()

	direction := ir.Enum{Name: "Direction", Underlying: ir.Int{Width: 32, Signed: true}}
	enumID, err := in.TypeID(ValueOf(direction))
	if err != nil {
		t.Fatalf("TypeID(enum) failed: %v", err)
	}
	intID, err := in.TypeID(ValueOf(ir.TypeInt32))
	if err != nil {
		t.Fatalf("TypeID(int) failed: %v", err)
	}
	if enumID != intID {
		t.Errorf("enum = %d, int32 = %d; want the same id", enumID, intID)
	}

	charID, err := in.TypeID(ValueOf(ir.Char{}))
	if err != nil {
		t.Fatalf("TypeID(char) failed: %v", err)
	}
	byteID, err := in.TypeID(ValueOf(ir.Int{Width: 8}))
	if err != nil {
		t.Fatalf("TypeID(uint8) failed: %v", err)
	}
	if charID != byteID {
		t.Errorf("char = %d, uint8 = %d; want the same id", charID, byteID)
	}
}

func TestInterner_PointerStorage(t *testing.T) {
	builder, in := newTestInterner()

	input, err := in.TypeID(PointerTo(ir.TypeVec4, StorageClassInput))
	if err != nil {
		t.Fatalf("TypeID failed: %v", err)
	}
	output, err := in.TypeID(PointerTo(ir.TypeVec4, StorageClassOutput))
	if err != nil {
		t.Fatalf("TypeID failed: %v", err)
	}
	if input == output {
		t.Error("pointers in different storage classes share an id")
	}

	module := assemble(t, builder)
	pointers := module.Find(disasm.OpTypePointer)
	if len(pointers) != 2 {
		t.Fatalf("got %d pointer types, want 2", len(pointers))
	}
	if pointers[0].Operands[2] != pointers[1].Operands[2] {
		t.Error("pointers should share the vec4 pointee")
	}
}

func TestTypeKey_Normalize(t *testing.T) {
	tests := []struct {
		name string
		key  TypeKey
		want StorageClass
	}{
		{"value drops storage", TypeKey{Type: ir.TypeVec4, Storage: StorageClassInput}, StorageClassNone},
		{"pointer keeps storage", PointerTo(ir.TypeVec4, StorageClassOutput), StorageClassOutput},
		{"sampled image", PointerTo(ir.SampledImage2D{}, StorageClassUniform), StorageClassUniformConstant},
		{"sampled image array", PointerTo(ir.Array{Elem: ir.SampledImage2D{}, Len: 4}, StorageClassPrivate), StorageClassUniformConstant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.Normalize().Storage; got != tt.want {
				t.Errorf("storage = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInterner_Constants(t *testing.T) {
	builder, in := newTestInterner()

	u, err := in.ConstantUint(5)
	if err != nil {
		t.Fatalf("ConstantUint failed: %v", err)
	}
	f, err := in.ConstantFloat(5)
	if err != nil {
		t.Fatalf("ConstantFloat failed: %v", err)
	}
	if u == f {
		t.Error("5u and 5.0f share an id")
	}
	again, err := in.ConstantUint(5)
	if err != nil {
		t.Fatalf("ConstantUint failed: %v", err)
	}
	if again != u {
		t.Errorf("ConstantUint(5) = %d then %d", u, again)
	}
	half, err := in.ConstantFloat(1.5)
	if err != nil {
		t.Fatalf("ConstantFloat failed: %v", err)
	}

	module := assemble(t, builder)
	if n := len(module.Find(disasm.OpConstant)); n != 3 {
		t.Errorf("got %d constants, want 3", n)
	}
	names := module.Names()
	for id, want := range map[uint32]string{u: "uint_5", f: "float_5", half: "float_1.5"} {
		if names[id] != want {
			t.Errorf("name of %d = %q, want %q", id, names[id], want)
		}
	}
	def, ok := module.Definition(half)
	if !ok || def.Operands[2] != 0x3FC00000 {
		t.Errorf("1.5 constant = %v, want bits 0x3FC00000", def.Operands)
	}
}

func TestInterner_ArrayLength(t *testing.T) {
	builder, in := newTestInterner()

	if _, err := in.TypeID(ValueOf(ir.Array{Elem: ir.TypeFloat32, Len: 8})); err != nil {
		t.Fatalf("TypeID failed: %v", err)
	}
	eight, err := in.ConstantUint(8)
	if err != nil {
		t.Fatalf("ConstantUint failed: %v", err)
	}

	module := assemble(t, builder)
	arrays := module.Find(disasm.OpTypeArray)
	if len(arrays) != 1 {
		t.Fatalf("got %d array types, want 1", len(arrays))
	}
	if arrays[0].Operands[2] != eight {
		t.Errorf("array length operand = %d, want constant id %d", arrays[0].Operands[2], eight)
	}
}

func TestInterner_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		typ  ir.Type
	}{
		{"string", ir.String{}},
		{"datetime", ir.DateTime{}},
		{"null", ir.Null{}},
		{"unsized array", ir.Array{Elem: ir.TypeVec2}},
		{"vec5", ir.Vector{Count: 5}},
		{"int12", ir.Int{Width: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, in := newTestInterner()
			_, err := in.TypeID(ValueOf(tt.typ))
			wantKind(t, err, ErrUnsupportedType)
		})
	}
}

func TestInterner_WidthCapabilities(t *testing.T) {
	builder, in := newTestInterner()
	for _, typ := range []ir.Type{ir.Int{Width: 64}, ir.Float{Width: 64}, ir.Int{Width: 16, Signed: true}} {
		if _, err := in.TypeID(ValueOf(typ)); err != nil {
			t.Fatalf("TypeID(%s) failed: %v", ir.Signature(typ), err)
		}
	}

	module := assemble(t, builder)
	var caps []uint32
	for _, inst := range module.Find(disasm.OpCapability) {
		caps = append(caps, inst.Operands[0])
	}
	want := []uint32{uint32(CapabilityInt64), uint32(CapabilityFloat64), uint32(CapabilityInt16)}
	if len(caps) != len(want) {
		t.Fatalf("capabilities = %v, want %v", caps, want)
	}
	for i := range want {
		if caps[i] != want[i] {
			t.Errorf("capability %d = %d, want %d", i, caps[i], want[i])
		}
	}
}

func TestInterner_StructOffsets(t *testing.T) {
	builder, in := newTestInterner()

	light := ir.Struct{
		Name: "Light",
		Fields: []ir.StructField{
			{Name: "color", Type: ir.TypeVec4},
			{Name: "intensity", Type: ir.TypeFloat32},
			{Name: "transform", Type: ir.TypeMat4},
		},
	}
	id, err := in.TypeID(ValueOf(light))
	if err != nil {
		t.Fatalf("TypeID failed: %v", err)
	}

	module := assemble(t, builder)
	var offsets []uint32
	for _, inst := range module.Find(disasm.OpMemberDecorate) {
		if inst.Operands[0] == id && inst.Operands[2] == uint32(DecorationOffset) {
			offsets = append(offsets, inst.Operands[3])
		}
	}
	want := []uint32{0, 16, 20}
	if len(offsets) != len(want) {
		t.Fatalf("offsets = %v, want %v", offsets, want)
	}
	for i := range want {
		if offsets[i] != want[i] {
			t.Errorf("member %d offset = %d, want %d", i, offsets[i], want[i])
		}
	}
	if module.Names()[id] != "Light" {
		t.Errorf("struct name = %q, want Light", module.Names()[id])
	}
}

func TestNaturalSize(t *testing.T) {
	tests := []struct {
		typ  ir.Type
		want uint32
	}{
		{ir.Bool{}, 4},
		{ir.TypeFloat32, 4},
		{ir.Float{Width: 64}, 8},
		{ir.Int{Width: 16}, 2},
		{ir.TypeVec3, 12},
		{ir.TypeMat4, 64},
		{ir.Array{Elem: ir.TypeVec2, Len: 3}, 24},
		{ir.Struct{Fields: []ir.StructField{{Type: ir.TypeVec4}, {Type: ir.Char{}}}}, 17},
	}
	for _, tt := range tests {
		t.Run(ir.Signature(tt.typ), func(t *testing.T) {
			got, err := NaturalSize(tt.typ)
			if err != nil {
				t.Fatalf("NaturalSize failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("NaturalSize = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := NaturalSize(ir.SampledImage2D{}); err == nil {
		t.Error("expected error for sampled image")
	}
}
