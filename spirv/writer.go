package spirv

import (
	"encoding/binary"
	"fmt"
)

// PackOpcode packs an instruction word count and opcode into the first word
// of an instruction. The opcode occupies the low half.
func PackOpcode(wordCount uint16, op OpCode) uint32 {
	return uint32(wordCount)<<16 | uint32(op)
}

// PackChars packs four characters into one word, c0 in the lowest byte.
func PackChars(c0, c1, c2, c3 byte) uint32 {
	return uint32(c0) | uint32(c1)<<8 | uint32(c2)<<16 | uint32(c3)<<24
}

// EncodeString encodes a literal string operand as its UTF-8 bytes. The
// result always ends with a zero byte, so a string whose length in bytes is a
// multiple of four gets an extra all-zero word.
func EncodeString(s string) []uint32 {
	words := make([]uint32, 0, len(s)/4+1)
	var chunk [4]byte
	for i := 0; i < len(s); i += 4 {
		chunk = [4]byte{}
		copy(chunk[:], s[i:])
		words = append(words, PackChars(chunk[0], chunk[1], chunk[2], chunk[3]))
	}
	if len(s)%4 == 0 {
		words = append(words, 0)
	}
	return words
}

// Instruction represents a SPIR-V instruction.
type Instruction struct {
	Opcode OpCode
	Words  []uint32 // result type ID, result ID, operands
}

// InstructionBuilder builds SPIR-V instructions.
type InstructionBuilder struct {
	words []uint32
}

// NewInstructionBuilder creates a new instruction builder.
func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{
		words: make([]uint32, 0, 8),
	}
}

// AddWord adds a word to the instruction.
func (b *InstructionBuilder) AddWord(word uint32) {
	b.words = append(b.words, word)
}

// AddWords adds several words to the instruction.
func (b *InstructionBuilder) AddWords(words ...uint32) {
	b.words = append(b.words, words...)
}

// AddString adds a nul-terminated literal string.
func (b *InstructionBuilder) AddString(s string) {
	b.words = append(b.words, EncodeString(s)...)
}

// Build builds the instruction with the given opcode.
func (b *InstructionBuilder) Build(opcode OpCode) Instruction {
	return Instruction{
		Opcode: opcode,
		Words:  b.words,
	}
}

// Encode encodes the instruction to binary.
func (i Instruction) Encode() []uint32 {
	result := make([]uint32, 0, len(i.Words)+1)
	return i.appendTo(result)
}

func (i Instruction) appendTo(dst []uint32) []uint32 {
	wordCount := len(i.Words) + 1 // +1 for opcode word
	if wordCount > 0xFFFF {
		panic(fmt.Sprintf("spirv: instruction %d has %d words", i.Opcode, wordCount))
	}
	dst = append(dst, PackOpcode(uint16(wordCount), i.Opcode))
	return append(dst, i.Words...)
}

// IDAllocator issues result ids, strictly increasing from 1.
type IDAllocator struct {
	next  uint32
	spent bool
}

// NewIDAllocator creates an allocator whose first id is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{next: 1}
}

// Next returns the current counter and advances it.
func (a *IDAllocator) Next() uint32 {
	if a.spent {
		panic("spirv: id allocated after the module bound was taken")
	}
	id := a.next
	a.next++
	return id
}

// Bound takes the module bound with one final allocation, so it equals the
// last id handed out plus one. The allocator is spent afterwards.
func (a *IDAllocator) Bound() uint32 {
	bound := a.Next()
	a.spent = true
	return bound
}

// ModuleBuilder builds complete SPIR-V modules.
type ModuleBuilder struct {
	// Header
	version   Version
	generator uint32
	schema    uint32

	// Sections (ordered per SPIR-V spec)
	capabilities      []Instruction
	extensions        []Instruction
	extInstImports    []Instruction
	memoryModel       *Instruction
	entryPoints       []Instruction
	executionModes    []Instruction
	debugStrings      []Instruction // OpString, OpSource, OpSourceExtension
	debugNames        []Instruction // OpName, OpMemberName
	decorations       []Instruction // OpDecorate
	memberDecorations []Instruction // OpMemberDecorate
	groupDecorations  []Instruction // OpDecorationGroup, OpGroupDecorate
	globals           []Instruction // OpType*, OpConstant*, global OpVariable
	functionDecls     []Instruction // forward declarations
	functions         []Instruction // OpFunction...OpFunctionEnd

	declared map[Capability]bool
	ids      *IDAllocator
}

// NewModuleBuilder creates a new SPIR-V module builder.
func NewModuleBuilder(version Version) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: GeneratorID,
		schema:    0,
		declared:  make(map[Capability]bool),
		ids:       NewIDAllocator(),
	}
}

// AllocID allocates a new SPIR-V ID.
func (b *ModuleBuilder) AllocID() uint32 {
	return b.ids.Next()
}

// AddCapability declares a capability once; repeated requests are ignored.
func (b *ModuleBuilder) AddCapability(capability Capability) {
	if b.declared[capability] {
		return
	}
	b.declared[capability] = true
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(capability))
	b.capabilities = append(b.capabilities, builder.Build(OpCapability))
}

// AddExtension adds an extension.
func (b *ModuleBuilder) AddExtension(name string) {
	builder := NewInstructionBuilder()
	builder.AddString(name)
	b.extensions = append(b.extensions, builder.Build(OpExtension))
}

// AddExtInstImport imports an extended instruction set.
func (b *ModuleBuilder) AddExtInstImport(name string) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(name)
	b.extInstImports = append(b.extInstImports, builder.Build(OpExtInstImport))
	return id
}

// SetMemoryModel sets the memory model.
func (b *ModuleBuilder) SetMemoryModel(addressing AddressingModel, memory MemoryModel) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(addressing))
	builder.AddWord(uint32(memory))
	inst := builder.Build(OpMemoryModel)
	b.memoryModel = &inst
}

// AddEntryPoint adds an entry point.
func (b *ModuleBuilder) AddEntryPoint(execModel ExecutionModel, funcID uint32, name string, interfaces []uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(execModel))
	builder.AddWord(funcID)
	builder.AddString(name)
	builder.AddWords(interfaces...)
	b.entryPoints = append(b.entryPoints, builder.Build(OpEntryPoint))
}

// AddExecutionMode adds an execution mode.
func (b *ModuleBuilder) AddExecutionMode(entryPoint uint32, mode ExecutionMode, params ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(entryPoint)
	builder.AddWord(uint32(mode))
	builder.AddWords(params...)
	b.executionModes = append(b.executionModes, builder.Build(OpExecutionMode))
}

// AddString adds a debug string.
func (b *ModuleBuilder) AddString(text string) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(text)
	b.debugStrings = append(b.debugStrings, builder.Build(OpString))
	return id
}

// AddSource records the source language and version. A non-zero file is
// the id of an OpString naming the source file.
func (b *ModuleBuilder) AddSource(language SourceLanguage, version uint32, file uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(uint32(language))
	builder.AddWord(version)
	if file != 0 {
		builder.AddWord(file)
	}
	b.debugStrings = append(b.debugStrings, builder.Build(OpSource))
}

// AddSourceExtension records a source-level extension name.
func (b *ModuleBuilder) AddSourceExtension(name string) {
	builder := NewInstructionBuilder()
	builder.AddString(name)
	b.debugStrings = append(b.debugStrings, builder.Build(OpSourceExtension))
}

// AddName adds a debug name.
func (b *ModuleBuilder) AddName(id uint32, name string) {
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddString(name)
	b.debugNames = append(b.debugNames, builder.Build(OpName))
}

// AddMemberName adds a debug member name.
func (b *ModuleBuilder) AddMemberName(structID, member uint32, name string) {
	builder := NewInstructionBuilder()
	builder.AddWord(structID)
	builder.AddWord(member)
	builder.AddString(name)
	b.debugNames = append(b.debugNames, builder.Build(OpMemberName))
}

// AddDecorate adds a decoration.
func (b *ModuleBuilder) AddDecorate(id uint32, decoration Decoration, params ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddWord(uint32(decoration))
	builder.AddWords(params...)
	b.decorations = append(b.decorations, builder.Build(OpDecorate))
}

// AddMemberDecorate adds a member decoration.
func (b *ModuleBuilder) AddMemberDecorate(structID, member uint32, decoration Decoration, params ...uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(structID)
	builder.AddWord(member)
	builder.AddWord(uint32(decoration))
	builder.AddWords(params...)
	b.memberDecorations = append(b.memberDecorations, builder.Build(OpMemberDecorate))
}

// AddTypeVoid adds OpTypeVoid.
func (b *ModuleBuilder) AddTypeVoid() uint32 {
	return b.addGlobal(OpTypeVoid)
}

// AddTypeBool adds OpTypeBool.
func (b *ModuleBuilder) AddTypeBool() uint32 {
	return b.addGlobal(OpTypeBool)
}

// AddTypeFloat adds OpTypeFloat.
func (b *ModuleBuilder) AddTypeFloat(width uint32) uint32 {
	return b.addGlobal(OpTypeFloat, width)
}

// AddTypeInt adds OpTypeInt.
func (b *ModuleBuilder) AddTypeInt(width uint32, signed bool) uint32 {
	var signedness uint32
	if signed {
		signedness = 1
	}
	return b.addGlobal(OpTypeInt, width, signedness)
}

// AddTypeVector adds OpTypeVector.
func (b *ModuleBuilder) AddTypeVector(componentType uint32, count uint32) uint32 {
	return b.addGlobal(OpTypeVector, componentType, count)
}

// AddTypeMatrix adds OpTypeMatrix.
func (b *ModuleBuilder) AddTypeMatrix(columnType uint32, columnCount uint32) uint32 {
	return b.addGlobal(OpTypeMatrix, columnType, columnCount)
}

// AddTypeArray adds OpTypeArray. The length is the id of a constant.
func (b *ModuleBuilder) AddTypeArray(elementType uint32, lengthID uint32) uint32 {
	return b.addGlobal(OpTypeArray, elementType, lengthID)
}

// AddTypeImage adds OpTypeImage with no access qualifier.
func (b *ModuleBuilder) AddTypeImage(sampledType uint32, dim Dim, depth, arrayed, multisampled, sampled uint32, format ImageFormat) uint32 {
	return b.addGlobal(OpTypeImage, sampledType, uint32(dim), depth, arrayed, multisampled, sampled, uint32(format))
}

// AddTypeSampledImage adds OpTypeSampledImage.
func (b *ModuleBuilder) AddTypeSampledImage(imageType uint32) uint32 {
	return b.addGlobal(OpTypeSampledImage, imageType)
}

// AddTypePointer adds OpTypePointer.
func (b *ModuleBuilder) AddTypePointer(storageClass StorageClass, baseType uint32) uint32 {
	return b.addGlobal(OpTypePointer, uint32(storageClass), baseType)
}

// AddTypeFunction adds OpTypeFunction.
func (b *ModuleBuilder) AddTypeFunction(returnType uint32, paramTypes ...uint32) uint32 {
	return b.addGlobal(OpTypeFunction, append([]uint32{returnType}, paramTypes...)...)
}

// AddTypeStruct adds OpTypeStruct.
func (b *ModuleBuilder) AddTypeStruct(memberTypes ...uint32) uint32 {
	return b.addGlobal(OpTypeStruct, memberTypes...)
}

// addGlobal emits a type instruction whose first operand is its result id.
func (b *ModuleBuilder) addGlobal(opcode OpCode, operands ...uint32) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	builder.AddWords(operands...)
	b.globals = append(b.globals, builder.Build(opcode))
	return id
}

// AddConstant adds OpConstant with the literal's raw words.
func (b *ModuleBuilder) AddConstant(typeID uint32, values ...uint32) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(typeID)
	builder.AddWord(id)
	builder.AddWords(values...)
	b.globals = append(b.globals, builder.Build(OpConstant))
	return id
}

// AddVariable adds a module-scope OpVariable.
func (b *ModuleBuilder) AddVariable(pointerType uint32, storageClass StorageClass) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(pointerType)
	builder.AddWord(id)
	builder.AddWord(uint32(storageClass))
	b.globals = append(b.globals, builder.Build(OpVariable))
	return id
}

// AddLocalVariable adds a Function-class OpVariable to the current function body.
func (b *ModuleBuilder) AddLocalVariable(pointerType uint32) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(pointerType)
	builder.AddWord(id)
	builder.AddWord(uint32(StorageClassFunction))
	b.functions = append(b.functions, builder.Build(OpVariable))
	return id
}

// AddFunction adds a function definition.
func (b *ModuleBuilder) AddFunction(funcType uint32, returnType uint32, control FunctionControl) uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(returnType)
	builder.AddWord(id)
	builder.AddWord(uint32(control))
	builder.AddWord(funcType)
	b.functions = append(b.functions, builder.Build(OpFunction))
	return id
}

// AddLabel adds a label.
func (b *ModuleBuilder) AddLabel() uint32 {
	id := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(id)
	b.functions = append(b.functions, builder.Build(OpLabel))
	return id
}

// AddReturn adds OpReturn.
func (b *ModuleBuilder) AddReturn() {
	builder := NewInstructionBuilder()
	b.functions = append(b.functions, builder.Build(OpReturn))
}

// AddReturnValue adds OpReturnValue.
func (b *ModuleBuilder) AddReturnValue(valueID uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(valueID)
	b.functions = append(b.functions, builder.Build(OpReturnValue))
}

// AddFunctionEnd adds OpFunctionEnd.
func (b *ModuleBuilder) AddFunctionEnd() {
	builder := NewInstructionBuilder()
	b.functions = append(b.functions, builder.Build(OpFunctionEnd))
}

// addResult emits a function body instruction with a result type and id.
func (b *ModuleBuilder) addResult(opcode OpCode, resultType uint32, operands ...uint32) uint32 {
	resultID := b.AllocID()
	builder := NewInstructionBuilder()
	builder.AddWord(resultType)
	builder.AddWord(resultID)
	builder.AddWords(operands...)
	b.functions = append(b.functions, builder.Build(opcode))
	return resultID
}

// AddBinaryOp adds a binary operation instruction.
func (b *ModuleBuilder) AddBinaryOp(opcode OpCode, resultType uint32, left uint32, right uint32) uint32 {
	return b.addResult(opcode, resultType, left, right)
}

// AddLoad adds OpLoad.
func (b *ModuleBuilder) AddLoad(resultType uint32, pointer uint32) uint32 {
	return b.addResult(OpLoad, resultType, pointer)
}

// AddStore adds OpStore.
func (b *ModuleBuilder) AddStore(pointer uint32, value uint32) {
	builder := NewInstructionBuilder()
	builder.AddWord(pointer)
	builder.AddWord(value)
	b.functions = append(b.functions, builder.Build(OpStore))
}

// AddAccessChain adds OpAccessChain. Indices are constant ids.
func (b *ModuleBuilder) AddAccessChain(resultType uint32, base uint32, indices ...uint32) uint32 {
	return b.addResult(OpAccessChain, resultType, append([]uint32{base}, indices...)...)
}

// AddCompositeConstruct adds OpCompositeConstruct.
func (b *ModuleBuilder) AddCompositeConstruct(resultType uint32, constituents ...uint32) uint32 {
	return b.addResult(OpCompositeConstruct, resultType, constituents...)
}

// AddCompositeExtract adds OpCompositeExtract. Indices are literals.
func (b *ModuleBuilder) AddCompositeExtract(resultType uint32, composite uint32, indices ...uint32) uint32 {
	return b.addResult(OpCompositeExtract, resultType, append([]uint32{composite}, indices...)...)
}

// AddExtInst adds OpExtInst (extended instruction).
func (b *ModuleBuilder) AddExtInst(resultType uint32, extSet uint32, instruction uint32, operands ...uint32) uint32 {
	return b.addResult(OpExtInst, resultType, append([]uint32{extSet, instruction}, operands...)...)
}

// Assemble concatenates the header and all sections in their fixed order.
// The section buffers are drained and the id allocator is spent, so a
// builder assembles exactly once.
func (b *ModuleBuilder) Assemble() []uint32 {
	sections := [][]Instruction{
		b.capabilities,
		b.extensions,
		b.extInstImports,
		nil, // memory model
		b.entryPoints,
		b.executionModes,
		b.debugStrings,
		b.debugNames,
		b.decorations,
		b.memberDecorations,
		b.groupDecorations,
		b.globals,
		b.functionDecls,
		b.functions,
	}
	if b.memoryModel != nil {
		sections[3] = []Instruction{*b.memoryModel}
	}

	// Calculate total size
	totalWords := 5 // header
	for _, section := range sections {
		totalWords += countWords(section)
	}

	words := make([]uint32, 0, totalWords)
	words = append(words,
		MagicNumber,
		versionToWord(b.version),
		b.generator,
		b.ids.Bound(),
		b.schema,
	)
	for _, section := range sections {
		for _, inst := range section {
			words = inst.appendTo(words)
		}
	}

	b.capabilities, b.extensions, b.extInstImports, b.memoryModel = nil, nil, nil, nil
	b.entryPoints, b.executionModes, b.debugStrings, b.debugNames = nil, nil, nil, nil
	b.decorations, b.memberDecorations, b.groupDecorations = nil, nil, nil
	b.globals, b.functionDecls, b.functions = nil, nil, nil
	return words
}

// Build generates the final SPIR-V binary.
func (b *ModuleBuilder) Build() []byte {
	return WordsToBytes(b.Assemble())
}

// WordsToBytes serializes words in little-endian order.
func WordsToBytes(words []uint32) []byte {
	buffer := make([]byte, len(words)*4)
	for i, word := range words {
		binary.LittleEndian.PutUint32(buffer[i*4:], word)
	}
	return buffer
}

// BytesToWords decodes a little-endian SPIR-V binary.
func BytesToWords(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("spirv: binary length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words, nil
}

// countWords counts total words in instructions.
func countWords(instructions []Instruction) int {
	count := 0
	for _, inst := range instructions {
		count += len(inst.Words) + 1
	}
	return count
}

// versionToWord converts Version to SPIR-V word format.
func versionToWord(v Version) uint32 {
	return (uint32(v.Major) << 16) | (uint32(v.Minor) << 8)
}
