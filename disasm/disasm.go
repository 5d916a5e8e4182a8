// Package disasm decodes SPIR-V binaries into instructions and renders them
// as assembly text.
package disasm

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Magic is the SPIR-V magic number in host word order.
const Magic = 0x07230203

// Header is the five-word module header.
type Header struct {
	Magic     uint32
	Version   uint32
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// VersionString returns the version as "major.minor".
func (h Header) VersionString() string {
	return fmt.Sprintf("%d.%d", (h.Version>>16)&0xFF, (h.Version>>8)&0xFF)
}

// Instruction is one decoded instruction.
type Instruction struct {
	// Offset is the word index of the instruction's first word.
	Offset   int
	Opcode   uint16
	Operands []uint32
}

// Name returns the opcode mnemonic.
func (i Instruction) Name() string {
	return OpcodeName(i.Opcode)
}

// WordCount returns the encoded size in words.
func (i Instruction) WordCount() int {
	return len(i.Operands) + 1
}

// ResultType returns the result type id, if the opcode has one.
func (i Instruction) ResultType() (uint32, bool) {
	if shapeOf(i.Opcode) != typedResult || len(i.Operands) < 2 {
		return 0, false
	}
	return i.Operands[0], true
}

// ResultID returns the result id, if the opcode has one.
func (i Instruction) ResultID() (uint32, bool) {
	switch shapeOf(i.Opcode) {
	case result:
		if len(i.Operands) >= 1 {
			return i.Operands[0], true
		}
	case typedResult:
		if len(i.Operands) >= 2 {
			return i.Operands[1], true
		}
	}
	return 0, false
}

// LiteralString decodes the nul-terminated string operand starting at
// operand index start. It returns the string and the number of words it
// occupies.
func (i Instruction) LiteralString(start int) (string, int) {
	var sb strings.Builder
	for w := start; w < len(i.Operands); w++ {
		word := i.Operands[w]
		for shift := 0; shift < 32; shift += 8 {
			c := byte(word >> shift)
			if c == 0 {
				return sb.String(), w - start + 1
			}
			sb.WriteByte(c)
		}
	}
	return sb.String(), len(i.Operands) - start
}

// Module is a decoded SPIR-V module.
type Module struct {
	Header       Header
	Instructions []Instruction
}

// Decode decodes a module from words.
func Decode(words []uint32) (*Module, error) {
	if len(words) < 5 {
		return nil, fmt.Errorf("disasm: module has %d words, the header needs 5", len(words))
	}
	if words[0] != Magic {
		return nil, fmt.Errorf("disasm: invalid SPIR-V magic: 0x%08X", words[0])
	}

	m := &Module{
		Header: Header{
			Magic:     words[0],
			Version:   words[1],
			Generator: words[2],
			Bound:     words[3],
			Schema:    words[4],
		},
	}
	for offset := 5; offset < len(words); {
		word := words[offset]
		opcode := uint16(word & 0xFFFF)
		wordCount := int(word >> 16)
		if wordCount == 0 || offset+wordCount > len(words) {
			return nil, fmt.Errorf("disasm: invalid word count %d at word %d", wordCount, offset)
		}
		m.Instructions = append(m.Instructions, Instruction{
			Offset:   offset,
			Opcode:   opcode,
			Operands: words[offset+1 : offset+wordCount],
		})
		offset += wordCount
	}
	return m, nil
}

// DecodeBytes decodes a little-endian module binary.
func DecodeBytes(data []byte) (*Module, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("disasm: binary length %d is not a multiple of 4", len(data))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return Decode(words)
}

// Find returns the instructions with the given opcode, in module order.
func (m *Module) Find(opcode uint16) []Instruction {
	var found []Instruction
	for _, inst := range m.Instructions {
		if inst.Opcode == opcode {
			found = append(found, inst)
		}
	}
	return found
}

// Index returns the position of the first instruction with the given
// opcode, or -1.
func (m *Module) Index(opcode uint16) int {
	for i, inst := range m.Instructions {
		if inst.Opcode == opcode {
			return i
		}
	}
	return -1
}

// Names maps ids to their OpName debug names.
func (m *Module) Names() map[uint32]string {
	names := make(map[uint32]string)
	for _, inst := range m.Find(OpName) {
		if len(inst.Operands) < 1 {
			continue
		}
		name, _ := inst.LiteralString(1)
		names[inst.Operands[0]] = name
	}
	return names
}

// ResultIDs returns every result id in module order.
func (m *Module) ResultIDs() []uint32 {
	ids := make([]uint32, 0, len(m.Instructions))
	for _, inst := range m.Instructions {
		if id, ok := inst.ResultID(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Definition returns the instruction whose result is id.
func (m *Module) Definition(id uint32) (Instruction, bool) {
	for _, inst := range m.Instructions {
		if rid, ok := inst.ResultID(); ok && rid == id {
			return inst, true
		}
	}
	return Instruction{}, false
}
