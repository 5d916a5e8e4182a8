package spirv

import (
	"github.com/gogpu/spvgen/ir"
)

// Variable is a declared variable and the decorations it received.
type Variable struct {
	ID      uint32
	Type    TypeKey // always a pointer
	Storage StorageClass
	Name    string

	Location      *uint32
	Binding       *uint32
	DescriptorSet *uint32
	BuiltIn       *BuiltIn
	PushConstant  bool
}

// Resolution is the storage class and decorations derived from a field's layout.
type Resolution struct {
	Storage StorageClass

	// Interface is set for Input and Output variables, which the entry
	// point must list.
	Interface bool

	Location      *uint32
	Binding       *uint32
	DescriptorSet *uint32
	BuiltIn       *BuiltIn
	PushConstant  bool

	// Capabilities required by the requested built-in.
	Capabilities []Capability
}

// ResolveLayout derives the storage class and decorations of a global.
// Binding wins over PushConstant, which wins over the declared direction.
// An unknown direction is reported to log and treated as private.
func ResolveLayout(field ir.Field, log Logger) (Resolution, error) {
	layout := field.Layout
	if layout == nil {
		return Resolution{Storage: StorageClassPrivate}, nil
	}

	switch {
	case layout.Binding != nil:
		set := layout.DescriptorSet
		binding := *layout.Binding
		return Resolution{
			Storage:       StorageClassUniform,
			Binding:       &binding,
			DescriptorSet: &set,
		}, nil

	case layout.PushConstant:
		return Resolution{Storage: StorageClassPushConstant, PushConstant: true}, nil

	case layout.SpecID != nil:
		return Resolution{}, errorf(ErrUnsupportedFeature,
			"field %q: specialization constant %d", field.Name, *layout.SpecID)
	}

	var res Resolution
	switch layout.Direction {
	case ir.DirectionInput:
		res = Resolution{Storage: StorageClassInput, Interface: true}
	case ir.DirectionOutput:
		res = Resolution{Storage: StorageClassOutput, Interface: true}
	case ir.DirectionPrivate:
		return Resolution{Storage: StorageClassPrivate}, nil
	default:
		if log != nil {
			log.Warnf("field %q: unknown layout direction %d, using private storage", field.Name, layout.Direction)
		}
		return Resolution{Storage: StorageClassPrivate}, nil
	}

	if layout.Builtin == ir.BuiltinNone {
		location := layout.Location
		res.Location = &location
		return res, nil
	}

	builtin, caps, err := mapBuiltin(layout.Builtin)
	if err != nil {
		return Resolution{}, err
	}
	res.BuiltIn = &builtin
	res.Capabilities = caps
	return res, nil
}

var builtins = map[ir.Builtin]BuiltIn{
	ir.BuiltinPosition:             BuiltInPosition,
	ir.BuiltinPointSize:            BuiltInPointSize,
	ir.BuiltinClipDistance:         BuiltInClipDistance,
	ir.BuiltinCullDistance:         BuiltInCullDistance,
	ir.BuiltinVertexIndex:          BuiltInVertexIndex,
	ir.BuiltinInstanceIndex:        BuiltInInstanceIndex,
	ir.BuiltinPrimitiveID:          BuiltInPrimitiveID,
	ir.BuiltinInvocationID:         BuiltInInvocationID,
	ir.BuiltinLayer:                BuiltInLayer,
	ir.BuiltinViewportIndex:        BuiltInViewportIndex,
	ir.BuiltinTessLevelOuter:       BuiltInTessLevelOuter,
	ir.BuiltinTessLevelInner:       BuiltInTessLevelInner,
	ir.BuiltinTessCoord:            BuiltInTessCoord,
	ir.BuiltinPatchVertices:        BuiltInPatchVertices,
	ir.BuiltinFragCoord:            BuiltInFragCoord,
	ir.BuiltinPointCoord:           BuiltInPointCoord,
	ir.BuiltinFrontFacing:          BuiltInFrontFacing,
	ir.BuiltinSampleID:             BuiltInSampleID,
	ir.BuiltinSamplePosition:       BuiltInSamplePosition,
	ir.BuiltinSampleMask:           BuiltInSampleMask,
	ir.BuiltinFragDepth:            BuiltInFragDepth,
	ir.BuiltinHelperInvocation:     BuiltInHelperInvocation,
	ir.BuiltinNumWorkgroups:        BuiltInNumWorkgroups,
	ir.BuiltinWorkgroupSize:        BuiltInWorkgroupSize,
	ir.BuiltinWorkgroupID:          BuiltInWorkgroupID,
	ir.BuiltinLocalInvocationID:    BuiltInLocalInvocationID,
	ir.BuiltinGlobalInvocationID:   BuiltInGlobalInvocationID,
	ir.BuiltinLocalInvocationIndex: BuiltInLocalInvocationIndex,
}

func mapBuiltin(b ir.Builtin) (BuiltIn, []Capability, error) {
	builtin, ok := builtins[b]
	if !ok {
		return 0, nil, errorf(ErrInvalidProgram, "unknown built-in %d", b)
	}
	switch builtin {
	case BuiltInClipDistance:
		return builtin, []Capability{CapabilityClipDistance}, nil
	case BuiltInCullDistance:
		return builtin, []Capability{CapabilityCullDistance}, nil
	case BuiltInSampleID, BuiltInSamplePosition:
		return builtin, []Capability{CapabilitySampleRateShading}, nil
	default:
		return builtin, nil, nil
	}
}

// declareGlobal resolves a field's layout, emits its variable and
// decorations, and registers Input and Output variables with the entry point.
func (c *Compiler) declareGlobal(field ir.Field) (*Variable, error) {
	res, err := ResolveLayout(field, c.log)
	if err != nil {
		return nil, err
	}

	key := PointerTo(field.Type, res.Storage).Normalize()
	typeID, err := c.types.TypeID(key)
	if err != nil {
		return nil, err
	}
	storage := key.Storage

	id := c.builder.AddVariable(typeID, storage)
	c.builder.AddName(id, field.Name)
	c.types.Bind(id, key, field.Name)

	if storage == StorageClassUniform || storage == StorageClassPushConstant {
		if _, ok := ir.Underlying(field.Type).(ir.Struct); ok {
			structID, err := c.types.TypeID(ValueOf(field.Type))
			if err != nil {
				return nil, err
			}
			c.types.MarkBlock(structID)
		}
	}

	if res.DescriptorSet != nil {
		c.builder.AddDecorate(id, DecorationDescriptorSet, *res.DescriptorSet)
	}
	if res.Binding != nil {
		c.builder.AddDecorate(id, DecorationBinding, *res.Binding)
	}
	if res.Location != nil {
		c.builder.AddDecorate(id, DecorationLocation, *res.Location)
	}
	if res.BuiltIn != nil {
		c.builder.AddDecorate(id, DecorationBuiltIn, uint32(*res.BuiltIn))
	}
	for _, capability := range res.Capabilities {
		c.builder.AddCapability(capability)
	}

	v := &Variable{
		ID:            id,
		Type:          key,
		Storage:       storage,
		Name:          field.Name,
		Location:      res.Location,
		Binding:       res.Binding,
		DescriptorSet: res.DescriptorSet,
		BuiltIn:       res.BuiltIn,
		PushConstant:  res.PushConstant,
	}
	if res.Interface && storage == res.Storage {
		c.interfaces = append(c.interfaces, id)
	}
	return v, nil
}
