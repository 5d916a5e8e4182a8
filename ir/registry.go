package ir

import (
	"strconv"
)

// Signature returns a key that is equal for two types exactly when they are
// structurally identical after Underlying substitution.
// Struct names and member names take part in the key, so two structs with the
// same member types but different names stay distinct.
func Signature(t Type) string {
	return string(AppendSignature(make([]byte, 0, 32), t))
}

// AppendSignature appends the signature of t to b.
func AppendSignature(b []byte, t Type) []byte {
	switch t := Underlying(t).(type) {
	case Bool:
		return append(b, "bool"...)

	case Int:
		if t.Signed {
			b = append(b, 'i')
		} else {
			b = append(b, 'u')
		}
		return strconv.AppendUint(b, uint64(t.Width), 10)

	case Float:
		b = append(b, 'f')
		return strconv.AppendUint(b, uint64(t.Width), 10)

	case Vector:
		b = append(b, "vec"...)
		return strconv.AppendUint(b, uint64(t.Count), 10)

	case Matrix4:
		return append(b, "mat4"...)

	case Array:
		b = append(b, "array<"...)
		b = AppendSignature(b, t.Elem)
		b = append(b, ',')
		b = strconv.AppendUint(b, uint64(t.Len), 10)
		return append(b, '>')

	case Pointer:
		b = append(b, "ptr<"...)
		b = AppendSignature(b, t.Elem)
		return append(b, '>')

	case SampledImage2D:
		return append(b, "sampled_image2d"...)

	case Struct:
		b = append(b, "struct "...)
		b = append(b, t.Name...)
		b = append(b, '{')
		for i, field := range t.Fields {
			if i > 0 {
				b = append(b, ';')
			}
			b = append(b, field.Name...)
			b = append(b, ':')
			b = AppendSignature(b, field.Type)
		}
		return append(b, '}')

	case Void:
		return append(b, "void"...)

	case String:
		return append(b, "string"...)

	case DateTime:
		return append(b, "datetime"...)

	case Null:
		return append(b, "null"...)

	default:
		return append(b, "unknown"...)
	}
}

