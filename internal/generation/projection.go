package generation

import (
	"fmt"
	"strings"

	"github.com/microsoft/go-winmd/flags"

	"nativeabi/internal/constmeta"
	"nativeabi/internal/metadata"
)

// The map of element types to the fixed-width C names they are declared as
var elementTypeNames = map[flags.ElementType]string{
	flags.ElementType_BOOLEAN: "uint8_t",
	flags.ElementType_I1:      "int8_t",
	flags.ElementType_I2:      "int16_t",
	flags.ElementType_I4:      "int32_t",
	flags.ElementType_I8:      "int64_t",
	flags.ElementType_U1:      "uint8_t",
	flags.ElementType_U2:      "uint16_t",
	flags.ElementType_U4:      "uint32_t",
	flags.ElementType_U8:      "uint64_t",
	flags.ElementType_R4:      "float",
	flags.ElementType_R8:      "double",
	flags.ElementType_CHAR:    "char16_t",
	flags.ElementType_I:       "size_t",
	flags.ElementType_U:       "size_t",
	flags.ElementType_VOID:    "void",
}

// Project renders t as a C type. IsConst qualifies the pointee and IsPointingToConst
// the pointer, so {true, true} on `int*` gives `const int32_t* const`.
// Types without a mapping fall back to their declared name.
func Project(t metadata.Type, meta constmeta.ConstMetadata) string {
	switch t.Kind {
	case metadata.KindPointer:
		var b strings.Builder
		if meta.IsConst {
			b.WriteString("const ")
		}
		b.WriteString(Project(*t.Elem, constmeta.ConstMetadata{}))
		b.WriteString("*")
		if meta.IsPointingToConst {
			b.WriteString(" const")
		}
		return b.String()

	case metadata.KindPrimitive:
		if name, found := elementTypeNames[t.Element]; found {
			return name
		}
	}

	return t.Name
}

// functionPointerParameter renders a function pointer parameter as a C declarator,
// e.g. `void (__cdecl cb)(const char16_t* const, int32_t)`.
func functionPointerParameter(param *metadata.Slot, fp *constmeta.FunctionPointerMetadata, platform string) string {
	signature := param.Type.Signature

	params := make([]string, 0, len(signature.Params))
	for i, slot := range signature.Params {
		var meta constmeta.ConstMetadata
		if fp != nil && i < len(fp.Params) {
			meta = fp.Params[i].Metadata
		}
		params = append(params, Project(slot.Type, meta))
	}

	var returnMeta constmeta.ConstMetadata
	if fp != nil {
		returnMeta = fp.Return.Metadata
	}

	return fmt.Sprintf("%s (%s %s)(%s)",
		Project(signature.Return.Type, returnMeta),
		signatureConvention(signature, platform),
		param.Name,
		strings.Join(params, ", "))
}
