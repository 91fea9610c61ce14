package metadata

import (
	"debug/pe"
	"fmt"

	"github.com/microsoft/go-winmd"
	"github.com/microsoft/go-winmd/flags"

	"nativeabi/internal"
)

// AssemblyReader reads method signatures straight from the ECMA-335 tables of a
// compiled assembly. Attributes are not decoded, so methods come back unannotated.
type AssemblyReader struct {
	metadata winmd.Metadata
}

// NewAssemblyReader opens the PE image under given path
func NewAssemblyReader(path string) (*AssemblyReader, error) {
	peFile, err := pe.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open assembly: %w", err)
	}
	defer peFile.Close()

	assemblyMetadata, err := winmd.New(peFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata tables: %w", err)
	}

	return &AssemblyReader{
		*assemblyMetadata,
	}, nil
}

// Tries to get method with given name
func (reader *AssemblyReader) TryGetMethod(name string) (element Method, found bool) {
	methodDef := findElementInTable(
		reader.metadata.Tables.MethodDef,
		func(methodDef *winmd.MethodDef) bool { return methodDef.Name.String() == name })
	if methodDef == nil {
		return Method{}, false
	}

	return reader.getMethod(methodDef), true
}

// MethodNames lists every method defined in the assembly.
func (reader *AssemblyReader) MethodNames() []string {
	names := make([]string, 0, reader.metadata.Tables.MethodDef.Len)
	iterateOverTable(reader.metadata.Tables.MethodDef, func(methodDef *winmd.MethodDef) {
		names = append(names, methodDef.Name.String())
	})
	return names
}

func (reader *AssemblyReader) getType(sigType winmd.SigType) Type {
	switch sigType.Kind {
	case flags.ElementType_PTR:
		innerSigType, _ := sigType.Value.(winmd.SigType)
		return PointerTo(reader.getType(innerSigType))
	case flags.ElementType_VALUETYPE, flags.ElementType_CLASS:
		return Named(reader.getTypeRefName(sigType))
	}

	name, found := elementTypeKeywords[sigType.Kind]
	if found {
		return Primitive(name, sigType.Kind)
	}

	return Named(fmt.Sprintf("element_type_0x%02x", uint8(sigType.Kind)))
}

// ToDo: TypeDef-coded indexes resolve through TypeRef here, which names the wrong type.
func (reader *AssemblyReader) getTypeRefName(sigType winmd.SigType) string {
	sigTypeIndex, ok := sigType.Value.(winmd.CodedIndex)
	if !ok {
		return "void"
	}

	typeRef, err := reader.metadata.Tables.TypeRef.Record(sigTypeIndex.Index)
	if err != nil {
		return "void"
	}

	return typeRef.Name.String()
}

func (reader *AssemblyReader) getMethod(methodDef *winmd.MethodDef) Method {
	methodSignature, err := reader.metadata.MethodDefSignature(methodDef.Signature)
	internal.PanicOnError(err)

	method := Method{
		Name:     methodDef.Name.String(),
		Exported: true,
		Return:   Slot{Type: reader.getType(methodSignature.RetType.Type)},
	}

	var rows []paramRow
	for idx := uint32(methodDef.ParamList.Start); idx < uint32(methodDef.ParamList.End); idx++ {
		param, err := reader.metadata.Tables.Param.Record(winmd.Index(idx))
		internal.PanicOnError(err)
		rows = append(rows, paramRow{sequence: int(param.Sequence), name: param.Name.String()})
	}

	names := parameterNames(rows, len(methodSignature.Param))
	for i, methodParam := range methodSignature.Param {
		method.Params = append(method.Params, Slot{
			Name: names[i],
			Type: reader.getType(methodParam.Type),
		})
	}

	return method
}

// paramRow is the part of a Param record that names a parameter.
type paramRow struct {
	sequence int
	name     string
}

// parameterNames maps Param rows to the count signature parameters. Sequence k names
// parameter k-1; sequence 0 describes the return value and is only emitted when it
// carries attributes or marshalling. Parameters without a row are named p{i}.
func parameterNames(rows []paramRow, count int) []string {
	names := make([]string, count)
	for _, row := range rows {
		if row.sequence > 0 && row.sequence <= count {
			names[row.sequence-1] = row.name
		}
	}
	for i, name := range names {
		if name == "" {
			names[i] = fmt.Sprintf("p%d", i)
		}
	}
	return names
}

// The map of element types to the C# keywords they are declared with
var elementTypeKeywords = map[flags.ElementType]string{
	flags.ElementType_VOID:    "void",
	flags.ElementType_BOOLEAN: "bool",
	flags.ElementType_CHAR:    "char",
	flags.ElementType_I1:      "sbyte",
	flags.ElementType_U1:      "byte",
	flags.ElementType_I2:      "short",
	flags.ElementType_U2:      "ushort",
	flags.ElementType_I4:      "int",
	flags.ElementType_U4:      "uint",
	flags.ElementType_I8:      "long",
	flags.ElementType_U8:      "ulong",
	flags.ElementType_R4:      "float",
	flags.ElementType_R8:      "double",
	flags.ElementType_I:       "nint",
	flags.ElementType_U:       "nuint",
	flags.ElementType_STRING:  "string",
}

func iterateOverTable[T any, TP winmd.Record[T]](table winmd.Table[T, TP], action func(TP)) {
	for idx := uint32(0); idx < table.Len; idx++ {
		element, err := table.Record(winmd.Index(idx))
		internal.PanicOnError(err) // It returns an error only when creating return value and for out of scope file
		action(element)
	}
}

// Finds element in given table and returns it. If element is not found then `nil` is returned.
func findElementInTable[T any, TP winmd.Record[T]](table winmd.Table[T, TP], match func(TP) bool) TP {
	for idx := uint32(0); idx < table.Len; idx++ {
		element, err := table.Record(winmd.Index(idx))
		internal.PanicOnError(err) // It returns an error only when creating return value and for out of scope file
		if match(element) {
			return element
		}
	}

	var none TP
	return none
}
