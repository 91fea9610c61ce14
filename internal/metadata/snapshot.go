package metadata

import (
	"fmt"
	"strings"

	"github.com/microsoft/go-winmd/flags"
	"gopkg.in/yaml.v3"

	"nativeabi/internal/safe"
	"nativeabi/internal/syntax"
)

// Snapshot is the host platform's view of one compilation: every function that
// carries attributes, in declaration order.
type Snapshot struct {
	Functions []*Method
}

// Exported returns the natively-exported functions.
func (s *Snapshot) Exported() []*Method {
	exported := make([]*Method, 0, len(s.Functions))
	for _, method := range s.Functions {
		if method.Exported {
			exported = append(exported, method)
		}
	}
	return exported
}

type snapshotFile struct {
	Functions []functionEntry `yaml:"functions"`
}

type functionEntry struct {
	Name              string            `yaml:"name"`
	Exported          bool              `yaml:"exported"`
	EntryPoint        string            `yaml:"entryPoint"`
	CallConvs         []string          `yaml:"callConvs"`
	CallingConvention string            `yaml:"callingConvention"`
	At                syntax.Span       `yaml:"at"`
	Annotations       []annotationEntry `yaml:"annotations"`
	Returns           slotEntry         `yaml:"returns"`
	Params            []slotEntry       `yaml:"params"`
}

type slotEntry struct {
	Name        string            `yaml:"name"`
	Type        string            `yaml:"type"`
	At          syntax.Span       `yaml:"at"`
	Annotations []annotationEntry `yaml:"annotations"`
}

type annotationEntry struct {
	Text string      `yaml:"text"`
	At   syntax.Span `yaml:"at"`
}

// The map of C# type keywords and their System aliases to ECMA-335 element types
var builtInElementTypes = map[string]flags.ElementType{
	"void":   flags.ElementType_VOID,
	"bool":   flags.ElementType_BOOLEAN,
	"char":   flags.ElementType_CHAR,
	"sbyte":  flags.ElementType_I1,
	"byte":   flags.ElementType_U1,
	"short":  flags.ElementType_I2,
	"ushort": flags.ElementType_U2,
	"int":    flags.ElementType_I4,
	"uint":   flags.ElementType_U4,
	"long":   flags.ElementType_I8,
	"ulong":  flags.ElementType_U8,
	"float":  flags.ElementType_R4,
	"double": flags.ElementType_R8,
	"nint":   flags.ElementType_I,
	"nuint":  flags.ElementType_U,

	"Void":    flags.ElementType_VOID,
	"Boolean": flags.ElementType_BOOLEAN,
	"Char":    flags.ElementType_CHAR,
	"SByte":   flags.ElementType_I1,
	"Byte":    flags.ElementType_U1,
	"Int16":   flags.ElementType_I2,
	"UInt16":  flags.ElementType_U2,
	"Int32":   flags.ElementType_I4,
	"UInt32":  flags.ElementType_U4,
	"Int64":   flags.ElementType_I8,
	"UInt64":  flags.ElementType_U8,
	"Single":  flags.ElementType_R4,
	"Double":  flags.ElementType_R8,
	"IntPtr":  flags.ElementType_I,
	"UIntPtr": flags.ElementType_U,
}

// LookupElementType maps a declared type name to its element type.
func LookupElementType(name string) (flags.ElementType, bool) {
	element, found := builtInElementTypes[strings.TrimPrefix(name, "System.")]
	return element, found
}

// LoadSnapshot reads a YAML snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := safe.ReadFile(path, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	snapshot, err := ParseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", path, err)
	}
	return snapshot, nil
}

// ParseSnapshot decodes a YAML snapshot and parses all attribute and type syntax in it.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var file snapshotFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	snapshot := &Snapshot{Functions: make([]*Method, 0, len(file.Functions))}
	for i, entry := range file.Functions {
		method, err := entry.method()
		if err != nil {
			return nil, fmt.Errorf("function #%d (%s): %w", i, entry.Name, err)
		}
		snapshot.Functions = append(snapshot.Functions, method)
	}

	return snapshot, nil
}

func (entry functionEntry) method() (*Method, error) {
	if entry.Name == "" {
		return nil, fmt.Errorf("function name is missing")
	}

	conv, found := ParseCallingConvention(entry.CallingConvention)
	if !found {
		return nil, fmt.Errorf("unknown calling convention %q", entry.CallingConvention)
	}

	annotations, err := parseAnnotations(entry.Annotations)
	if err != nil {
		return nil, err
	}

	returns := entry.Returns
	if returns.Type == "" {
		returns.Type = "void"
	}
	returnSlot, err := returns.slot()
	if err != nil {
		return nil, fmt.Errorf("return type: %w", err)
	}

	method := &Method{
		Name:              entry.Name,
		EntryPoint:        entry.EntryPoint,
		Exported:          entry.Exported,
		CallConvs:         entry.CallConvs,
		CallingConvention: conv,
		Annotations:       annotations,
		Return:            returnSlot,
		At:                entry.At,
	}

	for _, param := range entry.Params {
		slot, err := param.slot()
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", param.Name, err)
		}
		method.Params = append(method.Params, slot)
	}

	return method, nil
}

func (entry slotEntry) slot() (Slot, error) {
	at := entry.At
	if !at.IsValid() {
		at = at.WithLength(len(entry.Type))
	}

	expr, err := syntax.ParseType(entry.Type, at)
	if err != nil {
		return Slot{}, err
	}

	annotations, err := parseAnnotations(entry.Annotations)
	if err != nil {
		return Slot{}, err
	}

	return Slot{
		Name:        entry.Name,
		Type:        TypeFromSyntax(expr),
		At:          expr.Span,
		Annotations: annotations,
	}, nil
}

func parseAnnotations(entries []annotationEntry) ([]Annotation, error) {
	annotations := make([]Annotation, 0, len(entries))
	for _, entry := range entries {
		at := entry.At
		if !at.IsValid() {
			at = at.WithLength(len(entry.Text))
		}
		attr, err := syntax.ParseAttribute(entry.Text, at)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, NewAnnotation(attr))
	}
	return annotations, nil
}

// TypeFromSyntax converts a parsed type into a slot type. Function pointer slots keep
// the spans of their parameter and return types.
func TypeFromSyntax(expr *syntax.TypeExpr) Type {
	switch expr.Kind {
	case syntax.TypePointer:
		return PointerTo(TypeFromSyntax(expr.Elem))

	case syntax.TypeFunctionPointer:
		signature := Signature{}
		for _, name := range expr.Conventions {
			if conv, found := ParseCallingConvention(name); found && conv != CallingConventionDefault {
				signature.CallingConvention = conv
				continue
			}
			signature.Conventions = append(signature.Conventions, name)
		}
		for _, param := range expr.Parameters() {
			signature.Params = append(signature.Params, Slot{Type: TypeFromSyntax(param), At: param.Span})
		}
		if ret := expr.Return(); ret != nil {
			signature.Return = Slot{Type: TypeFromSyntax(ret), At: ret.Span}
		}
		return FunctionPointer(signature)
	}

	if element, found := LookupElementType(expr.Name); found {
		return Primitive(expr.Name, element)
	}
	return Named(expr.Name)
}
