// Package metadata describes the exported functions of a managed assembly: their
// signatures, the const annotations attached to them and where those live in source.
package metadata

import (
	"strings"

	"github.com/microsoft/go-winmd/flags"

	"nativeabi/internal/syntax"
)

type TypeKind int

const (
	KindPrimitive TypeKind = iota
	KindPointer
	KindFunctionPointer
	KindNamed
)

// Type is the shape of a signature slot. Primitive kinds reuse the ECMA-335 element types.
type Type struct {
	Kind TypeKind
	// Name is the type as declared, e.g. "int" or "param_ptr".
	Name      string
	Element   flags.ElementType
	Elem      *Type
	Signature *Signature
}

// Primitive returns the type of a built-in element type.
func Primitive(name string, element flags.ElementType) Type {
	return Type{Kind: KindPrimitive, Name: name, Element: element}
}

// PointerTo returns a pointer to elem.
func PointerTo(elem Type) Type {
	return Type{Kind: KindPointer, Elem: &elem}
}

// Named returns a type that is only known by its declared name.
func Named(name string) Type {
	return Type{Kind: KindNamed, Name: name}
}

// FunctionPointer returns a function pointer type with the given signature.
func FunctionPointer(signature Signature) Type {
	return Type{Kind: KindFunctionPointer, Signature: &signature}
}

func (t Type) IsPointer() bool {
	return t.Kind == KindPointer
}

func (t Type) IsFunctionPointer() bool {
	return t.Kind == KindFunctionPointer
}

// String renders the type the way it is declared in the managed source.
func (t Type) String() string {
	switch t.Kind {
	case KindPointer:
		return t.Elem.String() + "*"
	case KindFunctionPointer:
		var b strings.Builder
		b.WriteString("delegate* unmanaged")
		if t.Signature.CallingConvention != CallingConventionDefault {
			b.WriteString("[" + t.Signature.CallingConvention.String() + "]")
		}
		b.WriteString("<")
		for _, param := range t.Signature.Params {
			b.WriteString(param.Type.String())
			b.WriteString(", ")
		}
		b.WriteString(t.Signature.Return.Type.String())
		b.WriteString(">")
		return b.String()
	}
	return t.Name
}

// Signature is the parameter list and return slot of a function pointer.
type Signature struct {
	CallingConvention CallingConvention
	// Conventions keeps the unrecognized modifiers of `unmanaged[...]` verbatim.
	Conventions []string
	Params      []Slot
	Return      Slot
}

// Slot is any position in a signature that can carry const metadata.
type Slot struct {
	Name        string
	Type        Type
	At          syntax.Span
	Annotations []Annotation
}

type AnnotationKind int

const (
	// AnnotationOther is anything the resolver does not interpret.
	AnnotationOther AnnotationKind = iota
	// AnnotationIsConst is the simple family: IsConst(PointsToConstant = bool).
	AnnotationIsConst
	// AnnotationIsConstOf is IsConst<Flag>.
	AnnotationIsConstOf
	// AnnotationIsNotConstOf is IsNotConst<Flag>.
	AnnotationIsNotConstOf
	// AnnotationConstMeta is the composite ConstMeta<T1, ..., TReturn> of a function pointer.
	AnnotationConstMeta
)

func (k AnnotationKind) String() string {
	switch k {
	case AnnotationIsConst:
		return "IsConst"
	case AnnotationIsConstOf:
		return "IsConst<>"
	case AnnotationIsNotConstOf:
		return "IsNotConst<>"
	case AnnotationConstMeta:
		return "ConstMeta<>"
	}
	return "other"
}

// Annotation is an attribute application classified into the closed set of kinds above.
type Annotation struct {
	Kind   AnnotationKind
	Syntax *syntax.Attribute
}

// NewAnnotation classifies a parsed attribute.
func NewAnnotation(attr *syntax.Attribute) Annotation {
	kind := AnnotationOther
	switch {
	case attr.Name == "IsConst" && attr.Arity() == 0:
		kind = AnnotationIsConst
	case attr.Name == "IsConst" && attr.Arity() == 1:
		kind = AnnotationIsConstOf
	case attr.Name == "IsNotConst" && attr.Arity() == 1:
		kind = AnnotationIsNotConstOf
	case attr.Name == "ConstMeta" && attr.Arity() > 0:
		kind = AnnotationConstMeta
	}
	return Annotation{Kind: kind, Syntax: attr}
}

// IsGeneric reports whether the annotation belongs to the generic IsConst<>/IsNotConst<> family.
func (a *Annotation) IsGeneric() bool {
	return a.Kind == AnnotationIsConstOf || a.Kind == AnnotationIsNotConstOf
}

// Inner returns the flag token of a generic annotation.
func (a *Annotation) Inner() *syntax.TypeArg {
	if !a.IsGeneric() {
		return nil
	}
	return &a.Syntax.Args[0]
}

// PointsToConstant returns the PointsToConstant argument of the simple family.
// A missing or unparsable value reads as false.
func (a *Annotation) PointsToConstant() (bool, *syntax.NamedArg) {
	if a.Kind != AnnotationIsConst {
		return false, nil
	}
	arg, found := a.Syntax.NamedArgument("PointsToConstant")
	if !found {
		return false, nil
	}
	return arg.Value == "true", &arg
}

type CallingConvention int

const (
	CallingConventionDefault CallingConvention = iota
	CallingConventionCDecl
	CallingConventionStdCall
	CallingConventionFastCall
	CallingConventionThisCall
)

var callingConventionNames = map[string]CallingConvention{
	"":         CallingConventionDefault,
	"default":  CallingConventionDefault,
	"cdecl":    CallingConventionCDecl,
	"stdcall":  CallingConventionStdCall,
	"fastcall": CallingConventionFastCall,
	"thiscall": CallingConventionThisCall,
}

// ParseCallingConvention accepts the signature enum names, case-insensitively.
func ParseCallingConvention(name string) (CallingConvention, bool) {
	conv, found := callingConventionNames[strings.ToLower(name)]
	return conv, found
}

func (c CallingConvention) String() string {
	switch c {
	case CallingConventionCDecl:
		return "Cdecl"
	case CallingConventionStdCall:
		return "Stdcall"
	case CallingConventionFastCall:
		return "Fastcall"
	case CallingConventionThisCall:
		return "Thiscall"
	}
	return "Default"
}

// Method is a function declared in the managed assembly.
type Method struct {
	// Name is the declared identifier.
	Name string
	// EntryPoint overrides Name in the native export table.
	EntryPoint string
	// Exported marks functions callable from native code.
	Exported bool
	// CallConvs holds the calling convention types named on the export attribute.
	CallConvs         []string
	CallingConvention CallingConvention
	// Annotations are attached at method level and apply to the return value
	// unless a return-level annotation overrides them.
	Annotations []Annotation
	Return      Slot
	Params      []Slot
	At          syntax.Span
}

// ExportName is the symbol native callers see.
func (m *Method) ExportName() string {
	if m.EntryPoint != "" {
		return m.EntryPoint
	}
	return m.Name
}
