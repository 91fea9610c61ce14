package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nativeabi/internal/codefix"
	"nativeabi/internal/metadata"
	"nativeabi/internal/syntax"
)

const sourceFile = "Exports.cs"

// source locates attribute and type text inside one line of C# so spans can be checked
// against offsets and fixes applied back to the text.
type source struct {
	t    *testing.T
	text string
}

func (s source) at(fragment string, nth int) syntax.Span {
	offset := -1
	for i := 0; i <= nth; i++ {
		next := strings.Index(s.text[offset+1:], fragment)
		require.GreaterOrEqual(s.t, next, 0, "fragment %q not found", fragment)
		offset += next + 1
	}
	return syntax.Span{File: sourceFile, Line: 1, Column: offset + 1, Offset: offset}
}

func (s source) annotation(text string, nth int) metadata.Annotation {
	attr, err := syntax.ParseAttribute(text, s.at(text, nth))
	require.NoError(s.t, err)
	return metadata.NewAnnotation(attr)
}

func (s source) slot(name, typeText string, nth int, annotations ...metadata.Annotation) metadata.Slot {
	expr, err := syntax.ParseType(typeText, s.at(typeText, nth))
	require.NoError(s.t, err)
	return metadata.Slot{
		Name:        name,
		Type:        metadata.TypeFromSyntax(expr),
		At:          expr.Span,
		Annotations: annotations,
	}
}

func (s source) fix(diagnostics []Diagnostic) string {
	var edits []codefix.TextEdit
	for _, diagnostic := range diagnostics {
		for _, fix := range diagnostic.Fixes {
			edits = append(edits, fix.TextEdits...)
		}
	}
	fixed, _, err := codefix.Apply([]byte(s.text), edits)
	require.NoError(s.t, err)
	return string(fixed)
}

func rules(diagnostics []Diagnostic) []Rule {
	result := make([]Rule, 0, len(diagnostics))
	for _, diagnostic := range diagnostics {
		result = append(result, diagnostic.Rule)
	}
	return result
}

func TestProfileFor(t *testing.T) {
	assert.Equal(t, ProfileStrict, ProfileFor(&metadata.Method{Exported: true}))
	assert.Equal(t, ProfilePermissive, ProfileFor(&metadata.Method{}))
}

func TestCheck_PermissivePointerIsNeverRequired(t *testing.T) {
	src := source{t, "static void F([IsConst] int* a, int* b)"}
	method := &metadata.Method{
		Name:   "F",
		Return: src.slot("", "void", 0),
		Params: []metadata.Slot{
			src.slot("a", "int*", 0, src.annotation("IsConst", 0)),
			src.slot("b", "int*", 1),
		},
	}

	assert.Empty(t, Check(method))
}

func TestCheck_UnnecessaryOnValueParameter(t *testing.T) {
	src := source{t, "static void F([IsConst<IsPtrConst>] int x)"}
	method := &metadata.Method{
		Name:   "F",
		Return: src.slot("", "void", 0),
		Params: []metadata.Slot{
			src.slot("x", "int", 0, src.annotation("IsConst<IsPtrConst>", 0)),
		},
	}

	diagnostics := Check(method)
	require.Equal(t, []Rule{RuleUnnecessaryPointsToConst, RuleUnnecessaryConst}, rules(diagnostics))

	inner := src.at("IsPtrConst", 0)
	assert.Equal(t, inner.Offset, diagnostics[0].At.Offset)
	assert.Equal(t, inner.Offset+len("IsPtrConst"), diagnostics[0].At.End)

	attr := src.at("IsConst<IsPtrConst>", 0)
	assert.Equal(t, attr.Offset, diagnostics[1].At.Offset)
	assert.Equal(t, attr.Offset+len("IsConst<IsPtrConst>"), diagnostics[1].At.End)

	assert.Equal(t, "Unnecessary IsConst for type 'int'", diagnostics[1].Message)
	assert.Equal(t, SeverityWarning, diagnostics[1].Severity)
	assert.Equal(t, CategoryUsage, diagnostics[1].Category)
	assert.Equal(t, "static void F(int x)", src.fix(diagnostics))
}

func TestCheck_UnnecessarySimpleFamily(t *testing.T) {
	src := source{t, "static void F([IsConst(PointsToConstant = true)] int x)"}
	method := &metadata.Method{
		Name:   "F",
		Return: src.slot("", "void", 0),
		Params: []metadata.Slot{
			src.slot("x", "int", 1, src.annotation("IsConst(PointsToConstant = true)", 0)),
		},
	}

	diagnostics := Check(method)
	require.Equal(t, []Rule{RuleUnnecessaryPointsToConst, RuleUnnecessaryConst}, rules(diagnostics))
	assert.Equal(t, src.at("PointsToConstant", 0).Offset, diagnostics[0].At.Offset)
	assert.Equal(t, "static void F(int x)", src.fix(diagnostics))
}

func TestCheck_MethodLevelOnVoidReturn(t *testing.T) {
	src := source{t, "[UnmanagedCallersOnly, IsConst<IsPtrConst>] static void F(int x)"}
	method := &metadata.Method{
		Name:        "F",
		Exported:    true,
		Annotations: []metadata.Annotation{src.annotation("IsConst<IsPtrConst>", 0)},
		Return:      src.slot("", "void", 0),
		Params:      []metadata.Slot{src.slot("x", "int", 0)},
	}

	diagnostics := Check(method)

	// The parameter inherits the annotation but is not where it is written.
	require.Equal(t, []Rule{RuleUnnecessaryPointsToConst, RuleUnnecessaryConst}, rules(diagnostics))
	assert.Equal(t, "[UnmanagedCallersOnly] static void F(int x)", src.fix(diagnostics))
}

func TestCheck_ParameterAnnotationHidesMethodLevel(t *testing.T) {
	src := source{t, "[UnmanagedCallersOnly, IsConst<IsPtrConst>] static void F([IsConst] int x)"}
	method := &metadata.Method{
		Name:        "F",
		Annotations: []metadata.Annotation{src.annotation("IsConst<IsPtrConst>", 0)},
		Return:      src.slot("", "void", 0),
		Params: []metadata.Slot{
			src.slot("x", "int", 0, src.annotation("IsConst", 1)),
		},
	}

	diagnostics := Check(method)
	require.Equal(t, []Rule{RuleUnnecessaryPointsToConst, RuleUnnecessaryConst, RuleUnnecessaryConst}, rules(diagnostics))
	assert.Equal(t, src.at("IsConst", 1).Offset, diagnostics[2].At.Offset)
	assert.Equal(t, "[UnmanagedCallersOnly] static void F(int x)", src.fix(diagnostics))
}

func TestCheck_ParameterAnnotationSatisfiesRequired(t *testing.T) {
	src := source{t, "[UnmanagedCallersOnly, IsNotConst<IsNotPtrConst>] static void F([IsConst(PointsToConstant = true)] char* s)"}
	method := &metadata.Method{
		Name:        "F",
		Exported:    true,
		Annotations: []metadata.Annotation{src.annotation("IsNotConst<IsNotPtrConst>", 0)},
		Return:      src.slot("", "void", 0),
		Params: []metadata.Slot{
			src.slot("s", "char*", 0, src.annotation("IsConst(PointsToConstant = true)", 0)),
		},
	}

	assert.Empty(t, Check(method))
}

func TestCheck_InheritedSatisfiesRequired(t *testing.T) {
	src := source{t, "[UnmanagedCallersOnly, IsConst<IsPtrConst>] static void* F(int* p)"}
	method := &metadata.Method{
		Name:        "F",
		Exported:    true,
		Annotations: []metadata.Annotation{src.annotation("IsConst<IsPtrConst>", 0)},
		Return:      src.slot("", "void*", 0),
		Params:      []metadata.Slot{src.slot("p", "int*", 0)},
	}

	assert.Empty(t, Check(method))
}

func TestCheck_StrictUnannotatedPointers(t *testing.T) {
	src := source{t, "[UnmanagedCallersOnly] static char* F(int* p, int n)"}
	method := &metadata.Method{
		Name:     "F",
		Exported: true,
		Return:   src.slot("", "char*", 0),
		Params: []metadata.Slot{
			src.slot("p", "int*", 0),
			src.slot("n", "int", 1),
		},
	}

	diagnostics := Check(method)
	require.Equal(t, []Rule{
		RuleRequiredPointsToConst, RuleRequiredConst,
		RuleRequiredPointsToConst, RuleRequiredConst,
	}, rules(diagnostics))

	assert.Equal(t, src.at("char*", 0).Offset, diagnostics[0].At.Offset)
	assert.Equal(t, "Required IsPtrConst for type 'char*'", diagnostics[0].Message)
	assert.Equal(t, src.at("int*", 0).Offset, diagnostics[2].At.Offset)
	assert.Empty(t, diagnostics[2].Fixes)
}

func TestCheck_StrictPartialAnnotation(t *testing.T) {
	src := source{t, "static void F([IsConst] int* p, [IsNotConst<IsPtrConst>] int* q)"}
	method := &metadata.Method{
		Name:     "F",
		Exported: true,
		Return:   src.slot("", "void", 0),
		Params: []metadata.Slot{
			src.slot("p", "int*", 0, src.annotation("IsConst", 0)),
			src.slot("q", "int*", 1, src.annotation("IsNotConst<IsPtrConst>", 0)),
		},
	}

	diagnostics := Check(method)
	require.Equal(t, []Rule{RuleRequiredPointsToConst, RuleRequiredConst}, rules(diagnostics))
	assert.Equal(t, src.at("int*", 0).Offset, diagnostics[0].At.Offset)
	assert.Equal(t, src.at("int*", 1).Offset, diagnostics[1].At.Offset)
}

func TestCheck_MissingComposite(t *testing.T) {
	src := source{t, "static void F(delegate* unmanaged[Cdecl]<char*, int*, void*> cb)"}
	cb := src.slot("cb", "delegate* unmanaged[Cdecl]<char*, int*, void*>", 0)
	method := &metadata.Method{
		Name:     "F",
		Exported: true,
		Return:   src.slot("", "void", 0),
		Params:   []metadata.Slot{cb},
	}

	diagnostics := Check(method)
	require.Equal(t, []Rule{RuleRequiredCompositeAnnotation}, rules(diagnostics))
	assert.Equal(t, cb.At, diagnostics[0].At)
	assert.Equal(t, "Required ConstMeta for type 'delegate* unmanaged[Cdecl]<char*, int*, void*>'", diagnostics[0].Message)

	method.Exported = false
	assert.Empty(t, Check(method))
}

func TestCheck_CompositeArityMismatch(t *testing.T) {
	src := source{t, "static void F([ConstMeta<IsConst, IsConst>] delegate* unmanaged<char*, int*, void*> cb)"}
	method := &metadata.Method{
		Name:     "F",
		Exported: true,
		Return:   src.slot("", "void", 0),
		Params: []metadata.Slot{
			src.slot("cb", "delegate* unmanaged<char*, int*, void*>", 0, src.annotation("ConstMeta<IsConst, IsConst>", 0)),
		},
	}

	assert.Equal(t, []Rule{RuleRequiredCompositeAnnotation}, rules(Check(method)))
}

func TestCheck_CompositeSlots(t *testing.T) {
	const composite = "ConstMeta<IsConst<IsPtrConst>, IsConst, IsConst<IsPtrConst>>"
	src := source{t, "static void F([" + composite + "] delegate* unmanaged<char, int*, void*> cb)"}
	fpType := "delegate* unmanaged<char, int*, void*>"
	method := &metadata.Method{
		Name:     "F",
		Exported: true,
		Return:   src.slot("", "void", 0),
		Params:   []metadata.Slot{src.slot("cb", fpType, 0, src.annotation(composite, 0))},
	}

	diagnostics := Check(method)
	require.Equal(t, []Rule{
		RuleUnnecessaryPointsToConst, RuleUnnecessaryConst,
		RuleRequiredPointsToConst,
	}, rules(diagnostics))

	first := src.at("IsConst<IsPtrConst>", 0)
	assert.Equal(t, src.at("IsPtrConst", 0).Offset, diagnostics[0].At.Offset)
	assert.Equal(t, first.Offset, diagnostics[1].At.Offset)
	assert.Equal(t, "Unnecessary IsConst for type 'char'", diagnostics[1].Message)
	assert.Equal(t, src.at("int*", 0).Offset, diagnostics[2].At.Offset)

	fixed := src.fix(diagnostics)
	assert.Equal(t, "static void F([ConstMeta<IsNotConst, IsConst, IsConst<IsPtrConst>>] "+fpType+" cb)", fixed)
}

func TestCheck_CompositeOnValueToken(t *testing.T) {
	const composite = "ConstMeta<IsConst, IsNotConst>"
	src := source{t, "static void F([" + composite + "] delegate* unmanaged<int, void> cb)"}
	method := &metadata.Method{
		Name:   "F",
		Return: src.slot("", "void", 0),
		Params: []metadata.Slot{
			src.slot("cb", "delegate* unmanaged<int, void>", 0, src.annotation(composite, 0)),
		},
	}

	diagnostics := Check(method)
	require.Equal(t, []Rule{RuleUnnecessaryConst}, rules(diagnostics))
	assert.Equal(t, "static void F([ConstMeta<IsNotConst, IsNotConst>] delegate* unmanaged<int, void> cb)", src.fix(diagnostics))
}

func TestCheck_UnknownInnerToken(t *testing.T) {
	src := source{t, "static void F([IsNotConst<Unrelated>] int x)"}
	method := &metadata.Method{
		Name:   "F",
		Return: src.slot("", "void", 0),
		Params: []metadata.Slot{
			src.slot("x", "int", 0, src.annotation("IsNotConst<Unrelated>", 0)),
		},
	}

	assert.Empty(t, Check(method))
}

func TestCheck_Idempotent(t *testing.T) {
	src := source{t, "static int F([IsConst<IsPtrConst>] int x, char* s)"}
	method := &metadata.Method{
		Name:     "F",
		Exported: true,
		Return:   src.slot("", "int", 0),
		Params: []metadata.Slot{
			src.slot("x", "int", 1, src.annotation("IsConst<IsPtrConst>", 0)),
			src.slot("s", "char*", 0),
		},
	}

	first := Check(method)
	second := Check(method)
	assert.Len(t, first, 4)
	assert.Equal(t, first, second)
}
