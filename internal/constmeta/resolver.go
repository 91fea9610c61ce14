package constmeta

import (
	"nativeabi/internal/metadata"
	"nativeabi/internal/syntax"
)

// ConstMetadata is the resolved const state of one slot.
//
// IsConst qualifies the pointee (`const T*`) and IsPointingToConst qualifies the
// pointer itself (`T* const`). The names are kept as the annotations spell them.
type ConstMetadata struct {
	IsConst           bool
	IsPointingToConst bool
	// Source is the annotation the values were read from.
	Source *metadata.Annotation
	// Argument is the type argument of Source that describes a function pointer slot.
	Argument *syntax.TypeArg
	// Inherited is set when a parameter took the method-level annotation.
	Inherited bool
	// ConstAt and PointsToConstAt anchor diagnostics about each aspect.
	ConstAt         syntax.Span
	PointsToConstAt syntax.Span
}

// Resolution is the outcome for one slot. Present is false when no annotation applies,
// which is different from an annotation that resolves to false.
type Resolution struct {
	Metadata ConstMetadata
	Present  bool
}

func resolution(meta ConstMetadata, present bool) Resolution {
	return Resolution{Metadata: meta, Present: present}
}

// ResolveReturn resolves the return slot. Return-level annotations override
// method-level ones, family by family.
func ResolveReturn(method *metadata.Method) (ConstMetadata, bool) {
	meta, _, found := resolveLayered(method.Return.Annotations, method.Annotations)
	return meta, found
}

// ResolveParameter resolves a plain parameter. Any const annotation on the parameter
// replaces the method-level ones; only without one are they inherited.
func ResolveParameter(method *metadata.Method, param *metadata.Slot) (ConstMetadata, bool) {
	if hasConstAnnotation(param.Annotations) {
		meta, _, found := resolveLayered(param.Annotations, nil)
		return meta, found
	}

	meta, _, found := resolveLayered(method.Annotations, nil)
	meta.Inherited = found
	return meta, found
}

func hasConstAnnotation(annotations []metadata.Annotation) bool {
	for i := range annotations {
		switch annotations[i].Kind {
		case metadata.AnnotationIsConst, metadata.AnnotationIsConstOf, metadata.AnnotationIsNotConstOf:
			return true
		}
	}
	return false
}

func resolveLayered(direct, fallback []metadata.Annotation) (ConstMetadata, bool, bool) {
	generic, genericInherited := genericAnnotation(direct, fallback)
	if generic != nil {
		flag := FlagFromAnnotation(generic)
		return ConstMetadata{
			IsConst:           flag.Kind == Const,
			IsPointingToConst: flag.PointsToConst,
			Source:            generic,
			ConstAt:           generic.Syntax.Span,
			PointsToConstAt:   generic.Inner().Span,
		}, genericInherited, true
	}

	simple, simpleInherited := simpleAnnotation(direct, fallback)
	if simple != nil {
		flag := FlagFromAnnotation(simple)
		meta := ConstMetadata{
			IsConst:           flag.Kind == Const,
			IsPointingToConst: flag.PointsToConst,
			Source:            simple,
			ConstAt:           simple.Syntax.Span,
			PointsToConstAt:   simple.Syntax.Span,
		}
		if _, arg := simple.PointsToConstant(); arg != nil {
			meta.PointsToConstAt = arg.Span
		}
		return meta, simpleInherited, true
	}

	return ConstMetadata{}, false, false
}

func simpleAnnotation(direct, fallback []metadata.Annotation) (*metadata.Annotation, bool) {
	for layerIndex, layer := range [][]metadata.Annotation{direct, fallback} {
		for i := range layer {
			if layer[i].Kind == metadata.AnnotationIsConst {
				return &layer[i], layerIndex == 1
			}
		}
	}
	return nil, false
}

// genericAnnotation picks the generic annotation of the innermost layer that has one.
// IsNotConst<> beats IsConst<> on the same layer.
func genericAnnotation(direct, fallback []metadata.Annotation) (*metadata.Annotation, bool) {
	for layerIndex, layer := range [][]metadata.Annotation{direct, fallback} {
		var constOf *metadata.Annotation
		for i := range layer {
			switch layer[i].Kind {
			case metadata.AnnotationIsNotConstOf:
				return &layer[i], layerIndex == 1
			case metadata.AnnotationIsConstOf:
				if constOf == nil {
					constOf = &layer[i]
				}
			}
		}
		if constOf != nil {
			return constOf, layerIndex == 1
		}
	}
	return nil, false
}

// FindComposite returns the ConstMeta annotation of a function pointer parameter.
// Its arity has to be the parameter count plus one for the return slot.
func FindComposite(param *metadata.Slot) *metadata.Annotation {
	if !param.Type.IsFunctionPointer() {
		return nil
	}

	arity := len(param.Type.Signature.Params) + 1
	for i := range param.Annotations {
		annotation := &param.Annotations[i]
		if annotation.Kind == metadata.AnnotationConstMeta && annotation.Syntax.Arity() == arity {
			return annotation
		}
	}
	return nil
}

// ResolveFunctionPointerSlot resolves slot index of a function pointer parameter.
// Indexes below the parameter count address parameters, the last one the return value.
func ResolveFunctionPointerSlot(param *metadata.Slot, index int) (ConstMetadata, bool) {
	composite := FindComposite(param)
	if composite == nil || index < 0 || index >= composite.Syntax.Arity() {
		return ConstMetadata{}, false
	}

	arg := &composite.Syntax.Args[index]
	flag := FlagFromToken(arg)
	meta := ConstMetadata{
		IsConst:           flag.Kind == Const,
		IsPointingToConst: flag.PointsToConst,
		Source:            composite,
		Argument:          arg,
		ConstAt:           arg.Span,
		PointsToConstAt:   arg.Span,
	}
	if len(arg.Args) > 0 {
		meta.PointsToConstAt = arg.Args[len(arg.Args)-1].Span
	}
	return meta, true
}
