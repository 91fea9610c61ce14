// Package constmeta resolves the const-correctness metadata of every signature slot
// from the IsConst / IsNotConst / ConstMeta annotation family.
package constmeta

import (
	"nativeabi/internal/metadata"
	"nativeabi/internal/syntax"
)

type FlagKind int

const (
	NotAnnotated FlagKind = iota
	Const
	NotConst
)

// ConstFlag is the value a single flag token stands for. PointsToConst is only
// meaningful for Const and NotConst.
type ConstFlag struct {
	Kind          FlagKind
	PointsToConst bool
}

func (f ConstFlag) String() string {
	switch f.Kind {
	case Const:
		if f.PointsToConst {
			return "IsConst<IsPtrConst>"
		}
		return "IsConst"
	case NotConst:
		if f.PointsToConst {
			return "IsNotConst<IsPtrConst>"
		}
		return "IsNotConst"
	}
	return "not annotated"
}

// FlagFromToken interprets a type argument of a composite annotation. Tokens that are
// not part of the flag contract read as NotConst without points-to-const.
func FlagFromToken(token *syntax.TypeArg) ConstFlag {
	if token == nil {
		return ConstFlag{}
	}

	switch {
	case token.Name == "IsConst" && len(token.Args) == 0:
		return ConstFlag{Kind: Const}
	case token.Name == "IsNotConst" && len(token.Args) == 0:
		return ConstFlag{Kind: NotConst}
	case token.Name == "IsConst" && len(token.Args) == 1:
		return ConstFlag{Kind: Const, PointsToConst: isPtrConst(&token.Args[0])}
	case token.Name == "IsNotConst" && len(token.Args) == 1:
		return ConstFlag{Kind: NotConst, PointsToConst: isPtrConst(&token.Args[0])}
	}
	return ConstFlag{Kind: NotConst}
}

// FlagFromAnnotation interprets a slot-level annotation of either family.
func FlagFromAnnotation(annotation *metadata.Annotation) ConstFlag {
	switch annotation.Kind {
	case metadata.AnnotationIsConst:
		pointsToConst, _ := annotation.PointsToConstant()
		return ConstFlag{Kind: Const, PointsToConst: pointsToConst}
	case metadata.AnnotationIsConstOf:
		return ConstFlag{Kind: Const, PointsToConst: isPtrConst(annotation.Inner())}
	case metadata.AnnotationIsNotConstOf:
		return ConstFlag{Kind: NotConst, PointsToConst: isPtrConst(annotation.Inner())}
	}
	return ConstFlag{}
}

func isPtrConst(token *syntax.TypeArg) bool {
	return token != nil && token.Name == "IsPtrConst" && len(token.Args) == 0
}
