package validation

import (
	"nativeabi/internal/codefix"
	"nativeabi/internal/constmeta"
	"nativeabi/internal/metadata"
	"nativeabi/internal/syntax"
)

func unnecessaryConstFixes(meta constmeta.ConstMetadata) []codefix.SuggestedFix {
	if arg := meta.Argument; arg != nil {
		if len(arg.Args) > 0 {
			return fix("Replace with IsNotConst", replace(arg.NameSpan, "IsNotConst"))
		}
		return fix("Replace with IsNotConst", replace(arg.Span, "IsNotConst"))
	}

	if meta.Source == nil {
		return nil
	}
	return fix("Remove "+meta.Source.Syntax.Name, removeAttribute(meta.Source.Syntax))
}

func unnecessaryPointsToConstFixes(meta constmeta.ConstMetadata) []codefix.SuggestedFix {
	if arg := meta.Argument; arg != nil {
		if !arg.ArgsSpan.IsValid() {
			return nil
		}
		return fix("Remove IsPtrConst", remove(arg.ArgsSpan))
	}

	if meta.Source == nil {
		return nil
	}
	attr := meta.Source.Syntax

	switch meta.Source.Kind {
	case metadata.AnnotationIsConstOf:
		return fix("Remove IsPtrConst", remove(attr.ArgsSpan))
	case metadata.AnnotationIsNotConstOf:
		return fix("Remove "+attr.Name, removeAttribute(attr))
	case metadata.AnnotationIsConst:
		if attr.NamedSpan.IsValid() {
			return fix("Remove PointsToConstant", remove(attr.NamedSpan))
		}
	}
	return nil
}

func fix(message string, edits ...codefix.TextEdit) []codefix.SuggestedFix {
	return []codefix.SuggestedFix{{Message: message, TextEdits: edits}}
}

func replace(at syntax.Span, text string) codefix.TextEdit {
	return codefix.TextEdit{File: at.File, Pos: at.Offset, End: at.End, NewText: text}
}

func remove(at syntax.Span) codefix.TextEdit {
	return codefix.TextEdit{File: at.File, Pos: at.Offset, End: at.End}
}

func removeAttribute(attr *syntax.Attribute) codefix.TextEdit {
	edit := remove(attr.Span)
	edit.RemovesListItem = true
	return edit
}
