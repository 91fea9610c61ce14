package validation

import (
	"nativeabi/internal/constmeta"
	"nativeabi/internal/metadata"
	"nativeabi/internal/syntax"
)

// Check resolves method and validates it with the profile its export context selects.
func Check(method *metadata.Method) []Diagnostic {
	return Validate(method, constmeta.ResolveMethod(method), ProfileFor(method))
}

// Validate reports every finding of method. It neither mutates its input nor stops at
// the first finding, so the same input always yields the same diagnostics.
func Validate(method *metadata.Method, resolved constmeta.FunctionMetadata, profile Profile) []Diagnostic {
	v := validator{function: method.ExportName(), profile: profile}

	v.checkSlot(&method.Return, resolved.Return)

	for i := range method.Params {
		param := &method.Params[i]
		if i >= len(resolved.Params) {
			break
		}
		paramMetadata := resolved.Params[i]

		v.checkSlot(param, paramMetadata.Resolution)
		if paramMetadata.FunctionPointer != nil {
			v.checkFunctionPointer(param, paramMetadata.FunctionPointer)
		}
	}

	return v.diagnostics
}

type validator struct {
	function    string
	profile     Profile
	diagnostics []Diagnostic
}

func (v *validator) report(diagnostic Diagnostic) {
	v.diagnostics = append(v.diagnostics, diagnostic)
}

func (v *validator) checkSlot(slot *metadata.Slot, resolved constmeta.Resolution) {
	meta := resolved.Metadata

	if !slot.Type.IsPointer() {
		// Method-level annotations reach every parameter; they are only wrong where
		// they are written.
		if resolved.Present && !meta.Inherited {
			v.checkUnnecessary(slot.Type, meta)
		}
		return
	}

	if v.profile == ProfileStrict {
		v.checkRequired(slot.Type, slot.At, resolved)
	}
}

func (v *validator) checkUnnecessary(slotType metadata.Type, meta constmeta.ConstMetadata) {
	if meta.IsPointingToConst {
		diagnostic := newDiagnostic(RuleUnnecessaryPointsToConst, v.function, slotType, meta.PointsToConstAt)
		diagnostic.Fixes = unnecessaryPointsToConstFixes(meta)
		v.report(diagnostic)
	}
	if meta.IsConst {
		diagnostic := newDiagnostic(RuleUnnecessaryConst, v.function, slotType, meta.ConstAt)
		diagnostic.Fixes = unnecessaryConstFixes(meta)
		v.report(diagnostic)
	}
}

func (v *validator) checkRequired(slotType metadata.Type, at syntax.Span, resolved constmeta.Resolution) {
	if !resolved.Present || !resolved.Metadata.IsPointingToConst {
		v.report(newDiagnostic(RuleRequiredPointsToConst, v.function, slotType, at))
	}
	if !resolved.Present || !resolved.Metadata.IsConst {
		v.report(newDiagnostic(RuleRequiredConst, v.function, slotType, at))
	}
}

func (v *validator) checkFunctionPointer(param *metadata.Slot, fp *constmeta.FunctionPointerMetadata) {
	if !fp.HasComposite() {
		if v.profile == ProfileStrict {
			v.report(newDiagnostic(RuleRequiredCompositeAnnotation, v.function, param.Type, param.At))
		}
		return
	}

	signature := param.Type.Signature
	for i := range signature.Params {
		if i < len(fp.Params) {
			v.checkSlot(&signature.Params[i], fp.Params[i])
		}
	}
	v.checkSlot(&signature.Return, fp.Return)
}
