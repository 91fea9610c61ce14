package constmeta

import "nativeabi/internal/metadata"

// FunctionMetadata holds the resolution of every slot of one method.
type FunctionMetadata struct {
	Return Resolution
	Params []ParameterMetadata
}

// ParameterMetadata is the resolution of a parameter. Function pointer parameters
// additionally carry the resolution of their own slots.
type ParameterMetadata struct {
	Resolution
	FunctionPointer *FunctionPointerMetadata
}

type FunctionPointerMetadata struct {
	// Composite is nil when no ConstMeta annotation of the right arity is attached.
	Composite *metadata.Annotation
	Params    []Resolution
	Return    Resolution
}

func (f *FunctionPointerMetadata) HasComposite() bool {
	return f.Composite != nil
}

// ResolveMethod resolves all slots of method. It only reads method, so it can run
// concurrently for different methods.
func ResolveMethod(method *metadata.Method) FunctionMetadata {
	result := FunctionMetadata{
		Return: resolution(ResolveReturn(method)),
		Params: make([]ParameterMetadata, len(method.Params)),
	}

	for i := range method.Params {
		param := &method.Params[i]
		result.Params[i] = ParameterMetadata{
			Resolution: resolution(ResolveParameter(method, param)),
		}
		if param.Type.IsFunctionPointer() {
			result.Params[i].FunctionPointer = resolveFunctionPointer(param)
		}
	}

	return result
}

func resolveFunctionPointer(param *metadata.Slot) *FunctionPointerMetadata {
	signature := param.Type.Signature
	fp := &FunctionPointerMetadata{
		Composite: FindComposite(param),
		Params:    make([]Resolution, len(signature.Params)),
	}

	for i := range signature.Params {
		fp.Params[i] = resolution(ResolveFunctionPointerSlot(param, i))
	}
	fp.Return = resolution(ResolveFunctionPointerSlot(param, len(signature.Params)))

	return fp
}
