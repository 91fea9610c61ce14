package generation

import (
	"strings"

	"nativeabi/internal/metadata"
)

const platformWindows = "windows"

var callConvKeywords = map[string]string{
	"CallConvCdecl":    "__cdecl",
	"CallConvStdcall":  "__stdcall",
	"CallConvFastcall": "__fastcall",
	"CallConvThiscall": "__thiscall",
}

var signatureKeywords = map[metadata.CallingConvention]string{
	metadata.CallingConventionCDecl:    "__cdecl",
	metadata.CallingConventionStdCall:  "__stdcall",
	metadata.CallingConventionFastCall: "__fastcall",
	metadata.CallingConventionThisCall: "__thiscall",
}

// CallingConvention returns the keyword method is declared with. The export attribute's
// CallConvs override wins, then the signature, then the platform default.
// Override types without a keyword are emitted by name.
func CallingConvention(method *metadata.Method, platform string) string {
	if len(method.CallConvs) > 0 {
		name := method.CallConvs[0]
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if keyword, found := callConvKeywords[name]; found {
			return keyword
		}
		return name
	}

	if keyword, found := signatureKeywords[method.CallingConvention]; found {
		return keyword
	}

	return platformDefault(platform)
}

func signatureConvention(signature *metadata.Signature, platform string) string {
	if keyword, found := signatureKeywords[signature.CallingConvention]; found {
		return keyword
	}
	return platformDefault(platform)
}

func platformDefault(platform string) string {
	if strings.EqualFold(platform, platformWindows) {
		return "__stdcall"
	}
	return "__cdecl"
}
