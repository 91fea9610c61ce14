package generation

import (
	"fmt"
	"strings"
)

const headerGuard = "SRC_BINDINGS_H_"

const cIncludes = `
#include <stdlib.h>
#include <stdint.h>
`

const cppIncludes = `
#include <memory>
#include <string>
#include <cstdint>
#include <cuchar>
`

// Every return_value_* struct leads with the error field so callers can check it
// without knowing the result kind.
const headerTypes = `
#ifndef __cplusplus
        typedef char16_t wchar_t;
#endif
        typedef char16_t param_string;
        typedef char16_t param_json;
        typedef uint8_t param_data;
        typedef uint8_t param_bool;
        typedef int32_t param_int;
        typedef uint32_t param_uint;
        typedef void param_ptr;

        typedef struct return_value_void
        {
            param_string *const error;
        } return_value_void;
        typedef struct return_value_string
        {
            param_string *const error;
            param_string *const value;
        } return_value_string;
        typedef struct return_value_json
        {
            param_string *const error;
            param_json *const value;
        } return_value_json;
        typedef struct return_value_data
        {
            param_string *const error;
            param_data *const value;
            param_int length;
        } return_value_data;
        typedef struct return_value_bool
        {
            param_string *const error;
            param_bool const value;
        } return_value_bool;
        typedef struct return_value_int32
        {
            param_string *const error;
            param_int const value;
        } return_value_int32;
        typedef struct return_value_uint32
        {
            param_string *const error;
            param_uint const value;
        } return_value_uint32;
        typedef struct return_value_ptr
        {
            param_string *const error;
            param_ptr *const value;
        } return_value_ptr;
`

// cppNamespace turns a dotted root namespace into a C++ nested namespace name.
func cppNamespace(rootNamespace string) string {
	return strings.ReplaceAll(rootNamespace, ".", "::")
}

// renderHeader wraps declaration lines into the full header text.
func renderHeader(rootNamespace string, declarations []string) string {
	var b strings.Builder

	b.WriteString("\n")
	fmt.Fprintf(&b, "#ifndef %s\n", headerGuard)
	fmt.Fprintf(&b, "#define %s\n\n", headerGuard)

	b.WriteString("#ifndef __cplusplus\n")
	b.WriteString(cIncludes)
	b.WriteString("\n#else\n")
	b.WriteString(cppIncludes)
	fmt.Fprintf(&b, "\nnamespace %s\n{\n", cppNamespace(rootNamespace))
	b.WriteString("    extern \"C\"\n    {\n")
	b.WriteString("#endif\n")

	b.WriteString(headerTypes)
	b.WriteString("\n")
	for _, declaration := range declarations {
		b.WriteString(declaration)
		b.WriteString("\n")
	}

	b.WriteString("\n\n#ifdef __cplusplus\n")
	b.WriteString("    }\n}\n")
	b.WriteString("#endif\n\n")
	b.WriteString("#endif\n")

	return b.String()
}
