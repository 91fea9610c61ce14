// Package generation projects exported functions into the C/C++ header native callers
// compile against.
package generation

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"nativeabi/internal/config"
	"nativeabi/internal/constmeta"
	"nativeabi/internal/metadata"
	"nativeabi/internal/safe"
)

// Function is an exported method together with its resolved const metadata.
type Function struct {
	Method   *metadata.Method
	Metadata constmeta.FunctionMetadata
}

type Generator struct {
	Functions []Function
	config    config.Config
	logger    zerolog.Logger
}

func NewGenerator(cfg config.Config, logger zerolog.Logger) *Generator {
	return &Generator{
		Functions: make([]Function, 0),
		config:    cfg,
		logger:    logger,
	}
}

// RegisterFunction adds method to the header. Methods that are not exported are ignored.
func (generator *Generator) RegisterFunction(method *metadata.Method, resolved constmeta.FunctionMetadata) {
	if !method.Exported {
		return
	}
	generator.Functions = append(generator.Functions, Function{Method: method, Metadata: resolved})
}

// HeaderPath is `{projectDir}/{assemblyName}.h`.
func (generator *Generator) HeaderPath() (string, error) {
	if err := generator.config.ProjectInfo(); err != nil {
		return "", err
	}
	return filepath.Join(generator.config.ProjectDir, generator.config.AssemblyName+".h"), nil
}

// Emit renders the header with declarations ordered by export name.
// It stops between functions once ctx is done.
func (generator *Generator) Emit(ctx context.Context) (string, error) {
	functions := make([]Function, len(generator.Functions))
	copy(functions, generator.Functions)
	sort.SliceStable(functions, func(i, j int) bool {
		a, b := functions[i].Method, functions[j].Method
		if a.ExportName() != b.ExportName() {
			return a.ExportName() < b.ExportName()
		}
		return a.Name < b.Name
	})

	declarations := make([]string, 0, len(functions))
	for _, function := range functions {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		declarations = append(declarations, Declaration(function.Method, function.Metadata, generator.config.Platform))
		generator.logger.Trace().Str("function", function.Method.ExportName()).Msg("declaration rendered")
	}

	return renderHeader(generator.config.RootNamespace, declarations), nil
}

// Generate writes the header and returns its path. Nothing is written, and the path is
// empty, when there are no exported functions or the project information is incomplete.
func (generator *Generator) Generate(ctx context.Context) (string, error) {
	if len(generator.Functions) == 0 {
		generator.logger.Info().Msg("no exported functions, header not written")
		return "", nil
	}

	path, err := generator.HeaderPath()
	if err != nil {
		generator.logger.Debug().Err(err).Msg("header generation skipped")
		return "", nil
	}

	header, err := generator.Emit(ctx)
	if err != nil {
		return "", err
	}

	if err := safe.WriteFileAtomic(path, []byte(header), generator.logger); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	generator.logger.Info().
		Str("path", path).
		Int("functions", len(generator.Functions)).
		Msg("header written")

	return path, nil
}

// Declaration renders one header line for method.
func Declaration(method *metadata.Method, resolved constmeta.FunctionMetadata, platform string) string {
	params := make([]string, 0, len(method.Params))
	for i := range method.Params {
		param := &method.Params[i]

		var paramMetadata constmeta.ParameterMetadata
		if i < len(resolved.Params) {
			paramMetadata = resolved.Params[i]
		}

		if param.Type.IsFunctionPointer() {
			params = append(params, functionPointerParameter(param, paramMetadata.FunctionPointer, platform))
			continue
		}
		params = append(params, Project(param.Type, paramMetadata.Metadata)+" "+param.Name)
	}

	return fmt.Sprintf("    %s %s %s(%s);",
		Project(method.Return.Type, resolved.Return.Metadata),
		CallingConvention(method, platform),
		method.ExportName(),
		strings.Join(params, ", "))
}
