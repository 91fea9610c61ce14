package analysis

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nativeabi/internal/metadata"
	"nativeabi/internal/validation"
)

const snapshotText = `
functions:
  - name: Alloc
    exported: true
    entryPoint: alloc
    returns:
      type: void*
    params:
      - name: size
        type: nuint
  - name: Helper
    params:
      - name: value
        type: int
        annotations:
          - text: IsConst
  - name: Register
    exported: true
    params:
      - name: callback
        type: delegate* unmanaged<char*, void>
`

func loadSnapshot(t *testing.T, text string) *metadata.Snapshot {
	snapshot, err := metadata.ParseSnapshot([]byte(text))
	require.NoError(t, err)
	return snapshot
}

func TestRun(t *testing.T) {
	result, err := Run(context.Background(), loadSnapshot(t, snapshotText), Options{Workers: 2}, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, result.Functions, 3)

	alloc := result.Functions[0]
	assert.Equal(t, "Alloc", alloc.Method.Name)
	assert.Equal(t, validation.ProfileStrict, alloc.Profile)
	require.Len(t, alloc.Diagnostics, 2)
	assert.Equal(t, validation.RuleRequiredPointsToConst, alloc.Diagnostics[0].Rule)
	assert.Equal(t, "alloc", alloc.Diagnostics[0].Function)

	helper := result.Functions[1]
	assert.Equal(t, validation.ProfilePermissive, helper.Profile)
	require.Len(t, helper.Diagnostics, 1)
	assert.Equal(t, validation.RuleUnnecessaryConst, helper.Diagnostics[0].Rule)

	register := result.Functions[2]
	require.Len(t, register.Diagnostics, 1)
	assert.Equal(t, validation.RuleRequiredCompositeAnnotation, register.Diagnostics[0].Rule)
	require.NotNil(t, register.Metadata.Params[0].FunctionPointer)
	assert.False(t, register.Metadata.Params[0].FunctionPointer.HasComposite())

	assert.Len(t, result.Diagnostics(), 4)
	assert.Len(t, result.Exported(), 2)
}

func TestRun_Deterministic(t *testing.T) {
	var b strings.Builder
	b.WriteString("functions:\n")
	for i := 0; i < 64; i++ {
		fmt.Fprintf(&b, "  - name: F%02d\n    exported: true\n    params:\n      - {name: p, type: \"int*\"}\n", i)
	}
	snapshot := loadSnapshot(t, b.String())

	sequential, err := Run(context.Background(), snapshot, Options{Workers: 1}, zerolog.Nop())
	require.NoError(t, err)
	parallel, err := Run(context.Background(), snapshot, Options{Workers: 8}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, sequential.Diagnostics(), parallel.Diagnostics())
	for i, function := range parallel.Functions {
		assert.Equal(t, fmt.Sprintf("F%02d", i), function.Method.Name)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Run(ctx, loadSnapshot(t, snapshotText), Options{}, zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func TestRun_Empty(t *testing.T) {
	result, err := Run(context.Background(), &metadata.Snapshot{}, Options{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, result.Functions)
	assert.Empty(t, result.Diagnostics())
}
