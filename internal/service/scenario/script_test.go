package scenario

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScriptReturnsCompleteScenarios(t *testing.T) {
	script := NewScript(42)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		s, err := script.NewScenario(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, s.Destiny)
		require.NotEmpty(t, s.Relation)
		require.NotEmpty(t, s.Gender)
		require.Positive(t, s.Age)
		require.NotEmpty(t, s.Prompts)
	}
}

func TestScriptCopiesAreIndependent(t *testing.T) {
	script := NewScript(42)
	ctx := context.Background()

	first, err := script.NewScenario(ctx)
	require.NoError(t, err)
	first.Prompts[0] = "mutated"

	// The mutation stays on the caller's copy.
	for i := 0; i < 20; i++ {
		s, err := script.NewScenario(ctx)
		require.NoError(t, err)
		for _, prompt := range s.Prompts {
			require.NotEqual(t, "mutated", prompt)
		}
	}
}
