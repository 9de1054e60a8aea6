package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKinds(t *testing.T) {
	kinds, err := NewKinds(DefaultKinds())
	require.NoError(t, err)

	assert.Equal(t, []string{"artifact", "function", "feature-set"}, kinds.Names())

	kind, ok := kinds.Lookup("feature-set")
	require.True(t, ok)
	assert.Equal(t, "feature_sets_tags", kind.TagTable)

	_, ok = kinds.Lookup("model")
	assert.False(t, ok)
}

func TestNewKindsRejectsDuplicates(t *testing.T) {
	_, err := NewKinds([]Kind{KindArtifact, KindArtifact})
	assert.Error(t, err)

	_, err = NewKinds([]Kind{{Name: "x"}})
	assert.Error(t, err)
}

func TestKindsAllIsACopy(t *testing.T) {
	kinds, err := NewKinds(DefaultKinds())
	require.NoError(t, err)

	all := kinds.All()
	all[0].Table = "changed"

	kind, _ := kinds.Lookup("artifact")
	assert.Equal(t, "artifacts", kind.Table)
}

func TestSelectKinds(t *testing.T) {
	kinds, err := SelectKinds(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultKinds(), kinds)

	kinds, err = SelectKinds([]string{"function", "artifact"})
	require.NoError(t, err)
	assert.Equal(t, []Kind{KindFunction, KindArtifact}, kinds)

	_, err = SelectKinds([]string{"model"})
	assert.ErrorContains(t, err, `unknown kind "model"`)
}
