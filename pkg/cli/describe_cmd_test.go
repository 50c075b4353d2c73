package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbehar/bricks/pkg/blueprint"
)

func TestBlueprintTree(t *testing.T) {
	t.Parallel()

	bp := blueprint.New("upload",
		blueprint.Brick{
			Kind:     "logger",
			Metadata: blueprint.BrickMetadata{Name: "logger", Labels: map[string]string{"stage": "ambient"}},
		},
		blueprint.Brick{
			Kind:     "set",
			Metadata: blueprint.BrickMetadata{Name: "dataset"},
			Provides: []string{"dataset"},
		},
		blueprint.Brick{
			Kind:     "exec",
			Metadata: blueprint.BrickMetadata{Name: "upload"},
			Requires: []string{"dataset", "project_id"},
		},
	)

	root, err := blueprintTree(*bp, []string{"project_id"})
	require.NoError(t, err)

	out := root.String()
	assert.Contains(t, out, "Blueprint upload:")
	assert.Contains(t, out, "logger (logger)")
	assert.Contains(t, out, "stage=ambient")
	assert.Contains(t, out, "provides: dataset")
	assert.Contains(t, out, "requires: dataset, project_id")
	assert.Contains(t, out, "depends on: dataset")

	_, err = blueprintTree(*bp, nil)
	assert.ErrorContains(t, err, `key "project_id" required by "upload"`)
}
