package blueprint

import (
	"bytes"
	"os/exec"
	"testing"

	"github.com/coding-hui/common/labels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbehar/bricks/pkg/bricks"
	"github.com/vbehar/bricks/pkg/middleware"
)

func brick(kind, name string, requires, provides []string) Brick {
	return Brick{
		Kind:     kind,
		Metadata: BrickMetadata{Name: name},
		Requires: requires,
		Provides: provides,
	}
}

func TestBlueprintFilter(t *testing.T) {
	t.Parallel()

	bp := New("test",
		Brick{Kind: "logger", Metadata: BrickMetadata{Name: "logger", Labels: map[string]string{"stage": "ambient"}}},
		Brick{Kind: "bench", Metadata: BrickMetadata{Name: "timer", Labels: map[string]string{"stage": "ambient"}}},
		Brick{Kind: "exec", Metadata: BrickMetadata{Name: "upload"}},
	)

	tests := []struct {
		name     string
		selector string
		expected []string
	}{
		{
			name:     "everything",
			selector: "",
			expected: []string{"logger", "timer", "upload"},
		},
		{
			name:     "by label",
			selector: "stage=ambient",
			expected: []string{"logger", "timer"},
		},
		{
			name:     "by kind",
			selector: "kind!=bench",
			expected: []string{"logger", "upload"},
		},
		{
			name:     "by name",
			selector: "name in (upload,timer)",
			expected: []string{"timer", "upload"},
		},
		{
			name:     "nothing",
			selector: "stage=none",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			selector, err := labels.Parse(test.selector)
			require.NoError(t, err)

			var names []string
			for _, b := range bp.Filter(selector).Bricks {
				names = append(names, b.Metadata.Name)
			}
			assert.Equal(t, test.expected, names)
		})
	}
}

func TestBlueprintValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		bricks        []Brick
		initialKeys   []string
		withKinds     bool
		expectedError string
	}{
		{
			name: "empty",
		},
		{
			name: "exec variable not provided",
			bricks: []Brick{
				{
					Kind:     "exec",
					Metadata: BrickMetadata{Name: "greet"},
					Spec:     map[string]any{"args": []any{"-c", "echo $greeting"}},
				},
			},
			withKinds:     true,
			expectedError: `key "greeting" required by "greet" is not provided by any earlier brick`,
		},
		{
			name: "exec variable provided",
			bricks: []Brick{
				brick("set", "greeting", nil, []string{"greeting"}),
				{
					Kind:     "exec",
					Metadata: BrickMetadata{Name: "greet"},
					Spec:     map[string]any{"args": []any{"-c", "echo ${greeting} $run_id"}},
				},
			},
			initialKeys: []string{"run_id"},
			withKinds:   true,
		},
		{
			name: "provided before use",
			bricks: []Brick{
				brick("set", "dataset", nil, []string{"dataset"}),
				brick("exec", "upload", []string{"dataset"}, nil),
			},
		},
		{
			name: "initial key",
			bricks: []Brick{
				brick("exec", "upload", []string{"project_id"}, nil),
			},
			initialKeys: []string{"project_id"},
		},
		{
			name: "not provided",
			bricks: []Brick{
				brick("exec", "upload", []string{"dataset"}, nil),
			},
			expectedError: `key "dataset" required by "upload" is not provided by any earlier brick`,
		},
		{
			name: "provided later",
			bricks: []Brick{
				brick("exec", "upload", []string{"dataset"}, nil),
				brick("set", "dataset", nil, []string{"dataset"}),
			},
			expectedError: `key "dataset" required by "upload" is only provided later, by "dataset"`,
		},
		{
			name: "provided by itself",
			bricks: []Brick{
				brick("exec", "upload", []string{"rows"}, []string{"rows"}),
			},
			expectedError: `key "rows" required by "upload" is not provided by any earlier brick`,
		},
		{
			name: "duplicate name",
			bricks: []Brick{
				brick("bench", "timer", nil, nil),
				brick("bench", "timer", nil, nil),
			},
			expectedError: `brick "timer" is declared more than once`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			bp := New("test", test.bricks...)
			if test.withKinds {
				*bp = bp.WithKinds(Default())
			}
			err := bp.Validate(test.initialKeys)
			if test.expectedError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, test.expectedError)
		})
	}
}

func TestBlueprintDependencies(t *testing.T) {
	t.Parallel()

	bp := New("test",
		brick("logger", "logger", nil, nil),
		brick("set", "dataset", nil, []string{"dataset"}),
		brick("exec", "count", []string{"dataset"}, []string{"rows"}),
		brick("exec", "upload", []string{"rows", "project_id"}, nil),
	)

	deps, err := bp.Dependencies("upload", []string{"project_id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "dataset"}, deps)

	deps, err = bp.Dependencies("logger", []string{"project_id"})
	require.NoError(t, err)
	assert.Empty(t, deps)

	_, err = bp.Dependencies("upload", nil)
	assert.Error(t, err)

	_, err = bp.Dependencies("missing", []string{"project_id"})
	assert.Error(t, err)
}

func TestBlueprintPipeline(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}

	bp, err := NewLoader().Load("testdata/upload")
	require.NoError(t, err)
	require.NoError(t, bp.Validate([]string{"project_id"}))

	var stdout bytes.Buffer
	p, err := bp.Pipeline(Default(), Deps{Stdout: &stdout})
	require.NoError(t, err)
	assert.Equal(t, 4, p.Len())
	assert.Equal(t, "upload", p.Name)

	chain := p.Prepare()
	assert.Equal(t, 4, bricks.Len(chain))
	require.NoError(t, bricks.CheckVersions(chain))

	params := bricks.Params{"project_id": "la84vcyhrq8jwbu4wpipw66q2sqeb923"}
	res, err := p.Run(params)
	require.NoError(t, err)
	assert.Equal(t, "uploading dataset.commits to la84vcyhrq8jwbu4wpipw66q2sqeb923", res)
	assert.Equal(t, res, params[middleware.ExecOutputKey])
	assert.NotNil(t, params.Sink())
}

func TestBlueprintPipelineErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		brick         Brick
		expectedError error
	}{
		{
			name:          "unknown kind",
			brick:         brick("twitter", "tweet", nil, nil),
			expectedError: ErrUnknownKind,
		},
		{
			name:          "missing name",
			brick:         brick("bench", "", nil, nil),
			expectedError: ErrInvalidSpec,
		},
		{
			name: "unexpected spec field",
			brick: Brick{
				Kind:     "bench",
				Metadata: BrickMetadata{Name: "timer"},
				Spec:     map[string]any{"precision": "ms"},
			},
			expectedError: ErrInvalidSpec,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			_, err := New("test", test.brick).Pipeline(Default(), Deps{})
			assert.ErrorIs(t, err, test.expectedError)
		})
	}
}
