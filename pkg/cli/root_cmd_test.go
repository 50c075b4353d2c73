package cli

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/coding-hui/common/labels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagoodman/go-partybus"
)

const greetBlueprint = `kind: logger
---
kind: bench
---
kind: set
metadata:
  name: greeting
spec:
  values:
    greeting: hello
provides:
  - greeting
---
kind: exec
metadata:
  name: greet
  labels:
    stage: greet
spec:
  args:
    - -c
    - echo $greeting $name
`

// useTestState swaps the package state used by run, and restores it after the test.
func useTestState(t *testing.T, selector string, params map[string]string) *partybus.Subscription {
	t.Helper()

	savedConfig, savedDeps := *bricksConfig, deps
	t.Cleanup(func() {
		*bricksConfig = savedConfig
		deps = savedDeps
	})

	labelSelector, err := labels.Parse(selector)
	require.NoError(t, err)
	bricksConfig.labelSelector = labelSelector
	bricksConfig.params = params
	bricksConfig.SkipValidation = false

	deps.Bus = partybus.NewBus()
	deps.Stdout = io.Discard
	deps.Stderr = io.Discard
	return deps.Bus.Subscribe(EventTypePipelineStarted, EventTypePipelineFinished)
}

func writeBlueprint(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "greet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func nextEvent(t *testing.T, sub *partybus.Subscription) partybus.Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return partybus.Event{}
	}
}

func TestRun(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}

	sub := useTestState(t, "", map[string]string{"name": "bricks"})
	path := writeBlueprint(t, greetBlueprint)

	require.NoError(t, run(nil, []string{path}))

	started := nextEvent(t, sub)
	assert.Equal(t, EventTypePipelineStarted, started.Type)
	info := started.Source.(map[string]string)
	assert.Equal(t, "greet", info["pipeline"])
	assert.Equal(t, "4", info["bricks"])
	assert.Equal(t, bricksConfig.runID, info["run_id"])

	finished := nextEvent(t, sub)
	assert.Equal(t, EventTypePipelineFinished, finished.Type)
	assert.Equal(t, PipelineResult{Result: "hello bricks"}, finished.Value)
}

func TestRunFailsValidationBeforeRunning(t *testing.T) {
	sub := useTestState(t, "", nil)
	path := writeBlueprint(t, greetBlueprint)

	err := run(nil, []string{path})
	assert.ErrorContains(t, err, `key "name" required by "greet" is not provided by any earlier brick`)

	select {
	case event := <-sub.Events():
		t.Fatalf("unexpected event %q", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunReportsBrickErrors(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}

	sub := useTestState(t, "", map[string]string{"name": "bricks"})
	path := writeBlueprint(t, greetBlueprint+`---
kind: exec
metadata:
  name: fail
spec:
  args: ["-c", "exit 3"]
`)

	err := run(nil, []string{path})
	assert.ErrorContains(t, err, `pipeline "greet" failed`)

	nextEvent(t, sub)
	finished := nextEvent(t, sub)
	res, ok := finished.Value.(PipelineResult)
	require.True(t, ok)
	assert.Error(t, res.Err)
}

func TestRunNoBricks(t *testing.T) {
	useTestState(t, "stage=none", nil)
	path := writeBlueprint(t, greetBlueprint)

	assert.NoError(t, run(nil, []string{path}))
}
