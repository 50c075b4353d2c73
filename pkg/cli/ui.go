package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/pborman/indent"
	"github.com/wagoodman/go-partybus"

	"github.com/vbehar/bricks/pkg/middleware"
)

const (
	EventTypePipelineStarted  = partybus.EventType("pipeline.started")
	EventTypePipelineFinished = partybus.EventType("pipeline.finished")
)

// PipelineResult is the value of an EventTypePipelineFinished event.
type PipelineResult struct {
	Result any
	Err    error
}

type UI struct {
	Output io.Writer
}

func (ui *UI) Setup(subscription partybus.Unsubscribable) error {
	return nil
}

func (ui *UI) Handle(event partybus.Event) error {
	switch event.Type {
	case EventTypePipelineStarted:
		info, _ := event.Source.(map[string]string)
		ui.print(pipelineStyle.Render(info["pipeline"]))
		ui.println(descriptionStyle.Render(fmt.Sprintf("Running %s bricks (run %s)...", info["bricks"], info["run_id"])))
	case EventTypePipelineFinished:
		info, _ := event.Source.(map[string]string)
		ui.print(pipelineStyle.Render(info["pipeline"]))
		res, _ := event.Value.(PipelineResult)
		if res.Err != nil {
			ui.println(errorStyle.Render("Failed: " + res.Err.Error()))
			return nil
		}
		ui.println(descriptionStyle.Render("Done"))
		if res.Result != nil {
			ui.println(indent.String("  ", fmt.Sprint(res.Result)))
		}
	case middleware.EventTypeBenchmark:
		bench, ok := event.Value.(middleware.Benchmark)
		if !ok {
			return nil
		}
		ui.print(pipelineStyle.Render(bench.Brick))
		ui.println(descriptionStyle.Render("took " + bench.Duration.Round(time.Millisecond).String()))
	case middleware.EventTypeExecOutput:
		ui.print(pipelineStyle.Render(fmt.Sprint(event.Source)))
		ui.println(descriptionStyle.Render("Command output:"))
		ui.println(event.Value)
	}
	return nil
}

func (ui *UI) Teardown(force bool) error {
	return nil
}

func (ui *UI) print(a ...any) {
	fmt.Fprint(ui.Output, a...) //nolint:errcheck // don't care
}

func (ui *UI) println(a ...any) {
	fmt.Fprintln(ui.Output, a...) //nolint:errcheck // don't care
}

var (
	pipelineStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), false, true).
			BorderForeground(lipgloss.Color("#874BFD")).
			Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}).
			Margin(0, 1, 0, 0)
	descriptionStyle = lipgloss.NewStyle()
	errorStyle       = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#D9534F", Dark: "#FF6B6B"})
)
