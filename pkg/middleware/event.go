package middleware

import (
	"time"

	"github.com/wagoodman/go-partybus"
)

const (
	EventTypeBenchmark  = partybus.EventType("brick.benchmark")
	EventTypeExecOutput = partybus.EventType("brick.exec.output")
)

// Benchmark is the value of an EventTypeBenchmark event.
type Benchmark struct {
	Brick    string
	Duration time.Duration
	Err      error
}

func publish(bus *partybus.Bus, event partybus.Event) {
	if bus == nil {
		return
	}
	bus.Publish(event)
}
