package middleware

import (
	"time"

	"github.com/wagoodman/go-partybus"

	"github.com/vbehar/bricks/pkg/bricks"
)

// BenchBrick measures how long the inner chain takes.
type BenchBrick struct {
	bricks.Base

	bus *partybus.Bus
	now func() time.Time
}

// Bench returns a factory for a BenchBrick. The bus is optional.
func Bench(bus *partybus.Bus) bricks.Factory {
	return func(next bricks.Brick) bricks.Brick {
		return &BenchBrick{
			Base: bricks.Base{Next: next},
			bus:  bus,
			now:  time.Now,
		}
	}
}

func (b *BenchBrick) Name() string    { return "bench" }
func (b *BenchBrick) Version() string { return "1.0.0" }

func (b *BenchBrick) Call(params bricks.Params) (any, error) {
	inner := bricks.Name(b.Next)

	b.Base.Call(params) //nolint:errcheck // never fails
	b.Log("Starting timer")
	start := b.now()
	result, err := b.CallNext(params)
	duration := b.now().Sub(start)
	b.Logf("Stopping timer: %s took %s", inner, duration)

	publish(b.bus, partybus.Event{
		Type:   EventTypeBenchmark,
		Source: b.Name(),
		Value: Benchmark{
			Brick:    inner,
			Duration: duration,
			Err:      err,
		},
	})
	return result, err
}
