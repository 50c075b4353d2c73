package blueprint

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/anchore/go-logger"
	"github.com/anchore/go-logger/adapter/discard"
	"github.com/coding-hui/common/labels"
	"github.com/heimdalr/dag"

	"github.com/vbehar/bricks/pkg/bricks"
)

// Blueprint is an ordered list of bricks: the first one is the outermost.
type Blueprint struct {
	Name   string
	Bricks []Brick

	logger logger.Logger
}

func New(name string, bricks ...Brick) *Blueprint {
	return &Blueprint{
		Name:   name,
		Bricks: bricks,
	}
}

func (b Blueprint) log() logger.Logger {
	if b.logger == nil {
		return discard.New()
	}
	return b.logger.Nested("blueprint", b.Name)
}

// Filter keeps the bricks matching selector. The kind and name of a brick can be used as labels.
func (b Blueprint) Filter(selector labels.Selector) Blueprint {
	b.log().WithFields("selector", selector.String()).Debug("Filtering blueprint")
	var filteredBricks []Brick
	for _, brick := range b.Bricks {
		brickLabels := labels.Set(maps.Clone(brick.Metadata.Labels))
		if brickLabels == nil {
			brickLabels = make(labels.Set)
		}
		brickLabels["kind"] = brick.Kind
		brickLabels["name"] = brick.Metadata.Name
		if selector.Matches(brickLabels) {
			b.log().WithFields("name", brick.Metadata.Name, "kind", brick.Kind).
				Trace("Brick matches selector")
			filteredBricks = append(filteredBricks, brick)
		}
	}
	if len(filteredBricks) != len(b.Bricks) {
		b.log().WithFields("kept", len(filteredBricks), "discarded", len(b.Bricks)-len(filteredBricks)).
			Info("Filtered blueprint")
	}
	return Blueprint{
		Name:   b.Name,
		Bricks: filteredBricks,
		logger: b.logger,
	}
}

// WithKinds returns a copy of the blueprint where every brick also
// requires the keys its kind derives from the spec.
func (b Blueprint) WithKinds(reg *Registry) Blueprint {
	completed := make([]Brick, 0, len(b.Bricks))
	for _, brick := range b.Bricks {
		brick.Requires = reg.Requires(brick)
		completed = append(completed, brick)
	}
	return Blueprint{
		Name:   b.Name,
		Bricks: completed,
		logger: b.logger,
	}
}

// Graph links every brick to the earlier bricks providing the keys it requires.
// initialKeys are the keys present in the params before the first brick runs.
func (b Blueprint) Graph(initialKeys []string) (*dag.DAG, error) {
	var (
		keysDAG       = dag.NewDAG()
		earlier       = make(map[string]string)
		firstProvider = make(map[string]string)
		errs          error
	)
	for _, brick := range b.Bricks {
		for _, key := range brick.Provides {
			if _, ok := firstProvider[key]; !ok {
				firstProvider[key] = brick.Metadata.Name
			}
		}
	}

	for i, brick := range b.Bricks {
		name := brick.Metadata.Name
		err := keysDAG.AddVertexByID(name, vertex{Index: i, Name: name})
		if err != nil {
			if errors.As(err, &dag.IDDuplicateError{}) {
				errs = errors.Join(errs, fmt.Errorf("brick %q is declared more than once", name))
				continue
			}
			return nil, fmt.Errorf("failed to add brick %q to DAG: %w", name, err)
		}

		for _, key := range brick.Requires {
			if provider, ok := earlier[key]; ok {
				err = keysDAG.AddEdge(provider, name)
				if err != nil && !errors.As(err, &dag.EdgeDuplicateError{}) {
					return nil, fmt.Errorf("failed to add edge for key %q from %q to %q: %w", key, provider, name, err)
				}
				continue
			}
			if slices.Contains(initialKeys, key) {
				continue
			}
			if provider, ok := firstProvider[key]; ok && provider != name {
				errs = errors.Join(errs, fmt.Errorf("key %q required by %q is only provided later, by %q", key, name, provider))
				continue
			}
			errs = errors.Join(errs, fmt.Errorf("key %q required by %q is not provided by any earlier brick", key, name))
		}

		for _, key := range brick.Provides {
			if _, ok := earlier[key]; !ok {
				earlier[key] = name
			}
		}
	}

	if errs != nil {
		return nil, errs
	}
	return keysDAG, nil
}

// vertex is stored in the DAG, it must stay hashable.
type vertex struct {
	Index int
	Name  string
}

// Validate checks that every required key is provided before being used.
func (b Blueprint) Validate(initialKeys []string) error {
	_, err := b.Graph(initialKeys)
	if err != nil {
		return fmt.Errorf("invalid blueprint %q: %w", b.Name, err)
	}
	return nil
}

// Dependencies returns the names of the bricks the named brick transitively depends on, sorted.
func (b Blueprint) Dependencies(name string, initialKeys []string) ([]string, error) {
	keysDAG, err := b.Graph(initialKeys)
	if err != nil {
		return nil, err
	}
	ancestors, err := keysDAG.GetAncestors(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get dependencies of %q: %w", name, err)
	}
	return slices.Sorted(maps.Keys(ancestors)), nil
}

// Pipeline resolves every brick against the registry.
func (b Blueprint) Pipeline(reg *Registry, deps Deps) (*bricks.Pipeline, error) {
	factories := make([]bricks.Factory, 0, len(b.Bricks))
	for i, brick := range b.Bricks {
		factory, err := reg.Factory(brick, deps)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve brick %d (%s): %w", i, brick.Metadata.Name, err)
		}
		factories = append(factories, factory)
	}
	b.log().WithFields("bricks", len(factories)).Debug("Resolved pipeline")
	return bricks.New(b.Name, factories...), nil
}
