package blueprint

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/anchore/go-logger"
	"github.com/go-viper/mapstructure/v2"
	"github.com/wagoodman/go-partybus"

	"github.com/vbehar/bricks/pkg/bricks"
)

var (
	ErrUnknownKind = errors.New("unknown brick kind")
	ErrInvalidSpec = errors.New("invalid brick spec")
)

// Deps are handed to every constructor.
type Deps struct {
	Logger logger.Logger
	Bus    *partybus.Bus
	Stdout io.Writer
	Stderr io.Writer
}

// Constructor turns the spec of a declared brick into a factory.
type Constructor func(spec map[string]any, deps Deps) (bricks.Factory, error)

type Kind struct {
	Name        string
	Version     string
	Description string
	New         Constructor
	// Requires optionally returns the params keys a spec reads,
	// on top of the ones declared by the brick.
	Requires func(spec map[string]any) []string
}

// Registry maps kind names to constructors. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Kind
}

func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Kind)}
}

// Register adds a kind. Every kind has to declare a version.
func (r *Registry) Register(kind Kind) error {
	if kind.Name == "" {
		return fmt.Errorf("kind name is required")
	}
	if kind.Version == "" {
		return fmt.Errorf("kind %q: %w", kind.Name, bricks.ErrMissingVersion)
	}
	if kind.New == nil {
		return fmt.Errorf("kind %q: constructor is required", kind.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[kind.Name]; ok {
		return fmt.Errorf("kind %q is already registered", kind.Name)
	}
	r.kinds[kind.Name] = kind
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(kinds ...Kind) *Registry {
	for _, kind := range kinds {
		if err := r.Register(kind); err != nil {
			panic(fmt.Sprintf("blueprint: %v", err))
		}
	}
	return r
}

func (r *Registry) Get(name string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.kinds[name]
	return kind, ok
}

// Kinds returns every registered kind, sorted by name.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.kinds))
	for _, kind := range r.kinds {
		kinds = append(kinds, kind)
	}
	slices.SortFunc(kinds, func(a, b Kind) int {
		return strings.Compare(a.Name, b.Name)
	})
	return kinds
}

// Factory resolves a declared brick.
func (r *Registry) Factory(brick Brick, deps Deps) (bricks.Factory, error) {
	if !brick.IsValid() {
		return nil, fmt.Errorf("%w: kind and name are required", ErrInvalidSpec)
	}
	kind, ok := r.Get(brick.Kind)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, brick.Kind)
	}
	factory, err := kind.New(brick.Spec, deps)
	if err != nil {
		return nil, fmt.Errorf("%w for kind %q: %w", ErrInvalidSpec, brick.Kind, err)
	}
	return factory, nil
}

// Requires returns the keys declared by the brick, plus the ones its kind derives from the spec.
func (r *Registry) Requires(brick Brick) []string {
	requires := slices.Clone(brick.Requires)
	kind, ok := r.Get(brick.Kind)
	if !ok || kind.Requires == nil {
		return requires
	}
	for _, key := range kind.Requires(brick.Spec) {
		if !slices.Contains(requires, key) {
			requires = append(requires, key)
		}
	}
	return requires
}

// DecodeSpec decodes a raw spec into out, rejecting unknown fields.
func DecodeSpec(spec map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err = decoder.Decode(spec); err != nil {
		return fmt.Errorf("failed to decode spec: %w", err)
	}
	return nil
}
