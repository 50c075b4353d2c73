package blueprint

// Brick is the declaration of a single pipeline step, as read from a blueprint file.
type Brick struct {
	Kind     string         `json:"kind"`
	Metadata BrickMetadata  `json:"metadata"`
	Spec     map[string]any `json:"spec"`

	// Requires lists the params keys the brick reads.
	Requires []string `json:"requires"`
	// Provides lists the params keys the brick writes.
	Provides []string `json:"provides"`
}

func (b Brick) IsValid() bool {
	return b.Kind != "" && b.Metadata.Name != ""
}

type BrickMetadata struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels"`
}
