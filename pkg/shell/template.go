package shell

import (
	"fmt"
	"regexp"
	"slices"
)

var varUsageRegex = regexp.MustCompile(`\$(?:\{([a-zA-Z][a-zA-Z0-9_]*)\}|([a-zA-Z][a-zA-Z0-9_]*))`)

// Template is a string referencing variables as $name or ${name}.
type Template string

func (t Template) UsedVariables() map[string]struct{} {
	variables := make(map[string]struct{})
	for _, matches := range varUsageRegex.FindAllStringSubmatch(string(t), -1) {
		if name := varName(matches); name != "" {
			variables[name] = struct{}{}
		}
	}
	return variables
}

// SortedVariables returns the used variables in lexical order.
func (t Template) SortedVariables() []string {
	var names []string
	for name := range t.UsedVariables() {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Expand replaces every variable with the value returned by lookup.
func (t Template) Expand(lookup func(name string) (string, bool)) (string, error) {
	var missing []string
	expanded := varUsageRegex.ReplaceAllStringFunc(string(t), func(match string) string {
		name := varName(varUsageRegex.FindStringSubmatch(match))
		value, ok := lookup(name)
		if !ok {
			if !slices.Contains(missing, name) {
				missing = append(missing, name)
			}
			return match
		}
		return value
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("undefined variables %v in %q", missing, string(t))
	}
	return expanded, nil
}

func varName(matches []string) string {
	if len(matches) != 3 {
		return ""
	}
	if matches[1] != "" {
		return matches[1]
	}
	return matches[2]
}
