package model

import "fmt"

// Kind describes a taggable object kind and the tables backing it.
type Kind struct {
	Name     string
	Table    string
	TagTable string
}

var (
	KindArtifact   = Kind{Name: "artifact", Table: "artifacts", TagTable: "artifacts_tags"}
	KindFunction   = Kind{Name: "function", Table: "functions", TagTable: "functions_tags"}
	KindFeatureSet = Kind{Name: "feature-set", Table: "feature_sets", TagTable: "feature_sets_tags"}
)

// DefaultKinds returns the kinds the metastore schema ships with.
func DefaultKinds() []Kind {
	return []Kind{KindArtifact, KindFunction, KindFeatureSet}
}

// Kinds is an ordered registry of kinds, looked up by name.
type Kinds struct {
	ordered []Kind
	byName  map[string]Kind
}

// NewKinds builds a registry. Duplicate or empty names are rejected.
func NewKinds(kinds []Kind) (*Kinds, error) {
	k := &Kinds{byName: make(map[string]Kind, len(kinds))}
	for _, kind := range kinds {
		if kind.Name == "" || kind.Table == "" || kind.TagTable == "" {
			return nil, fmt.Errorf("kind %q: name and tables are required", kind.Name)
		}
		if _, dup := k.byName[kind.Name]; dup {
			return nil, fmt.Errorf("kind %q declared twice", kind.Name)
		}
		k.byName[kind.Name] = kind
		k.ordered = append(k.ordered, kind)
	}
	return k, nil
}

// Lookup returns the kind registered under name.
func (k *Kinds) Lookup(name string) (Kind, bool) {
	kind, ok := k.byName[name]
	return kind, ok
}

// All returns the registered kinds in declaration order.
func (k *Kinds) All() []Kind {
	out := make([]Kind, len(k.ordered))
	copy(out, k.ordered)
	return out
}

// Names returns the registered kind names in declaration order.
func (k *Kinds) Names() []string {
	names := make([]string, 0, len(k.ordered))
	for _, kind := range k.ordered {
		names = append(names, kind.Name)
	}
	return names
}

// SelectKinds returns the default kinds named in names, in the order given.
// An empty names selects every default kind.
func SelectKinds(names []string) ([]Kind, error) {
	if len(names) == 0 {
		return DefaultKinds(), nil
	}
	defaults, err := NewKinds(DefaultKinds())
	if err != nil {
		return nil, err
	}
	kinds := make([]Kind, 0, len(names))
	for _, name := range names {
		kind, ok := defaults.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q (known: %v)", name, defaults.Names())
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
