package catalog

import "fmt"

// Resolve flattens inheritance into the full binding set available to
// expressions compiled for kind. Bindings inherited from later-listed kinds
// override earlier-listed ones on name collision, and the kind's own
// bindings override everything inherited. The result is a pure function of
// (catalog, kind) and is cached; callers must treat the returned Set as
// read-only.
func (c *Catalog) Resolve(kind Kind) (Set, error) {
	if set, ok := c.cache.Get(kind); ok {
		return set, nil
	}

	set, err := c.resolve(kind)
	if err != nil {
		return nil, err
	}

	c.cache.Add(kind, set)
	return set, nil
}

// resolve performs the actual flattening. The catalog builder has already
// rejected cyclic inheritance, so plain recursion terminates.
func (c *Catalog) resolve(kind Kind) (Set, error) {
	entry, ok := c.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("resolve bindings: unknown event kind %q", kind)
	}

	set := make(Set)
	for _, parent := range entry.inherits {
		parentSet, err := c.Resolve(parent)
		if err != nil {
			return nil, err
		}
		for name, binding := range parentSet {
			set[name] = binding
		}
	}
	for name, binding := range entry.bindings {
		set[name] = binding
	}
	return set, nil
}
