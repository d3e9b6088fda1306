package catalog

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vk/beatgridgo/internal/depgraph"
)

// Kind identifies the shape of an incoming event and therefore which
// binding set applies to expressions evaluated for it.
type Kind string

// The concrete kinds produced by the DJ-link feed, plus the composite
// pseudo-kind pairing a beat with the inferred track position.
const (
	KindDeviceUpdate Kind = "device-update"
	KindBeat         Kind = "beat"
	KindMixerStatus  Kind = "mixer-status"
	KindCDJStatus    Kind = "cdj-status"
	KindBeatPosition Kind = "beat-position"
)

// Binding is one named convenience value available to user expressions.
type Binding struct {
	// Name is the identifier the user references.
	Name string

	// Source is the generator expression source text, in HCL, evaluated
	// against `event` and any earlier-bound names.
	Source string

	// Generator is the parsed form of Source, produced when the catalog is
	// built.
	Generator hclsyntax.Expression

	// Doc is a short human-readable description, surfaced by editors.
	Doc string

	// Requires optionally names another binding in the same resolved set
	// that must be bound earlier in the prelude.
	Requires string
}

// Spec is the declarative form of a binding handed to the catalog builder,
// before its generator has been parsed.
type Spec struct {
	Name     string
	Source   string
	Doc      string
	Requires string
}

// Set is the resolved, inheritance-flattened binding set for one kind.
type Set map[string]Binding

// kindEntry is one kind's own contribution to the catalog.
type kindEntry struct {
	inherits []Kind
	bindings map[string]Binding
}

// resolveCacheSize bounds the resolver cache. The kind space is tiny, but
// callers may register their own kinds; the bound keeps that open-ended.
const resolveCacheSize = 64

// Catalog is the immutable registry of kinds and their bindings. Build one
// with a Builder; Resolve results are cached internally and safe for
// concurrent use.
type Catalog struct {
	kinds map[Kind]*kindEntry
	order []Kind
	cache *lru.Cache[Kind, Set]
}

// Builder accumulates kind declarations and validates them into a Catalog.
type Builder struct {
	kinds map[Kind]*kindEntry
	order []Kind
	errs  []error
}

// NewBuilder creates an empty catalog builder.
func NewBuilder() *Builder {
	return &Builder{kinds: make(map[Kind]*kindEntry)}
}

// AddKind declares a kind with its inherited kinds and its own bindings.
// Generator sources are parsed immediately; any parse failure is recorded
// and reported by Build. Declaring the same kind twice is a construction
// error.
func (b *Builder) AddKind(kind Kind, inherits []Kind, specs []Spec) *Builder {
	if _, ok := b.kinds[kind]; ok {
		b.errs = append(b.errs, fmt.Errorf("kind %q declared twice", kind))
		return b
	}

	entry := &kindEntry{
		inherits: append([]Kind(nil), inherits...),
		bindings: make(map[string]Binding, len(specs)),
	}
	for _, spec := range specs {
		if !hclsyntax.ValidIdentifier(spec.Name) {
			b.errs = append(b.errs, fmt.Errorf("kind %q: binding name %q is not a valid identifier", kind, spec.Name))
			continue
		}
		if _, ok := entry.bindings[spec.Name]; ok {
			b.errs = append(b.errs, fmt.Errorf("kind %q: binding %q declared twice", kind, spec.Name))
			continue
		}

		filename := fmt.Sprintf("binding %s.%s", kind, spec.Name)
		gen, diags := hclsyntax.ParseExpression([]byte(spec.Source), filename, hcl.InitialPos)
		if diags.HasErrors() {
			b.errs = append(b.errs, fmt.Errorf("kind %q: binding %q generator: %w", kind, spec.Name, diags))
			continue
		}

		entry.bindings[spec.Name] = Binding{
			Name:      spec.Name,
			Source:    spec.Source,
			Generator: gen,
			Doc:       spec.Doc,
			Requires:  spec.Requires,
		}
	}

	b.kinds[kind] = entry
	b.order = append(b.order, kind)
	return b
}

// Build validates the accumulated declarations and returns the finished
// catalog. It fails fast on unknown or cyclic inheritance, on requires
// targets that do not exist in the owning kind's resolved set, and on
// cyclic requires chains. The catalog is expected to be well formed; a
// failure here is a programming error in whatever registered the kinds.
func (b *Builder) Build() (*Catalog, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("catalog construction: %w", b.errs[0])
	}

	// Inheritance must reference declared kinds and be acyclic.
	inheritGraph := depgraph.New()
	for _, kind := range b.order {
		inheritGraph.AddNode(string(kind))
	}
	for _, kind := range b.order {
		for _, parent := range b.kinds[kind].inherits {
			if _, ok := b.kinds[parent]; !ok {
				return nil, fmt.Errorf("catalog construction: kind %q inherits unknown kind %q", kind, parent)
			}
			if err := inheritGraph.AddEdge(string(parent), string(kind)); err != nil {
				return nil, fmt.Errorf("catalog construction: kind %q: %w", kind, err)
			}
		}
	}
	if err := inheritGraph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("catalog construction: inheritance %w", err)
	}

	cache, err := lru.New[Kind, Set](resolveCacheSize)
	if err != nil {
		return nil, fmt.Errorf("catalog construction: %w", err)
	}

	cat := &Catalog{
		kinds: b.kinds,
		order: append([]Kind(nil), b.order...),
		cache: cache,
	}

	// Requires targets are checked against each kind's *resolved* set, since
	// a binding may require one inherited from another kind.
	for _, kind := range cat.order {
		set, err := cat.Resolve(kind)
		if err != nil {
			return nil, err
		}
		if err := validateRequires(kind, set); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

// validateRequires checks that every requires target exists in the resolved
// set and that requires chains are acyclic.
func validateRequires(kind Kind, set Set) error {
	g := depgraph.New()
	for name := range set {
		g.AddNode(name)
	}
	for name, binding := range set {
		if binding.Requires == "" {
			continue
		}
		if _, ok := set[binding.Requires]; !ok {
			return fmt.Errorf("catalog construction: kind %q: binding %q requires unknown binding %q", kind, name, binding.Requires)
		}
		if err := g.AddEdge(binding.Requires, name); err != nil {
			return fmt.Errorf("catalog construction: kind %q: binding %q: %w", kind, name, err)
		}
	}
	if err := g.DetectCycles(); err != nil {
		return fmt.Errorf("catalog construction: kind %q: requires %w", kind, err)
	}
	return nil
}

// Kinds returns every registered kind in declaration order.
func (c *Catalog) Kinds() []Kind {
	return append([]Kind(nil), c.order...)
}

// HasKind reports whether kind is registered.
func (c *Catalog) HasKind(kind Kind) bool {
	_, ok := c.kinds[kind]
	return ok
}

// InheritsFrom reports whether kind transitively inherits ancestor. A kind
// does not inherit from itself.
func (c *Catalog) InheritsFrom(kind, ancestor Kind) bool {
	entry, ok := c.kinds[kind]
	if !ok {
		return false
	}
	for _, parent := range entry.inherits {
		if parent == ancestor || c.InheritsFrom(parent, ancestor) {
			return true
		}
	}
	return false
}

// Doc returns the documentation string for a binding in kind's resolved
// set, or "" when the kind or the binding is unknown.
func (c *Catalog) Doc(kind Kind, name string) string {
	set, err := c.Resolve(kind)
	if err != nil {
		return ""
	}
	return set[name].Doc
}
