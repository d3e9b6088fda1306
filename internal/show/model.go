package show

// Document is the decoded form of one or more show files merged together.
type Document struct {
	Shared   []*SharedBlock  `hcl:"shared,block"`
	Triggers []*TriggerBlock `hcl:"trigger,block"`
}

// SharedBlock carries one batch of shared definitions. The definitions
// attribute holds raw source text (typically a heredoc) handed verbatim to
// the shared-definitions loader.
type SharedBlock struct {
	Name        string `hcl:"name,label"`
	Definitions string `hcl:"definitions"`
}

// TriggerBlock declares one trigger and its expression snippets. Every
// expression attribute is raw snippet text; empty or omitted attributes
// leave that slot empty.
type TriggerBlock struct {
	Name string `hcl:"name,label"`

	// On names the event kind this trigger evaluates on, e.g. "beat".
	On string `hcl:"on"`

	// Comment is a free-form description shown in status output.
	Comment string `hcl:"comment,optional"`

	// Enabled decides whether the trigger is active for an event. An empty
	// snippet means always enabled.
	Enabled string `hcl:"enabled,optional"`

	// Activation runs when Enabled goes from false to true.
	Activation string `hcl:"activation,optional"`

	// Deactivation runs when Enabled goes from true to false.
	Deactivation string `hcl:"deactivation,optional"`

	// TrackedUpdate runs for every matching event while the trigger is
	// active.
	TrackedUpdate string `hcl:"tracked_update,optional"`
}
