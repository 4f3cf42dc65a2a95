package annotations

// Prefix is what a doc comment line starts with when it carries a marker.
const Prefix = "//" + Tool + "::"

// Tool is the namespace of every marker
const Tool = "delegen"

// KindImplementation marks a type for interface and delegate generation
const KindImplementation = "implementation"

// ParsedMarker is a validated marker
type ParsedMarker struct {
	Kind       string   // marker kind
	Exclude    []string // -Exclude values in order
	Unexported bool     // -Unexported given
	Raw        string   // original comment text
}
