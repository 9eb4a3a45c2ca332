package mode

// Mode selects the query template.
type Mode string

// Search mode constants.
const (
	// Standard wraps the text in the fix-join and bug-report clauses and applies facets.
	Standard Mode = "standard"
	// Advanced sends the text as a raw Lucene query.
	Advanced Mode = "advanced"
)

// FromAdvanced maps the advanced flag to a Mode.
func FromAdvanced(advanced bool) Mode {
	if advanced {
		return Advanced
	}
	return Standard
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Standard || m == Advanced
}

// IsAdvanced reports whether the raw query template is used.
func (m Mode) IsAdvanced() bool { return m == Advanced }
