package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/bumper/internal/domain"
)

// MaxValuesPerSpec is the maximum number of values in a single facet.
const MaxValuesPerSpec = 32

// Lucene boolean keywords.
const (
	opAnd = "AND"
	opOr  = "OR"
)

// Spec is a facet filter: an attribute prefix plus the values it may take.
type Spec struct {
	attribute string
	values    []string
}

// NewSpec validates and creates a facet Spec.
// The attribute is used verbatim as the term prefix (e.g. "file:*." or "dataset:").
func NewSpec(attribute string, values []string) (Spec, error) {
	if attribute == "" {
		return Spec{}, fmt.Errorf("%w: filter attribute is required", domain.ErrMalformedParams)
	}
	if strings.ContainsAny(attribute, " \t\r\n()") {
		return Spec{}, fmt.Errorf("%w: invalid filter attribute %q", domain.ErrMalformedParams, attribute)
	}
	if len(values) > MaxValuesPerSpec {
		return Spec{}, fmt.Errorf("%w: too many values for %q (max %d)",
			domain.ErrMalformedParams, attribute, MaxValuesPerSpec)
	}
	return Spec{attribute: attribute, values: append([]string(nil), values...)}, nil
}

// Attribute returns the term prefix.
func (s Spec) Attribute() string { return s.attribute }

// Values returns the facet values in clause order.
func (s Spec) Values() []string { return s.values }

// IsEmpty reports whether the spec filters nothing.
func (s Spec) IsEmpty() bool { return len(s.values) == 0 }

// Clause renders the spec with BuildClause.
func (s Spec) Clause() string { return BuildClause(s.values, s.attribute) }

// BuildClause returns "AND (attr+v0 OR attr+v1 ...)" or "" for no values.
// Every value becomes a disjunct, in order. Values are not escaped.
func BuildClause(values []string, attribute string) string {
	if len(values) == 0 {
		return ""
	}
	terms := make([]string, len(values))
	for i, v := range values {
		terms[i] = attribute + v
	}
	return opAnd + " (" + strings.Join(terms, " "+opOr+" ") + ")"
}
