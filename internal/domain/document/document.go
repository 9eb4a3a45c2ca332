package document

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Solr field names shared by reports, changesets and hunks.
const (
	FieldID        = "id"
	FieldType      = "type"
	FieldParentBug = "parent_bug"
)

// Document types stored in the Bumper index.
const (
	TypeBug       = "BUG"
	TypeChangeset = "CHANGESET"
	TypeHunks     = "HUNKS"
)

// Document is a single decoded search-backend document.
// Field schema is owned by the backend; values keep their JSON types
// (string, json.Number, bool, []any, map[string]any). Numbers are never
// converted to float64, so 64-bit fields such as _version_ stay exact.
type Document map[string]any

// ID returns the document identifier, or "" if the document has none.
func (d Document) ID() string { return d.String(FieldID) }

// Type returns the document type discriminator (BUG, CHANGESET, HUNKS).
func (d Document) Type() string { return d.String(FieldType) }

// String returns a field rendered as text. Missing and null fields yield "".
// Multi-valued fields return their first value.
func (d Document) String(field string) string {
	v, ok := d[field]
	if !ok || v == nil {
		return ""
	}
	return stringify(v)
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		if len(t) == 0 {
			return ""
		}
		return stringify(t[0])
	default:
		return fmt.Sprint(t)
	}
}
