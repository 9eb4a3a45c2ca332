// Package partition splits a fix lookup result into its changeset and hunks.
package partition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/bumper/internal/domain"
	"github.com/kailas-cloud/bumper/internal/domain/document"
)

// Split parses the declared count (the backend numFound) and calls SplitCount.
func Split(docs []document.Document, declared string) (document.Document, []document.Document, error) {
	n, err := ParseCount(declared)
	if err != nil {
		return nil, nil, err
	}
	return SplitCount(docs, n)
}

// SplitCount returns docs[0] as the changeset and docs[1:n] as the hunks.
// docs must be sorted with the changeset first. n must be between 1 and len(docs);
// a larger n means the backend returned fewer documents than it reported.
func SplitCount(docs []document.Document, n int) (document.Document, []document.Document, error) {
	if len(docs) == 0 {
		return nil, nil, fmt.Errorf("%w: no documents", domain.ErrInvalidResult)
	}
	if n < 0 {
		return nil, nil, fmt.Errorf("%w: negative declared count %d", domain.ErrInvalidResult, n)
	}
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: declared count 0 with %d documents", domain.ErrInvalidResult, len(docs))
	}
	if n > len(docs) {
		return nil, nil, fmt.Errorf("%w: declared count %d exceeds %d returned documents",
			domain.ErrInvalidResult, n, len(docs))
	}

	hunks := make([]document.Document, n-1)
	copy(hunks, docs[1:n])
	return docs[0], hunks, nil
}

// ParseCount parses a numFound value rendered as text.
func ParseCount(declared string) (int, error) {
	s := strings.TrimSpace(declared)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: declared count %q is not an integer", domain.ErrInvalidResult, declared)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative declared count %d", domain.ErrInvalidResult, n)
	}
	return n, nil
}
