package bumper

import "context"

// SearchBuilder is a fluent builder for report searches.
type SearchBuilder struct {
	client *Client
	query  string
	opts   SearchOptions
}

// Reports starts a fluent report search.
func (c *Client) Reports() *SearchBuilder {
	return &SearchBuilder{client: c}
}

// Query sets the free-text query.
func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.query = q
	return b
}

// Languages restricts hits to changes touching files with these extensions.
func (b *SearchBuilder) Languages(langs ...string) *SearchBuilder {
	b.opts.Languages = append(b.opts.Languages, langs...)
	return b
}

// Datasets restricts hits to these datasets.
func (b *SearchBuilder) Datasets(datasets ...string) *SearchBuilder {
	b.opts.Datasets = append(b.opts.Datasets, datasets...)
	return b
}

// Page sets the pagination window. rows=0 means the default window.
func (b *SearchBuilder) Page(start, rows int) *SearchBuilder {
	b.opts.Start = start
	b.opts.Rows = rows
	return b
}

// Advanced sends the query verbatim as a backend expression. Facets are ignored.
func (b *SearchBuilder) Advanced() *SearchBuilder {
	b.opts.Advanced = true
	return b
}

// WithFixes fetches the fixes of every hit.
func (b *SearchBuilder) WithFixes() *SearchBuilder {
	b.opts.WithFixes = true
	return b
}

// Do executes the search.
func (b *SearchBuilder) Do(ctx context.Context) ([]Report, error) {
	opts := b.opts
	return b.client.Search(ctx, b.query, &opts)
}
