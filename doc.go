// Package bumper provides a Go client for the Bumper bug-report search backend.
//
// Bumper indexes bug reports together with the changesets that fixed them.
// A search returns reports; the fixes of a report are a changeset plus its
// ordered hunks and are fetched on demand.
//
// # Plain API
//
//	client, _ := bumper.New(ctx)
//	reports, _ := client.Search(ctx, "NullPointerException", &bumper.SearchOptions{
//	    Languages: []string{"java"},
//	    Rows:      20,
//	})
//	_ = client.FetchFixes(ctx, reports)
//
// # Fluent API
//
//	reports, _ := client.Reports().
//	    Query("NullPointerException").
//	    Languages("java", "scala").
//	    Datasets("Apache").
//	    Page(0, 20).
//	    WithFixes().
//	    Do(ctx)
//
// Responses can be cached in Redis or Valkey with WithCache.
package bumper
