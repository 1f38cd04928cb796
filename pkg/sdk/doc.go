// Package swapdex provides a Go client for alias-addressed search indexes
// on an Elasticsearch-compatible engine.
//
// Readers address data through a stable alias. Writers rebuild the alias
// into a brand new physical index and cut over atomically, so queries never
// see a half-built index.
//
// # Hot swap
//
//	client, _ := swapdex.NewDefault(ctx, swapdex.WithElasticsearch("http://localhost:9200"))
//	defer client.Close()
//
//	res, _ := client.HotSwap(ctx, "users", "user", [][]swapdex.Record{
//	    {{"id": "1", "email": "a@example.com"}},
//	    {{"id": "2", "email": "b@example.com"}},
//	}, swapdex.WithFields("email"), swapdex.WithMapping("email", "keyword", false))
//
// # Search
//
//	q := swapdex.NewQuery().
//	    Must("terms", swapdex.Match("email", "a@example.com")).
//	    Size(10).
//	    Build()
//	hits, _ := client.Search(ctx, "users", q)
//
// # Typed hits
//
// New accepts a Decoder that turns each raw hit into a caller-defined type:
//
//	client, _ := swapdex.New(ctx, func(raw json.RawMessage) (User, error) { ... }, opts...)
package swapdex
