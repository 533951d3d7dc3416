// Package extractor provides an embedded Go client for the sentence
// extractor: deduplicated sentence storage with embedding vectors,
// submission counters and calendar reports, backed by a local document
// store and search index.
//
//	client, _ := extractor.New(
//	    extractor.WithDataDir("data"),
//	    extractor.WithOpenAI(os.Getenv("OPENAI_API_KEY"), "text-embedding-3-small", 1536),
//	)
//	defer client.Close()
//
//	rec, created, _ := client.Submit(ctx, "hello world")
//	vectors, _ := client.Vectors(ctx, []string{"hello world", "fresh text"})
//	report, _ := client.Report(ctx, "2026-01-01", "2026-01-31", "day")
package extractor
