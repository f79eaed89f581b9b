// Package paperdex provides an embedded Go client for the paperdex
// academic paper question-answering engine, backed by Redis with
// vector search and an OpenAI-compatible embedding/LLM endpoint.
//
// The client wires the full pipeline in-process: GROBID extraction,
// section-aware chunking, embedding, vector storage, and answer
// synthesis.
//
//	client, _ := paperdex.New(ctx,
//	    paperdex.WithRedis("localhost:6379", ""),
//	    paperdex.WithGrobid("http://localhost:8070"),
//	    paperdex.WithEmbedding(apiKey, baseURL, "BAAI/bge-small-en-v1.5", 384),
//	    paperdex.WithLLM(apiKey, baseURL, "gpt-4o-mini"),
//	)
//	defer client.Close()
//
//	f, _ := os.Open("attention.pdf")
//	up, _ := client.UploadPDF(ctx, f, "attention.pdf")
//
//	answer, _ := client.Ask(ctx, "How does multi-head attention work?", paperdex.QueryOptions{})
//	fmt.Println(answer.Text)
package paperdex
