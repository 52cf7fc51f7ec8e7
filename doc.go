// Package tenk is a retrieval engine for long structured financial filings.
//
// It ingests a filing as a two-tier chunk hierarchy of section-level parent
// chunks subdivided into fixed-width child windows, and answers queries with
// a two-stage process: high-recall vector search over child windows followed
// by precision reranking of the resolved parent sections.
//
// # Quick Start
//
//	embedding := gemini.NewEmbedding(apiKey, "text-embedding-004", 768)
//	store := sqlite.New("tenk.db")
//	_ = store.Init(ctx)
//
//	ing := ingest.NewIngestor(store, embedding, pdftext.New())
//	result, err := ing.Ingest(ctx, filingBytes)
//
//	engine := tenk.NewEngine(store, embedding, gemini.NewReranker(llm))
//	hits, err := engine.Retrieve(ctx, "cash and long-term debt in 2025")
//
// # Core Interfaces
//
// The root package defines the contracts that all components implement:
//
//   - [Store]: durable chunk persistence with vector similarity search
//   - [EmbeddingProvider]: text-to-vector embedding
//   - [Converter]: source document to normalized markdown conversion
//   - [Reranker]: pairwise query/passage relevance scoring
//   - [QueryExpander]: paraphrase generation for candidate recall
//   - [Retriever]: the full retrieve contract implemented by [Engine]
//   - [Tool]: typed invocation contract for the external answering agent
package tenk
