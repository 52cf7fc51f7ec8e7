// Command tenk ingests an annual filing and answers questions against it
// from the terminal.
//
// Usage:
//
//	tenk -ingest filing.pdf
//	tenk -query "How did operating expenses change year over year?"
//	tenk -reset
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	tenk "github.com/nevindra/tenk"
	"github.com/nevindra/tenk/convert/llamacloud"
	"github.com/nevindra/tenk/convert/pdftext"
	"github.com/nevindra/tenk/ingest"
	"github.com/nevindra/tenk/internal/config"
	"github.com/nevindra/tenk/observer"
	"github.com/nevindra/tenk/provider/gemini"
	"github.com/nevindra/tenk/store/postgres"
	"github.com/nevindra/tenk/store/sqlite"
	"github.com/nevindra/tenk/tools/calculate"
	"github.com/nevindra/tenk/tools/chart"
	"github.com/nevindra/tenk/tools/search"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("TENK_CONFIG"), "path to TOML config file")
		ingestPath = flag.String("ingest", "", "PDF filing to ingest")
		query      = flag.String("query", "", "question to answer against the ingested filing")
		reset      = flag.Bool("reset", false, "delete all stored chunks before doing anything else")
		local      = flag.Bool("local", false, "use the local PDF converter instead of LlamaCloud")
	)
	flag.Parse()

	if *ingestPath == "" && *query == "" && !*reset {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	// 1. Load config
	cfg := config.Load(*configPath)

	// 2. Observability (optional)
	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		var shutdown func(context.Context) error
		var err error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			log.Fatalf("observer: %v", err)
		}
		defer shutdown(ctx) //nolint:errcheck
	}

	// 3. Create providers
	var embedding tenk.EmbeddingProvider = gemini.NewEmbedding(cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Dimensions)
	llm := gemini.New(cfg.Rerank.APIKey, cfg.Rerank.Model)
	var reranker tenk.Reranker = gemini.NewReranker(llm)
	expander := gemini.NewExpander(llm)
	if inst != nil {
		embedding = observer.WrapEmbedding(embedding, cfg.Embedding.Model, inst)
		reranker = observer.WrapReranker(reranker, inst)
	}

	// 4. Create store
	var store tenk.Store
	if cfg.Database.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.Database.PostgresURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		store = postgres.New(pool, postgres.WithEmbeddingDimension(cfg.Embedding.Dimensions))
	} else {
		store = sqlite.New(cfg.Database.Path, sqlite.WithLogger(slog.Default()))
	}
	defer store.Close() //nolint:errcheck
	if err := store.Init(ctx); err != nil {
		log.Fatalf("store init: %v", err)
	}

	// 5. Reset, ingest, query in that order
	if *reset {
		n, err := store.Reset(ctx)
		if err != nil {
			log.Fatalf("reset: %v", err)
		}
		fmt.Printf("deleted %d chunks\n", n)
	}

	if *ingestPath != "" {
		var converter tenk.Converter
		if *local {
			converter = pdftext.New()
		} else {
			converter = llamacloud.New(cfg.LlamaCloud.APIKey)
		}
		ing := ingest.NewIngestor(store, embedding, converter,
			ingest.WithWindow(cfg.Ingest.Window),
			ingest.WithBatchSize(cfg.Ingest.BatchSize),
		)

		raw, err := os.ReadFile(*ingestPath)
		if err != nil {
			log.Fatalf("read filing: %v", err)
		}
		result, err := ing.Ingest(ctx, raw)
		if err != nil {
			log.Fatalf("ingest: %v", err)
		}
		fmt.Printf("ingested %d sections, %d child chunks (%d total)\n",
			result.ParentCount, result.ChildCount, result.ChunkCount)
	}

	if *query != "" {
		var retriever tenk.Retriever = tenk.NewEngine(store, embedding, reranker,
			tenk.WithCandidateLimit(cfg.Retrieval.Candidates),
			tenk.WithTopK(cfg.Retrieval.TopK),
			tenk.WithQueryExpansion(expander, cfg.Retrieval.Expansions),
			tenk.WithDensityThresholds(cfg.Retrieval.DensityPipes, cfg.Retrieval.DensityMinChars),
		)
		if inst != nil {
			retriever = observer.WrapRetriever(retriever, inst)
		}

		registry := tenk.NewToolRegistry()
		for _, t := range []tenk.Tool{search.New(retriever), calculate.New(), chart.New()} {
			if err := registry.Add(t); err != nil {
				log.Fatalf("register tool: %v", err)
			}
		}

		args, _ := json.Marshal(map[string]string{"query": *query})
		result, err := registry.Execute(ctx, "search_10k", args)
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		if result.Error != "" {
			log.Fatalf("search: %s", result.Error)
		}
		fmt.Println(result.Content)
	}
}
