package tenk

import (
	"errors"
	"fmt"
)

// ErrSourceUnavailable reports that the upstream document conversion failed
// or the input document could not be produced. Fatal to an ingestion run;
// nothing was written before this point.
var ErrSourceUnavailable = errors.New("source document unavailable")

// PartialIngestError reports that one or more chunk writes failed mid-run.
// Previously written chunks are not rolled back; the discrepancy between
// Expected and Written is the caller's signal to inspect or re-run.
type PartialIngestError struct {
	Expected int
	Written  int
	Err      error // last write failure
}

func (e *PartialIngestError) Error() string {
	return fmt.Sprintf("partial ingestion: wrote %d of %d chunks: %v", e.Written, e.Expected, e.Err)
}

func (e *PartialIngestError) Unwrap() error { return e.Err }

// RerankError reports that the reranking backend failed. Candidates holds
// the surviving stage-1 candidates in unranked order so the caller can still
// produce a degraded response.
type RerankError struct {
	Candidates []RetrievalResult
	Err        error
}

func (e *RerankError) Error() string {
	return fmt.Sprintf("rerank unavailable (%d unranked candidates): %v", len(e.Candidates), e.Err)
}

func (e *RerankError) Unwrap() error { return e.Err }

// ErrService reports a failure from a remote collaborator (embedding,
// conversion, expansion, rerank). Timeouts surface here wrapped from the
// underlying context error; the core never retries internally.
type ErrService struct {
	Service string
	Message string
}

func (e *ErrService) Error() string {
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

// ErrHTTP reports a non-2xx response from a remote collaborator.
type ErrHTTP struct {
	Status int
	Body   string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Body)
}
