package tenk

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPartialIngestError(t *testing.T) {
	cause := errors.New("disk full")
	err := &PartialIngestError{Expected: 10, Written: 7, Err: cause}

	if !strings.Contains(err.Error(), "7 of 10") {
		t.Errorf("Error() = %q, want count discrepancy", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var pie *PartialIngestError
	wrapped := fmt.Errorf("ingest run: %w", err)
	if !errors.As(wrapped, &pie) {
		t.Fatal("errors.As should unwrap *PartialIngestError")
	}
	if pie.Written != 7 {
		t.Errorf("Written = %d, want 7", pie.Written)
	}
}

func TestRerankError(t *testing.T) {
	cause := errors.New("429 too many requests")
	err := &RerankError{
		Candidates: []RetrievalResult{{Chunk: Chunk{ID: "p1"}}},
		Err:        cause,
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "1 unranked") {
		t.Errorf("Error() = %q, want candidate count", err.Error())
	}
}

func TestErrSourceUnavailableWrapping(t *testing.T) {
	err := fmt.Errorf("%w: upstream timeout", ErrSourceUnavailable)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Error("wrapped sentinel not matched")
	}
}
