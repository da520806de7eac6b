package domain

import "errors"

// Error kinds shared across the pipeline. Callers classify with errors.Is
// and wrap with fmt.Errorf("%w: ...") to attach detail.
var (
	// ErrValidation marks bad input the user must correct before retrying.
	ErrValidation = errors.New("validation failed")
	// ErrExtraction marks a PDF the parser could not read. Terminal per upload.
	ErrExtraction = errors.New("text extraction failed")
	// ErrEmptyExtraction marks a readable PDF with no extractable text layer.
	// An empty extraction never creates or mutates a corpus.
	ErrEmptyExtraction = errors.New("no extractable text")
	// ErrQuotaExceeded marks an append that would push the corpus past its
	// configured size limit. The prior corpus state is left intact.
	ErrQuotaExceeded = errors.New("corpus quota exceeded")
	// ErrNotFound marks a read for an owner with no corpus.
	ErrNotFound = errors.New("corpus not found")
	// ErrNoContent is the query-side face of ErrNotFound.
	ErrNoContent = errors.New("nothing uploaded yet")
	// ErrUpstream marks a failed call to the answering service. Transient,
	// but never retried here: retries belong to the caller.
	ErrUpstream = errors.New("answering service unavailable")
)
