package llm

import (
	"errors"
	"fmt"
	"time"
)

// FailureKind classifies why a pipeline stage gave up.
type FailureKind string

const (
	KindUnreadableDocument   FailureKind = "unreadable_document"
	KindTransportError       FailureKind = "transport_error"
	KindRateLimited          FailureKind = "rate_limited"
	KindUpstreamError        FailureKind = "upstream_error"
	KindMalformedResponse    FailureKind = "malformed_response"
	KindRetryBudgetExhausted FailureKind = "retry_budget_exhausted"
	KindNoExtractableText    FailureKind = "no_extractable_text"
	KindNoRankableDocuments  FailureKind = "no_rankable_documents"
)

// Failure is the structured error every pipeline stage returns instead of
// panicking or hiding the cause in a string. Kind drives retry decisions and
// the endpoint's user-facing message; Detail is the human-readable part.
type Failure struct {
	Kind   FailureKind
	Detail string
	Err    error

	// RetryAfter is the server-hinted wait, set only for rate-limited failures.
	RetryAfter time.Duration
	// Terminal forces a normally-retryable kind to be treated as final,
	// e.g. a 400 for an oversized prompt that no retry can fix.
	Terminal bool
}

func NewFailure(kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func WrapFailure(kind FailureKind, err error, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Detail, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

func (f *Failure) Unwrap() error { return f.Err }

// Retryable reports whether a later attempt may succeed without caller
// intervention.
func (f *Failure) Retryable() bool {
	if f.Terminal {
		return false
	}
	switch f.Kind {
	case KindTransportError, KindRateLimited, KindUpstreamError:
		return true
	}
	return false
}

// AsFailure unwraps err into a *Failure if there is one in the chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
