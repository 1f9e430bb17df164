// Package analysis is the boundary between the external LLM and the rest of
// the service.  Completions are untrusted text: they are decoded when they
// parse and replaced with a complete, conservative fallback when they do not,
// and the caller is always told which of the two it received.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Completer is the LLM call primitive: a system prompt and a user message
// in, completion text or an error out.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// DegradeReason explains why a fallback was used.
type DegradeReason string

const (
	ReasonNone              DegradeReason = ""
	ReasonCallFailed        DegradeReason = "call_failed"
	ReasonMalformedResponse DegradeReason = "malformed_response"
)

// Result is either a genuine decoded value or a degraded fallback.  Degraded
// results always carry a fully populated Value.  Raw holds the completion
// text whenever the call itself succeeded.
type Result[T any] struct {
	Value    T
	Degraded bool
	Reason   DegradeReason
	Raw      string
}

// Fallback produces the substitute payload for a failure reason.
type Fallback[T any] func(DegradeReason) T

// Static returns a Fallback that ignores the reason.
func Static[T any](v T) Fallback[T] {
	return func(DegradeReason) T { return v }
}

// Prompt is one LLM request.
type Prompt struct {
	Name   string // used in logs only
	System string
	User   string
}

// Analyzer wraps a Completer with the per-call timeout and logging shared by
// every AI-backed operation.
type Analyzer struct {
	llm     Completer
	log     *zap.Logger
	timeout time.Duration
}

// NewAnalyzer returns an Analyzer.  A zero timeout leaves the deadline to ctx.
func NewAnalyzer(llm Completer, log *zap.Logger, timeout time.Duration) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{llm: llm, log: log, timeout: timeout}
}

func (a *Analyzer) complete(ctx context.Context, p Prompt) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	return a.llm.Complete(ctx, p.System, p.User)
}

// Normalize decodes raw into a fresh T.  Decoded values are returned as-is,
// without checking that the expected keys exist.  A field of an unexpected
// type is left at its zero value and the rest of the document is kept.
// Text that is not JSON, a JSON null, or a top-level value of the wrong
// kind yields fallback unchanged.
func Normalize[T any](raw string, fallback T) Result[T] {
	body := bytes.TrimSpace([]byte(stripCodeFence(raw)))
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return Result[T]{Value: fallback, Degraded: true, Reason: ReasonMalformedResponse}
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil && !nestedTypeMismatch(err) {
		return Result[T]{Value: fallback, Degraded: true, Reason: ReasonMalformedResponse}
	}
	return Result[T]{Value: v}
}

// nestedTypeMismatch reports whether err only describes a field whose JSON
// type differs from the Go field.  json.Unmarshal still fills every other
// field in that case.
func nestedTypeMismatch(err error) bool {
	var te *json.UnmarshalTypeError
	return errors.As(err, &te) && te.Field != ""
}

// TryExternal calls the LLM and normalizes its answer.  A call error and a
// malformed completion both end in the fallback; Reason tells them apart.
func TryExternal[T any](ctx context.Context, a *Analyzer, p Prompt, fb Fallback[T]) Result[T] {
	raw, err := a.complete(ctx, p)
	if err != nil {
		a.log.Warn("llm call failed, using fallback", zap.String("prompt", p.Name), zap.Error(err))
		return Result[T]{Value: fb(ReasonCallFailed), Degraded: true, Reason: ReasonCallFailed}
	}
	res := Normalize(raw, fb(ReasonMalformedResponse))
	res.Raw = raw
	if res.Degraded {
		a.log.Warn("llm returned malformed json, using fallback",
			zap.String("prompt", p.Name), zap.Int("response_bytes", len(raw)))
	}
	return res
}

// TryExternalText is TryExternal for free-text completions.  Only a call
// error or a blank completion degrades.
func TryExternalText(ctx context.Context, a *Analyzer, p Prompt, fallback string) Result[string] {
	raw, err := a.complete(ctx, p)
	if err != nil {
		a.log.Warn("llm call failed, using fallback", zap.String("prompt", p.Name), zap.Error(err))
		return Result[string]{Value: fallback, Degraded: true, Reason: ReasonCallFailed}
	}
	if strings.TrimSpace(raw) == "" {
		a.log.Warn("llm returned empty completion, using fallback", zap.String("prompt", p.Name))
		return Result[string]{Value: fallback, Degraded: true, Reason: ReasonMalformedResponse}
	}
	return Result[string]{Value: raw}
}

// stripCodeFence removes one ```json ... ``` wrapper around the whole text.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") || !strings.HasSuffix(t, "```") || len(t) < 6 {
		return s
	}
	t = strings.TrimSuffix(strings.TrimPrefix(t, "```"), "```")
	// drop the info string (e.g. "json") on the opening line
	if nl := strings.IndexByte(t, '\n'); nl >= 0 && !strings.ContainsAny(t[:nl], "{[\"") {
		t = t[nl+1:]
	}
	return t
}
