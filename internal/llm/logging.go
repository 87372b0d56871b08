package llm

import (
	"context"
	"log"
	"time"
)

// LoggingProvider logs one line per generator call.
type LoggingProvider struct {
	inner Provider
}

func WithLogging(p Provider) Provider {
	return &LoggingProvider{inner: p}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latency := time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("ERROR: llm purpose=%s model=%s latency_ms=%d: %v", purpose, l.inner.ModelID(), latency, err)
		return nil, err
	}
	log.Printf("INFO: llm purpose=%s model=%s latency_ms=%d tokens_in=%d tokens_out=%d stop=%s",
		purpose, resp.Model, latency, resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.StopReason)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
