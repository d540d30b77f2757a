package llm

import (
	"context"
	"log"
	"time"
)

// LoggingProvider is a decorator that logs one line per LLM request.
type LoggingProvider struct {
	inner  Provider
	logger *log.Logger
}

// WithLogging wraps p; a nil logger means the standard logger.
func WithLogging(p Provider, logger *log.Logger) Provider {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingProvider{inner: p, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start).Milliseconds()

	purpose := PurposeFrom(ctx)
	if err != nil {
		l.logger.Printf("llm %s purpose=%s latency=%dms error=%v", l.inner.ModelID(), purpose, latency, err)
		return nil, err
	}
	l.logger.Printf("llm %s purpose=%s latency=%dms tokens=%d/%d stop=%s",
		resp.Model, purpose, latency, resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.StopReason)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
