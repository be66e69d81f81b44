package genai

import (
	"context"

	"golang.org/x/time/rate"
)

const defaultRequestsPerMinute = 30

// limited spaces out remote calls with a shared token bucket so a
// multi-call pipeline stays under the provider's request quota.
type limited struct {
	backend Client
	limiter *rate.Limiter
}

func rateLimited(backend Client, requestsPerMinute int) Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	return &limited{
		backend: backend,
		limiter: rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 1),
	}
}

func (l *limited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.backend.Generate(ctx, prompt)
}
