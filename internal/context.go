package internal

import (
	"context"
	"os"
	"sync"
)

type ctxKeyCorrelationId struct{}

func CtxWithCorrelationId(ctx context.Context, correlationId string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationId{}, correlationId)
}

func CorrelationIdFromCtx(ctx context.Context) string {
	item := ctx.Value(ctxKeyCorrelationId{})
	correlationId, ok := item.(string)
	if ok {
		return correlationId
	}
	return ""
}

// LaunchContext returns a context that's cancelled when a signal is received
// on osSignal or when the returned cancel is called
func LaunchContext(wg *sync.WaitGroup, osSignal chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer cancel()

		close(started)
		select {
		case <-ctx.Done():
		case <-osSignal:
		}
	}()
	<-started
	return ctx, cancel
}
