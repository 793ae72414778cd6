// Package goroutine runs background work that must not take the process down.
package goroutine

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/Mordecai-Wambua/User-Auth/internal/shared/logger"
)

// Detached runs fn in a new goroutine with a context that survives the
// request that spawned it but is bounded by timeout. Panics are logged.
func Detached(parent context.Context, log logger.Interface, name string, timeout time.Duration, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), timeout)
	go func() {
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("goroutine panicked",
					"goroutine", name,
					"panic", fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				)
			}
		}()
		if err := fn(ctx); err != nil {
			log.Warnw("background task failed", "goroutine", name, "error", err)
		}
	}()
}
