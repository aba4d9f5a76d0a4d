package bootstrap

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/blogcraftai/blogcraft-backend/internal/logging"
)

// Serve runs srv on ln until ctx is done, then shuts it down gracefully. It
// returns only after in-flight requests have drained (or drainTimeout has
// passed), so callers can close shared stores right after it returns.
// beforeShutdown hooks run first with the same deadline.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, drainTimeout time.Duration, beforeShutdown ...func(context.Context)) error {
	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logging.Log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()

		for _, hook := range beforeShutdown {
			hook(shutdownCtx)
		}
		drained <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-drained
}
