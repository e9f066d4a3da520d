// Package shutdown coordinates process shutdown for modi-server.
//
// Hooks registered with OnShutdown run in reverse order once SIGINT or
// SIGTERM arrives, or Trigger is called. They share one deadline.
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown("http", func(ctx context.Context) error { return srv.Shutdown(ctx) })
//	err := h.Wait()
package shutdown
