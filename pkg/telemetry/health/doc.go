// Package health implements liveness and readiness probes.
//
// Components register named checks with a Checker. Liveness only reports
// that the process serves requests; readiness runs every check concurrently
// with a per-check timeout and is ready only when all of them pass:
//
//	checker := health.New(2 * time.Second)
//	checker.Register("rules", func(ctx context.Context) error {
//	    if mgr.Current() == nil {
//	        return manager.ErrNotLoaded
//	    }
//	    return nil
//	})
//	mux.HandleFunc("GET /health", checker.LivenessHandler())
//	mux.HandleFunc("GET /ready", checker.ReadinessHandler())
package health
