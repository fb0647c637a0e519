// Package handlers contains the reusable pieces of the web server: health
// checks, the static page handler and middleware.
//
// # Health Checks
//
// The HealthChecker interface allows registering named checks that run in
// parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v1.0.0")
//	checker.AddCheck("calc_api", handlers.NewExternalAPICheck(calcClient))
//
//	status := checker.Check(ctx)
//	if !status.Ready {
//	    log.Printf("not ready: %s", status.Message)
//	}
//
// # Middleware
//
//	handler := handlers.ChainHandler(
//	    myHandler,
//	    handlers.NoCacheMiddleware,
//	    handlers.RequestSizeLimitMiddleware(64 << 10),
//	)
package handlers
