// Package serve provides gRPC server infrastructure for running coverage
// analysis as a network service.
//
// Server wraps a gRPC server with lifecycle management: listener setup,
// optional TLS, health check registration, and graceful shutdown on
// SIGINT/SIGTERM or context cancellation. Callers register their own
// services on the underlying gRPC server before calling Serve.
//
//	srv, err := serve.NewServer(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv.HealthServer().SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
//	if err := srv.Serve(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Serve blocks until the context is cancelled, a SIGINT/SIGTERM arrives, or
// the server fails:
//
//  1. Signal received or context cancelled
//  2. Server stops accepting new connections
//  3. Active requests complete within the configured timeout
//  4. Remaining requests are terminated
//
// # Health Checks
//
// Servers automatically expose gRPC health checks compatible with the
// standard gRPC health checking protocol, so load balancers and
// orchestration systems can monitor server health.
//
// # Tracing
//
// NewTracerProvider builds an OpenTelemetry TracerProvider whose finished
// spans are written to a structured logger, and ContextWithRemoteParent
// links server spans to a caller's trace.
package serve
