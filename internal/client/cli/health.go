package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Health calls the auth server's gRPC health check with the session's
// access credential. An expired credential is renewed the same way as for
// HTTP requests.
func (a *App) Health(ctx context.Context) error {
	conn, err := client.NewGRPCConn(a.config.GRPCAddr, a.store, a.coordinator, a.logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "health: %s\n", resp.GetStatus())
	return nil
}
