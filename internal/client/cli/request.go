package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/client/client"
	"github.com/dmitrijs2005/gophgate/internal/client/transport"
	"golang.org/x/sync/errgroup"
)

const maxBurst = 1000

// Request sends one call. args[0] is the path, the remaining args are
// joined into a JSON body.
func (a *App) Request(ctx context.Context, method string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s <path> [json]", errUsage, strings.ToLower(method))
	}

	var opts []client.Option
	if len(args) > 1 {
		body := strings.Join(args[1:], " ")
		if !json.Valid([]byte(body)) {
			return fmt.Errorf("body is not valid JSON: %s", body)
		}
		opts = append(opts, client.WithBody([]byte(body)))
	}

	resp, err := a.send(ctx, method, args[0], opts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	if len(resp.Body) > 0 {
		fmt.Fprintln(a.out, strings.TrimRight(string(resp.Body), "\n"))
	}
	return nil
}

func (a *App) send(ctx context.Context, method, path string, opts ...client.Option) (*transport.Response, error) {
	switch method {
	case http.MethodGet:
		return a.dispatcher.Get(ctx, path, opts...)
	case http.MethodPost:
		return a.dispatcher.Post(ctx, path, opts...)
	case http.MethodPut:
		return a.dispatcher.Put(ctx, path, opts...)
	case http.MethodDelete:
		return a.dispatcher.Delete(ctx, path, opts...)
	default:
		return nil, fmt.Errorf("unsupported method %s", method)
	}
}

// Burst fires n concurrent GETs at a path. With an expired access
// credential all of them share a single refresh.
func (a *App) Burst(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: burst <n> <path>", errUsage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > maxBurst {
		return fmt.Errorf("%w: n must be between 1 and %d", errUsage, maxBurst)
	}

	var ok, failed atomic.Int32
	start := time.Now()

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if _, err := a.dispatcher.Get(ctx, args[1]); err != nil {
				failed.Add(1)
				return err
			}
			ok.Add(1)
			return nil
		})
	}
	err = g.Wait()

	fmt.Fprintf(a.out, "burst: %d ok, %d failed in %s\n", ok.Load(), failed.Load(), time.Since(start).Round(time.Millisecond))
	return err
}

func (a *App) Status(ctx context.Context) error {
	fmt.Fprintf(a.out, "session:  %s\n", a.getStatus(ctx))
	fmt.Fprintf(a.out, "refresh:  %s\n", a.coordinator.State())
	fmt.Fprintf(a.out, "api:      %s\n", a.config.BaseURI)
	fmt.Fprintf(a.out, "auth:     %s\n", a.config.AuthURI)
	fmt.Fprintf(a.out, "store:    %s\n", a.config.StoreKind)
	return nil
}
