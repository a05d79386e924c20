package client

import (
	"context"

	"github.com/dmitrijs2005/gophgate/internal/client/credentials"
	"github.com/dmitrijs2005/gophgate/internal/client/refresh"
	"github.com/dmitrijs2005/gophgate/internal/client/transport"
	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AuthorizationMetadataKey)
	if token != "" {
		md.Set(common.AuthorizationMetadataKey, common.BearerValue(token))
	}

	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryInterceptor attaches the access credential to every unary call. A
// call failing with codes.Unauthenticated goes through the coordinator and
// is re-invoked with the renewed credential.
func UnaryInterceptor(store credentials.Store, coord *refresh.Coordinator, l logging.Logger) grpc.UnaryClientInterceptor {
	l = l.With("module", "grpc")

	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		access, err := store.Get(ctx, credentials.AccessTokenKey)
		if err != nil {
			return err
		}

		err = invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
		if status.Code(err) != codes.Unauthenticated || coord == nil {
			return err
		}

		l.Debug(ctx, "unauthenticated, handing to refresh", "method", method)

		_, err = coord.HandleAuthFailure(ctx, refresh.Call{
			Request:    transport.Request{Method: method},
			Credential: access,
			Err:        err,
			Replay: func(ctx context.Context, access string) (*transport.Response, error) {
				return nil, invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
			},
		})
		return err
	}
}

// NewGRPCConn opens a plaintext client connection that uses UnaryInterceptor.
func NewGRPCConn(target string, store credentials.Store, coord *refresh.Coordinator, l logging.Logger) (*grpc.ClientConn, error) {
	return grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(UnaryInterceptor(store, coord, l)),
	)
}
