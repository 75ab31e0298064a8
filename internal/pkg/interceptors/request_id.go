package interceptors

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/jcmexdev/flight-services/internal/pkg/interceptors/constants"
)

// RequestIDClientInterceptor makes sure every outgoing call carries an
// x-request-id. The id comes from the context when the HTTP layer set one,
// otherwise a fresh UUID is minted for the call.
func RequestIDClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		return invoker(WithOutgoingRequestID(ctx), method, req, reply, cc, opts...)
	}
}

// WithOutgoingRequestID appends the request id to the outgoing metadata
// unless it is already there.
func WithOutgoingRequestID(ctx context.Context) context.Context {
	if md, ok := metadata.FromOutgoingContext(ctx); ok && len(md.Get(constants.HeaderXRequestId)) > 0 {
		return ctx
	}
	id := GetMetadataValue(ctx, constants.HeaderXRequestId)
	if id == "" {
		id = uuid.NewString()
	}
	return metadata.AppendToOutgoingContext(ctx, constants.HeaderXRequestId, id)
}

// GetMetadataValue looks a key up in the context values first, then in the
// incoming and outgoing gRPC metadata.
func GetMetadataValue(ctx context.Context, key string) string {
	if v, ok := ctx.Value(contextKeyFor(key)).(string); ok && v != "" {
		return v
	}

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(key); len(ids) > 0 {
			return ids[0]
		}
	}

	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		if ids := md.Get(key); len(ids) > 0 {
			return ids[0]
		}
	}
	return ""
}

func contextKeyFor(key string) any {
	switch key {
	case constants.HeaderXRequestId:
		return constants.ContextKeyRequestID
	case constants.HeaderXIdempotencyKey:
		return constants.ContextKeyIdempotencyKey
	default:
		return key
	}
}
