package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

// DefaultRequestTimeout applies when neither the caller nor the
// configuration sets a deadline.
const DefaultRequestTimeout = 10 * time.Second

// RequestTimeoutInterceptor bounds requests that arrive without a deadline.
func RequestTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := ctx.Deadline(); ok {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		return handler(ctx, req)
	}
}
