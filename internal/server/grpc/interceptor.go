package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

func (s *HealthServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	st := status.Convert(err)
	s.logger.Debug(ctx, "grpc call",
		"method", info.FullMethod,
		"status", st.Code().String(),
		"duration", time.Since(start).String(),
	)
	return resp, err
}
