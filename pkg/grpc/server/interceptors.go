package server

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor logs every unary call with its duration and status code.
// Caller mistakes are logged at warn level, server failures at error level.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		clientAddr := "unknown"
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			clientAddr = p.Addr.String()
		}

		resp, err := handler(ctx, req)
		duration := time.Since(start)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("client_addr", clientAddr),
			zap.Duration("duration", duration),
		}
		if err == nil {
			logger.Info("gRPC request completed", append(fields, zap.String("status_code", codes.OK.String()))...)
			return resp, nil
		}

		st, _ := status.FromError(err)
		fields = append(fields,
			zap.String("status_code", st.Code().String()),
			zap.String("status_message", st.Message()))
		logger.Log(levelFor(st.Code()), "gRPC request failed", fields...)
		return resp, err
	}
}

func levelFor(code codes.Code) zapcore.Level {
	switch code {
	case codes.InvalidArgument, codes.NotFound, codes.FailedPrecondition, codes.AlreadyExists, codes.Aborted, codes.Canceled:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
