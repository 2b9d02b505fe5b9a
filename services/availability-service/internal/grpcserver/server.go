package grpcserver

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/md-rashed-zaman/availcap/libs/grpcx"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/evaluation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/recurrence"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/wire"
)

type server struct {
	svc    *evaluation.Service
	logger *slog.Logger
}

// NewServer builds a traced gRPC server with the availability service registered.
func NewServer(svc *evaluation.Service, logger *slog.Logger) *grpc.Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(grpcx.UnaryServerRequestIDInterceptor()),
	)
	Register(srv, svc, logger)
	return srv
}

func Register(grpcServer *grpc.Server, svc *evaluation.Service, logger *slog.Logger) {
	RegisterAvailabilityServiceServer(grpcServer, &server{svc: svc, logger: logger})
}

// Validation failures are results, not RPC errors; only malformed documents fail the call.
func (s *server) Validate(ctx context.Context, req *ValidateRequest) (*wire.ValidationResult, error) {
	errs, err := s.svc.Validate(ctx, req.Config)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	res := wire.NewValidationResult(errs)
	return &res, nil
}

func (s *server) Evaluate(ctx context.Context, req *EvaluateRequest) (*EvaluateResponse, error) {
	o, err := s.svc.Evaluate(ctx, req.BusinessID, req.Config)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	if !o.Valid {
		return &EvaluateResponse{Valid: false, Errors: o.Errors}, nil
	}
	res := o.Result()
	return &EvaluateResponse{Valid: true, Evaluation: &res}, nil
}

func (s *server) RequiredFields(_ context.Context, req *RequiredFieldsRequest) (*wire.RequiredFieldsResult, error) {
	kind, err := recurrence.ParseKind(req.Mode)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	return &wire.RequiredFieldsResult{Mode: string(kind), RequiredFields: wire.RequiredFieldNames(kind)}, nil
}

func (s *server) toStatus(ctx context.Context, err error) error {
	if errors.Is(err, wire.ErrMalformed) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	s.logger.Error("grpc evaluation failed", "err", err, "request_id", grpcx.RequestIDFromContext(ctx))
	return status.Error(codes.Internal, "evaluation failed")
}
