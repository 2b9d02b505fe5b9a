// Package grpcserver exposes the evaluation service over gRPC. Messages are plain Go structs
// carried by the grpcx JSON codec, so the service descriptor is written by hand.
package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/validation"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/wire"
)

const ServiceName = "availability.v1.AvailabilityService"

const (
	validateMethod       = "/" + ServiceName + "/Validate"
	evaluateMethod       = "/" + ServiceName + "/Evaluate"
	requiredFieldsMethod = "/" + ServiceName + "/RequiredFields"
)

type ValidateRequest struct {
	Config wire.Document `json:"config"`
}

type EvaluateRequest struct {
	BusinessID string        `json:"business_id,omitempty"`
	Config     wire.Document `json:"config"`
}

// EvaluateResponse carries either Evaluation (valid) or Errors (invalid).
type EvaluateResponse struct {
	Valid      bool                   `json:"valid"`
	Errors     validation.Errors      `json:"errors,omitempty"`
	Evaluation *wire.EvaluationResult `json:"evaluation,omitempty"`
}

type RequiredFieldsRequest struct {
	Mode string `json:"mode"`
}

type AvailabilityServiceServer interface {
	Validate(context.Context, *ValidateRequest) (*wire.ValidationResult, error)
	Evaluate(context.Context, *EvaluateRequest) (*EvaluateResponse, error)
	RequiredFields(context.Context, *RequiredFieldsRequest) (*wire.RequiredFieldsResult, error)
}

func RegisterAvailabilityServiceServer(s grpc.ServiceRegistrar, srv AvailabilityServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AvailabilityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Validate", Handler: validateHandler},
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "RequiredFields", Handler: requiredFieldsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "availability/v1/availability.json",
}

func validateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ValidateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServiceServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: validateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServiceServer).Validate(ctx, req.(*ValidateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(EvaluateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServiceServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServiceServer).Evaluate(ctx, req.(*EvaluateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func requiredFieldsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RequiredFieldsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AvailabilityServiceServer).RequiredFields(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: requiredFieldsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AvailabilityServiceServer).RequiredFields(ctx, req.(*RequiredFieldsRequest))
	}
	return interceptor(ctx, in, info, handler)
}
