package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/md-rashed-zaman/availcap/libs/grpcx"
	"github.com/md-rashed-zaman/availcap/services/availability-service/internal/wire"
)

// Client calls a remote AvailabilityService.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Validate(ctx context.Context, doc wire.Document) (*wire.ValidationResult, error) {
	out := new(wire.ValidationResult)
	if err := c.cc.Invoke(ctx, validateMethod, &ValidateRequest{Config: doc}, out, grpcx.JSONCallOption()); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Evaluate(ctx context.Context, businessID string, doc wire.Document) (*EvaluateResponse, error) {
	out := new(EvaluateResponse)
	req := &EvaluateRequest{BusinessID: businessID, Config: doc}
	if err := c.cc.Invoke(ctx, evaluateMethod, req, out, grpcx.JSONCallOption()); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) RequiredFields(ctx context.Context, mode string) (*wire.RequiredFieldsResult, error) {
	out := new(wire.RequiredFieldsResult)
	if err := c.cc.Invoke(ctx, requiredFieldsMethod, &RequiredFieldsRequest{Mode: mode}, out, grpcx.JSONCallOption()); err != nil {
		return nil, err
	}
	return out, nil
}
