package pricingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	Pricing_ServiceName          = "pricing.v1.Pricing"
	Pricing_Quote_FullMethodName = "/pricing.v1.Pricing/Quote"
)

// PricingClient is the client API for the Pricing service.
type PricingClient interface {
	Quote(ctx context.Context, in *QuoteRequest, opts ...grpc.CallOption) (*QuoteResponse, error)
}

type pricingClient struct {
	cc grpc.ClientConnInterface
}

func NewPricingClient(cc grpc.ClientConnInterface) PricingClient {
	return &pricingClient{cc: cc}
}

func (c *pricingClient) Quote(ctx context.Context, in *QuoteRequest, opts ...grpc.CallOption) (*QuoteResponse, error) {
	req, err := in.ToStruct()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode quote request: %v", err)
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, Pricing_Quote_FullMethodName, req, out, opts...); err != nil {
		return nil, err
	}
	resp, err := QuoteResponseFromStruct(out)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "decode quote response: %v", err)
	}
	return resp, nil
}

// PricingServer is the server API for the Pricing service.
type PricingServer interface {
	Quote(context.Context, *QuoteRequest) (*QuoteResponse, error)
}

// UnimplementedPricingServer can be embedded to have forward compatible implementations.
type UnimplementedPricingServer struct{}

func (UnimplementedPricingServer) Quote(context.Context, *QuoteRequest) (*QuoteResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Quote not implemented")
}

func RegisterPricingServer(s grpc.ServiceRegistrar, srv PricingServer) {
	s.RegisterService(&Pricing_ServiceDesc, srv)
}

func _Pricing_Quote_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		typed, err := QuoteRequestFromStruct(req.(*structpb.Struct))
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		resp, err := srv.(PricingServer).Quote(ctx, typed)
		if err != nil {
			return nil, err
		}
		out, err := resp.ToStruct()
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode quote response: %v", err)
		}
		return out, nil
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: Pricing_Quote_FullMethodName,
	}
	return interceptor(ctx, in, info, handler)
}

// Pricing_ServiceDesc is the grpc.ServiceDesc for the Pricing service.
var Pricing_ServiceDesc = grpc.ServiceDesc{
	ServiceName: Pricing_ServiceName,
	HandlerType: (*PricingServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Quote",
			Handler:    _Pricing_Quote_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pricing/v1/pricing.proto",
}
