// Package pricing adapts the pricing.v1 gRPC client to ports.PricingDownstream.
package pricing

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/domain"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/ports"
	"github.com/jcmexdev/flight-services/internal/pkg/interceptors"
	pricingv1 "github.com/jcmexdev/flight-services/internal/rpc/pricing/v1"
)

var _ ports.PricingDownstream = (*GRPCPricing)(nil)

type GRPCPricing struct {
	client pricingv1.PricingClient
}

func NewGRPCPricing(client pricingv1.PricingClient) *GRPCPricing {
	return &GRPCPricing{client: client}
}

// Dial opens an instrumented connection to the pricing service. The
// connection is lazy: an unreachable service surfaces as call errors.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(interceptors.RequestIDClientInterceptor()),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial pricing service %s: %w", addr, err)
	}
	return conn, nil
}

func (p *GRPCPricing) Quote(ctx context.Context, req ports.QuoteRequest) (ports.QuoteResult, error) {
	res, err := p.client.Quote(ctx, &pricingv1.QuoteRequest{
		FlightNumber:  req.FlightNumber,
		DepartureDate: req.DepartureDate.Format(domain.DateLayout),
		PassengerType: string(req.PassengerType),
		Seats:         int32(req.Seats),
		BaseFare:      req.BaseFare.String(),
		Currency:      req.Currency,
	})
	if err != nil {
		return ports.QuoteResult{}, fmt.Errorf("grpc Quote %s: %w", req.FlightNumber, err)
	}

	total, err := decimal.NewFromString(res.Total)
	if err != nil {
		return ports.QuoteResult{}, fmt.Errorf("grpc Quote %s: bad total %s: %w", req.FlightNumber, strconv.Quote(res.Total), err)
	}
	return ports.QuoteResult{Total: total, Currency: res.Currency}, nil
}
