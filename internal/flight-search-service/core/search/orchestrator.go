// Package search finds flights and prices every one of them concurrently.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/domain"
	"github.com/jcmexdev/flight-services/internal/flight-search-service/core/ports"
)

const DefaultConcurrency = 8

// Pricer is the part of gateway.Gateway the orchestrator depends on.
type Pricer interface {
	PriceOne(ctx context.Context, flight domain.FlightCandidate, pax domain.PassengerType, seats int) (domain.PricedFlight, error)
	Fallback(flight domain.FlightCandidate) domain.PricedFlight
}

type Orchestrator struct {
	finder      ports.FlightFinder
	pricer      Pricer
	concurrency int
	logger      *slog.Logger
}

func NewOrchestrator(finder ports.FlightFinder, pricer Pricer, concurrency int, logger *slog.Logger) *Orchestrator {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		finder:      finder,
		pricer:      pricer,
		concurrency: concurrency,
		logger:      logger,
	}
}

// SearchAndPrice returns one priced result per flight found, in inventory
// order. Invalid criteria fail before any collaborator is called.
func (o *Orchestrator) SearchAndPrice(ctx context.Context, criteria domain.SearchCriteria) ([]domain.PricedFlight, error) {
	criteria, err := criteria.Validate()
	if err != nil {
		return nil, err
	}

	candidates, err := o.finder.FindFlights(ctx, criteria.Origin, criteria.Destination, criteria.DateFrom, criteria.DateTo)
	if err != nil {
		return nil, fmt.Errorf("search: find flights: %w", err)
	}

	results := make([]domain.PricedFlight, len(candidates))
	if len(candidates) == 0 {
		return results, nil
	}

	// Workers never return an error: every flight gets a price, so the group
	// is only used for its concurrency limit.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			priced, err := o.pricer.PriceOne(gctx, candidate, criteria.PassengerType, criteria.Seats)
			if err != nil {
				o.logger.WarnContext(gctx, "flight rejected by pricing gateway, using fallback",
					"flight_number", candidate.FlightNumber,
					"error", err,
				)
				priced = o.pricer.Fallback(candidate)
			}
			results[i] = priced
			return nil
		})
	}
	_ = g.Wait()

	o.logger.DebugContext(ctx, "search priced",
		"origin", criteria.Origin,
		"destination", criteria.Destination,
		"results", len(results),
	)
	return results, nil
}
