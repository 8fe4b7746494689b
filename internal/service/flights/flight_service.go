package flights

import (
	"context"

	"github.com/mkuznecov/ticketgate/internal/domain"
)

type FlightUseCase interface {
	List(ctx context.Context, page, size int) (*domain.FlightPage, error)
}

// FlightAPI is the Flight service client surface used here.
type FlightAPI interface {
	GetFlights(ctx context.Context, page, size int) (*domain.FlightPage, error)
}

type Cache interface {
	GetFlightPage(ctx context.Context, page, size int) (*domain.FlightPage, error)
	SetFlightPage(ctx context.Context, result *domain.FlightPage) error
}

// FlightService passes the catalog through from the Flight service with an
// optional read-through cache. A nil cache disables caching entirely.
type FlightService struct {
	client FlightAPI
	cache  Cache
}

func NewFlightService(client FlightAPI, cache Cache) *FlightService {
	return &FlightService{client: client, cache: cache}
}

func (s *FlightService) List(ctx context.Context, page, size int) (*domain.FlightPage, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlightPage(ctx, page, size); err == nil && cached != nil {
			return cached, nil
		}
	}

	result, err := s.client.GetFlights(ctx, page, size)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlightPage(ctx, result)
	}
	return result, nil
}

var _ FlightUseCase = (*FlightService)(nil)
