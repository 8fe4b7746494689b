package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mkuznecov/ticketgate/internal/breaker"
	"github.com/mkuznecov/ticketgate/internal/domain"
)

// FlightServiceName is the breaker key and the name surfaced in
// unavailability errors.
const FlightServiceName = "Flight Service"

type FlightClient struct {
	base *baseClient
}

func NewFlightClient(baseURL string, timeout time.Duration, breakers *breaker.Registry, logger *log.Entry) *FlightClient {
	return &FlightClient{base: newBaseClient(FlightServiceName, baseURL, timeout, breakers, logger)}
}

func (c *FlightClient) GetFlights(ctx context.Context, page, size int) (*domain.FlightPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	resp, err := c.base.request(ctx, http.MethodGet, "/flights", query, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight service returned %d", resp.StatusCode)
	}

	var result domain.FlightPage
	if err := resp.decode(&result); err != nil {
		return nil, fmt.Errorf("decode flights page: %w", err)
	}
	return &result, nil
}

func (c *FlightClient) GetFlight(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	resp, err := c.base.request(ctx, http.MethodGet, "/flights/"+flightNumber, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrFlightNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight service returned %d", resp.StatusCode)
	}

	var result domain.Flight
	if err := resp.decode(&result); err != nil {
		return nil, fmt.Errorf("decode flight: %w", err)
	}
	return &result, nil
}
