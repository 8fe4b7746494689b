package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mkuznecov/ticketgate/internal/breaker"
	"github.com/mkuznecov/ticketgate/internal/domain"
)

const TicketServiceName = "Ticket Service"

type TicketClient struct {
	base *baseClient
}

type createTicketRequest struct {
	FlightNumber string `json:"flightNumber"`
	Price        int    `json:"price"`
	UUID         string `json:"uuid"`
	Username     string `json:"username"`
}

func NewTicketClient(baseURL string, timeout time.Duration, breakers *breaker.Registry, logger *log.Entry) *TicketClient {
	return &TicketClient{base: newBaseClient(TicketServiceName, baseURL, timeout, breakers, logger)}
}

func (c *TicketClient) GetTickets(ctx context.Context, username string) ([]domain.Ticket, error) {
	headers := map[string]string{"X-User-Name": username}
	resp, err := c.base.request(ctx, http.MethodGet, "/tickets", nil, headers, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ticket service returned %d", resp.StatusCode)
	}

	var result []domain.Ticket
	if err := resp.decode(&result); err != nil {
		return nil, fmt.Errorf("decode tickets: %w", err)
	}
	return result, nil
}

func (c *TicketClient) GetTicket(ctx context.Context, username, ticketUID string) (*domain.Ticket, error) {
	query := url.Values{}
	query.Set("username", username)

	resp, err := c.base.request(ctx, http.MethodGet, "/tickets/"+ticketUID, query, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrTicketNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ticket service returned %d", resp.StatusCode)
	}

	var result domain.Ticket
	if err := resp.decode(&result); err != nil {
		return nil, fmt.Errorf("decode ticket: %w", err)
	}
	return &result, nil
}

func (c *TicketClient) CreateTicket(ctx context.Context, username, ticketUID, flightNumber string, price int) (*domain.Ticket, error) {
	body := createTicketRequest{
		FlightNumber: flightNumber,
		Price:        price,
		UUID:         ticketUID,
		Username:     username,
	}

	resp, err := c.base.request(ctx, http.MethodPost, "/tickets", nil, nil, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("ticket service returned %d", resp.StatusCode)
	}

	var result domain.Ticket
	if err := resp.decode(&result); err != nil {
		return nil, fmt.Errorf("decode created ticket: %w", err)
	}
	return &result, nil
}

func (c *TicketClient) DeleteTicket(ctx context.Context, ticketUID string) error {
	resp, err := c.base.request(ctx, http.MethodDelete, "/tickets/"+ticketUID, nil, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrTicketNotFound
	}
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ticket service returned %d", resp.StatusCode)
	}
	return nil
}
