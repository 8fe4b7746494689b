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

const BonusServiceName = "Bonus Service"

type BonusClient struct {
	base *baseClient
}

type calculateRequest struct {
	TicketUID       string `json:"ticketUid"`
	Price           int    `json:"price"`
	PaidFromBalance bool   `json:"paidFromBalance"`
	Username        string `json:"username"`
}

type rollbackRequest struct {
	Username string `json:"username"`
	Price    int    `json:"price"`
}

func NewBonusClient(baseURL string, timeout time.Duration, breakers *breaker.Registry, logger *log.Entry) *BonusClient {
	return &BonusClient{base: newBaseClient(BonusServiceName, baseURL, timeout, breakers, logger)}
}

func (c *BonusClient) GetPrivilege(ctx context.Context, username string) (*domain.PrivilegeInfo, error) {
	query := url.Values{}
	query.Set("username", username)

	resp, err := c.base.request(ctx, http.MethodGet, "/privilege", query, nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrPrivilegeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bonus service returned %d", resp.StatusCode)
	}

	var result domain.PrivilegeInfo
	if err := resp.decode(&result); err != nil {
		return nil, fmt.Errorf("decode privilege: %w", err)
	}
	return &result, nil
}

// Calculate debits or credits the loyalty balance for a purchase and reports
// how much of the price was covered by bonuses.
func (c *BonusClient) Calculate(ctx context.Context, username, ticketUID string, price int, paidFromBalance bool) (*domain.BonusCalculation, error) {
	body := calculateRequest{
		TicketUID:       ticketUID,
		Price:           price,
		PaidFromBalance: paidFromBalance,
		Username:        username,
	}

	resp, err := c.base.request(ctx, http.MethodPost, "/privilege/calculate", nil, nil, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bonus service returned %d", resp.StatusCode)
	}

	var result domain.BonusCalculation
	if err := resp.decode(&result); err != nil {
		return nil, fmt.Errorf("decode bonus calculation: %w", err)
	}
	return &result, nil
}

// Rollback reverses the bonus operation recorded for ticketUID. The Bonus
// service decides the direction and amount from its own history; no response
// body is expected.
func (c *BonusClient) Rollback(ctx context.Context, username, ticketUID string, price int) error {
	body := rollbackRequest{Username: username, Price: price}

	resp, err := c.base.request(ctx, http.MethodDelete, "/privilege/rollback/"+ticketUID, nil, nil, body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("bonus service returned %d", resp.StatusCode)
	}
	return nil
}
