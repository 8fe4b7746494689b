package tickets

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mkuznecov/ticketgate/internal/compensation"
	"github.com/mkuznecov/ticketgate/internal/domain"
	"github.com/mkuznecov/ticketgate/internal/kafka"
	"github.com/mkuznecov/ticketgate/internal/metrics"
)

type TicketUseCase interface {
	ListUserTickets(ctx context.Context, username string) ([]domain.TicketInfo, error)
	GetUserTicket(ctx context.Context, username, ticketUID string) (*domain.TicketInfo, error)
	Purchase(ctx context.Context, username string, input PurchaseInput) (*domain.PurchaseResult, error)
	Refund(ctx context.Context, username, ticketUID string) error
	GetUserInfo(ctx context.Context, username string) (*domain.UserInfo, error)
	GetPrivilege(ctx context.Context, username string) (*domain.PrivilegeInfo, error)
}

type FlightAPI interface {
	GetFlight(ctx context.Context, flightNumber string) (*domain.Flight, error)
}

type TicketAPI interface {
	GetTickets(ctx context.Context, username string) ([]domain.Ticket, error)
	GetTicket(ctx context.Context, username, ticketUID string) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, username, ticketUID, flightNumber string, price int) (*domain.Ticket, error)
	DeleteTicket(ctx context.Context, ticketUID string) error
}

type BonusAPI interface {
	GetPrivilege(ctx context.Context, username string) (*domain.PrivilegeInfo, error)
	Calculate(ctx context.Context, username, ticketUID string, price int, paidFromBalance bool) (*domain.BonusCalculation, error)
	Rollback(ctx context.Context, username, ticketUID string, price int) error
}

// Compensator accepts rollback work that must eventually succeed.
type Compensator interface {
	Enqueue(task compensation.Task)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type PurchaseInput struct {
	FlightNumber    string
	Price           int
	PaidFromBalance bool
}

// TicketService sequences the composite gateway operations across the three
// downstreams and degrades reads on partial failure.
type TicketService struct {
	flight      FlightAPI
	ticket      TicketAPI
	bonus       BonusAPI
	compensator Compensator
	producer    Producer
	eventsTopic string
	logger      *log.Entry
	metrics     *metrics.GatewayMetrics
}

type TicketServiceOption func(*TicketService)

func WithProducer(producer Producer, topic string) TicketServiceOption {
	return func(s *TicketService) {
		s.producer = producer
		s.eventsTopic = topic
	}
}

func WithMetrics(m *metrics.GatewayMetrics) TicketServiceOption {
	return func(s *TicketService) {
		s.metrics = m
	}
}

func NewTicketService(
	flight FlightAPI,
	ticket TicketAPI,
	bonus BonusAPI,
	compensator Compensator,
	logger *log.Entry,
	opts ...TicketServiceOption,
) *TicketService {
	if logger == nil {
		logger = log.New().WithField("component", "tickets")
	}
	service := &TicketService{
		flight:      flight,
		ticket:      ticket,
		bonus:       bonus,
		compensator: compensator,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// ListUserTickets returns the user's tickets enriched with flight data. A
// Ticket service outage degrades to an empty list; a failed flight lookup
// fills the enrichment fields with "Unknown". Output order follows the
// Ticket service's order.
func (s *TicketService) ListUserTickets(ctx context.Context, username string) ([]domain.TicketInfo, error) {
	tickets, err := s.ticket.GetTickets(ctx, username)
	if err != nil {
		s.logger.WithError(err).WithField("username", username).Warn("ticket list unavailable, returning empty list")
		return []domain.TicketInfo{}, nil
	}

	result := make([]domain.TicketInfo, len(tickets))
	var wg sync.WaitGroup
	for i, t := range tickets {
		wg.Add(1)
		go func(i int, t domain.Ticket) {
			defer wg.Done()
			result[i] = s.enrich(ctx, t)
		}(i, t)
	}
	wg.Wait()

	return result, nil
}

func (s *TicketService) GetUserTicket(ctx context.Context, username, ticketUID string) (*domain.TicketInfo, error) {
	ticket, err := s.ticket.GetTicket(ctx, username, ticketUID)
	if err != nil {
		return nil, err
	}
	info := s.enrich(ctx, *ticket)
	return &info, nil
}

// Purchase runs the purchase saga: validate the flight, charge or credit the
// loyalty balance, create the ticket and compose the response.
//
// If ticket creation fails after the bonus step, the loyalty balance stays
// charged: there is no compensating rollback on this path and duplicate
// retries mint new ticket UIDs. Known inconsistency window.
func (s *TicketService) Purchase(ctx context.Context, username string, input PurchaseInput) (*domain.PurchaseResult, error) {
	s.metrics.RecordPurchaseStarted()

	if _, err := s.flight.GetFlight(ctx, input.FlightNumber); err != nil {
		s.metrics.RecordPurchaseFailed()
		return nil, err
	}

	ticketUID := uuid.NewString()

	calc, err := s.bonus.Calculate(ctx, username, ticketUID, input.Price, input.PaidFromBalance)
	if err != nil {
		s.metrics.RecordPurchaseFailed()
		return nil, err
	}

	// Second read for response enrichment only, not re-validated.
	flight, err := s.flight.GetFlight(ctx, input.FlightNumber)
	if err != nil {
		s.logger.WithError(err).WithField("flightNumber", input.FlightNumber).Warn("flight re-fetch failed, using placeholders")
		flight = &domain.Flight{
			FlightNumber: input.FlightNumber,
			FromAirport:  domain.UnknownValue,
			ToAirport:    domain.UnknownValue,
			Date:         domain.UnknownValue,
		}
	}

	finalPrice := input.Price - calc.PaidByBonuses
	created, err := s.ticket.CreateTicket(ctx, username, ticketUID, input.FlightNumber, finalPrice)
	if err != nil {
		s.metrics.RecordPurchaseFailed()
		return nil, err
	}

	s.publish(ctx, kafka.EventTicketPurchased, username, created)
	s.metrics.RecordPurchaseCompleted()

	return &domain.PurchaseResult{
		TicketUID:     created.TicketUID,
		FlightNumber:  flight.FlightNumber,
		FromAirport:   flight.FromAirport,
		ToAirport:     flight.ToAirport,
		Date:          flight.Date,
		Status:        created.Status,
		Price:         created.Price,
		PaidByMoney:   input.Price - calc.PaidByBonuses,
		PaidByBonuses: calc.PaidByBonuses,
		Privilege:     calc.Privilege,
	}, nil
}

// Refund cancels the ticket and rolls the bonus operation back. Once the
// ticket is canceled the refund succeeds no matter what Bonus does: a failed
// rollback is handed to the compensation worker, which retries until the
// Bonus service accepts it.
func (s *TicketService) Refund(ctx context.Context, username, ticketUID string) error {
	ticket, err := s.ticket.GetTicket(ctx, username, ticketUID)
	if err != nil {
		return err
	}

	if err := s.ticket.DeleteTicket(ctx, ticketUID); err != nil {
		return err
	}

	price := ticket.Price
	if err := s.bonus.Rollback(ctx, username, ticketUID, price); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"username":  username,
			"ticketUid": ticketUID,
		}).Warn("bonus rollback failed, scheduling compensation")
		s.compensator.Enqueue(compensation.Task{
			Name: "bonus-rollback:" + ticketUID,
			Run: func(ctx context.Context) error {
				return s.bonus.Rollback(ctx, username, ticketUID, price)
			},
		})
	}

	canceled := *ticket
	canceled.Status = domain.TicketStatusCanceled
	s.publish(ctx, kafka.EventTicketRefunded, username, &canceled)
	s.metrics.RecordRefund()
	return nil
}

// GetUserInfo aggregates tickets and the loyalty profile. Each sub-call
// degrades on its own: an unreachable Ticket service yields an empty list, an
// unreachable Bonus service yields the default profile.
func (s *TicketService) GetUserInfo(ctx context.Context, username string) (*domain.UserInfo, error) {
	tickets, _ := s.ListUserTickets(ctx, username)

	privilege := domain.DefaultPrivilege()
	if info, err := s.bonus.GetPrivilege(ctx, username); err == nil {
		privilege = domain.Privilege{Balance: info.Balance, Status: info.Status}
	} else {
		s.logger.WithError(err).WithField("username", username).Warn("privilege unavailable, using default")
	}

	return &domain.UserInfo{Tickets: tickets, Privilege: privilege}, nil
}

func (s *TicketService) GetPrivilege(ctx context.Context, username string) (*domain.PrivilegeInfo, error) {
	return s.bonus.GetPrivilege(ctx, username)
}

func (s *TicketService) enrich(ctx context.Context, ticket domain.Ticket) domain.TicketInfo {
	info := domain.TicketInfo{
		TicketUID:    ticket.TicketUID,
		FlightNumber: ticket.FlightNumber,
		FromAirport:  domain.UnknownValue,
		ToAirport:    domain.UnknownValue,
		Date:         domain.UnknownValue,
		Status:       ticket.Status,
		Price:        ticket.Price,
	}

	flight, err := s.flight.GetFlight(ctx, ticket.FlightNumber)
	if err != nil {
		s.logger.WithError(err).WithField("flightNumber", ticket.FlightNumber).Warn("flight lookup failed during enrichment")
		return info
	}

	info.FromAirport = flight.FromAirport
	info.ToAirport = flight.ToAirport
	info.Date = flight.Date
	return info
}

func (s *TicketService) publish(ctx context.Context, eventType, username string, ticket *domain.Ticket) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.TicketEvent{
		Type:         eventType,
		TicketUID:    ticket.TicketUID,
		Username:     username,
		FlightNumber: ticket.FlightNumber,
		Price:        ticket.Price,
		Status:       string(ticket.Status),
		Time:         time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, ticket.TicketUID, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event":     eventType,
			"ticketUid": ticket.TicketUID,
		}).Warn("failed to publish ticket event")
	}
}

var _ TicketUseCase = (*TicketService)(nil)
