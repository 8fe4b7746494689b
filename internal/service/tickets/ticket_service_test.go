package tickets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/ticketgate/internal/compensation"
	"github.com/mkuznecov/ticketgate/internal/domain"
)

type MockFlightAPI struct {
	mock.Mock
}

func (m *MockFlightAPI) GetFlight(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockTicketAPI struct {
	mock.Mock
}

func (m *MockTicketAPI) GetTickets(ctx context.Context, username string) ([]domain.Ticket, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func (m *MockTicketAPI) GetTicket(ctx context.Context, username, ticketUID string) (*domain.Ticket, error) {
	args := m.Called(ctx, username, ticketUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketAPI) CreateTicket(ctx context.Context, username, ticketUID, flightNumber string, price int) (*domain.Ticket, error) {
	args := m.Called(ctx, username, ticketUID, flightNumber, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketAPI) DeleteTicket(ctx context.Context, ticketUID string) error {
	args := m.Called(ctx, ticketUID)
	return args.Error(0)
}

type MockBonusAPI struct {
	mock.Mock
}

func (m *MockBonusAPI) GetPrivilege(ctx context.Context, username string) (*domain.PrivilegeInfo, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrivilegeInfo), args.Error(1)
}

func (m *MockBonusAPI) Calculate(ctx context.Context, username, ticketUID string, price int, paidFromBalance bool) (*domain.BonusCalculation, error) {
	args := m.Called(ctx, username, ticketUID, price, paidFromBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BonusCalculation), args.Error(1)
}

func (m *MockBonusAPI) Rollback(ctx context.Context, username, ticketUID string, price int) error {
	args := m.Called(ctx, username, ticketUID, price)
	return args.Error(0)
}

// fakeCompensator records enqueued tasks so tests can replay them.
type fakeCompensator struct {
	tasks []compensation.Task
}

func (f *fakeCompensator) Enqueue(task compensation.Task) {
	f.tasks = append(f.tasks, task)
}

func newService(flight *MockFlightAPI, ticket *MockTicketAPI, bonus *MockBonusAPI, comp *fakeCompensator) *TicketService {
	return NewTicketService(flight, ticket, bonus, comp, nil)
}

var testFlight = &domain.Flight{
	FlightNumber: "AFL031",
	FromAirport:  "LED",
	ToAirport:    "SVO",
	Date:         "2021-10-08 20:00",
	Price:        1500,
}

func TestPurchase_PaidFromBalance(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	svc := newService(flight, ticket, bonus, &fakeCompensator{})
	ctx := context.Background()

	flight.On("GetFlight", ctx, "AFL031").Return(testFlight, nil)
	bonus.On("Calculate", ctx, "TestUser", mock.AnythingOfType("string"), 200, true).Return(&domain.BonusCalculation{
		PaidByBonuses: 200,
		BalanceDiff:   -200,
		Privilege:     domain.Privilege{Balance: 300, Status: "BRONZE"},
	}, nil)
	ticket.On("CreateTicket", ctx, "TestUser", mock.AnythingOfType("string"), "AFL031", 0).Return(&domain.Ticket{
		TicketUID:    "049161bb-badd-4fa8-9d90-87c9a82b0668",
		FlightNumber: "AFL031",
		Price:        0,
		Status:       domain.TicketStatusPaid,
	}, nil)

	result, err := svc.Purchase(ctx, "TestUser", PurchaseInput{FlightNumber: "AFL031", Price: 200, PaidFromBalance: true})
	require.NoError(t, err)

	assert.Equal(t, 0, result.PaidByMoney)
	assert.Equal(t, 200, result.PaidByBonuses)
	assert.Equal(t, 300, result.Privilege.Balance)
	assert.Equal(t, domain.TicketStatusPaid, result.Status)
	assert.Equal(t, "LED", result.FromAirport)

	ticket.AssertExpectations(t)
	bonus.AssertExpectations(t)
}

func TestPurchase_CashbackPath(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	svc := newService(flight, ticket, bonus, &fakeCompensator{})
	ctx := context.Background()

	flight.On("GetFlight", ctx, "AFL031").Return(testFlight, nil)
	bonus.On("Calculate", ctx, "TestUser", mock.AnythingOfType("string"), 100, false).Return(&domain.BonusCalculation{
		PaidByBonuses: 0,
		BalanceDiff:   10,
		Privilege:     domain.Privilege{Balance: 10, Status: "BRONZE"},
	}, nil)
	ticket.On("CreateTicket", ctx, "TestUser", mock.AnythingOfType("string"), "AFL031", 100).Return(&domain.Ticket{
		TicketUID:    "049161bb-badd-4fa8-9d90-87c9a82b0668",
		FlightNumber: "AFL031",
		Price:        100,
		Status:       domain.TicketStatusPaid,
	}, nil)

	result, err := svc.Purchase(ctx, "TestUser", PurchaseInput{FlightNumber: "AFL031", Price: 100, PaidFromBalance: false})
	require.NoError(t, err)

	assert.Equal(t, 100, result.PaidByMoney)
	assert.Equal(t, 0, result.PaidByBonuses)
	assert.Equal(t, 10, result.Privilege.Balance)
}

func TestPurchase_FlightNotFound(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	svc := newService(flight, ticket, bonus, &fakeCompensator{})
	ctx := context.Background()

	flight.On("GetFlight", ctx, "XXX000").Return(nil, domain.ErrFlightNotFound)

	_, err := svc.Purchase(ctx, "TestUser", PurchaseInput{FlightNumber: "XXX000", Price: 100})
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)

	bonus.AssertNotCalled(t, "Calculate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ticket.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchase_BonusUnavailable(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	svc := newService(flight, ticket, bonus, &fakeCompensator{})
	ctx := context.Background()

	flight.On("GetFlight", ctx, "AFL031").Return(testFlight, nil)
	bonus.On("Calculate", ctx, "TestUser", mock.AnythingOfType("string"), 100, false).
		Return(nil, domain.NewServiceUnavailable("Bonus Service"))

	_, err := svc.Purchase(ctx, "TestUser", PurchaseInput{FlightNumber: "AFL031", Price: 100})
	assert.True(t, domain.IsUnavailable(err))

	// nothing was persisted on the Ticket side
	ticket.AssertNotCalled(t, "CreateTicket", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchase_TicketCreateFailureLeavesBonusCharged(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	comp := &fakeCompensator{}
	svc := newService(flight, ticket, bonus, comp)
	ctx := context.Background()

	flight.On("GetFlight", ctx, "AFL031").Return(testFlight, nil)
	bonus.On("Calculate", ctx, "TestUser", mock.AnythingOfType("string"), 200, true).Return(&domain.BonusCalculation{
		PaidByBonuses: 200,
		BalanceDiff:   -200,
		Privilege:     domain.Privilege{Balance: 300, Status: "BRONZE"},
	}, nil)
	ticket.On("CreateTicket", ctx, "TestUser", mock.AnythingOfType("string"), "AFL031", 0).
		Return(nil, domain.NewServiceUnavailable("Ticket Service"))

	_, err := svc.Purchase(ctx, "TestUser", PurchaseInput{FlightNumber: "AFL031", Price: 200, PaidFromBalance: true})
	assert.True(t, domain.IsUnavailable(err))

	// the bonus charge stays in place: no rollback and no compensation task
	bonus.AssertNotCalled(t, "Rollback", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, comp.tasks)
}

func TestListUserTickets_Enrichment(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	svc := newService(flight, ticket, bonus, &fakeCompensator{})
	ctx := context.Background()

	ticket.On("GetTickets", ctx, "TestUser").Return([]domain.Ticket{
		{TicketUID: "uid-1", FlightNumber: "AFL031", Price: 1500, Status: domain.TicketStatusPaid},
		{TicketUID: "uid-2", FlightNumber: "AFL032", Price: 500, Status: domain.TicketStatusPaid},
	}, nil)
	flight.On("GetFlight", ctx, "AFL031").Return(testFlight, nil)
	flight.On("GetFlight", ctx, "AFL032").Return(nil, domain.ErrFlightNotFound)

	result, err := svc.ListUserTickets(ctx, "TestUser")
	require.NoError(t, err)
	require.Len(t, result, 2)

	// output order follows the Ticket service's order
	assert.Equal(t, "uid-1", result[0].TicketUID)
	assert.Equal(t, "LED", result[0].FromAirport)
	assert.Equal(t, "2021-10-08 20:00", result[0].Date)

	assert.Equal(t, "uid-2", result[1].TicketUID)
	assert.Equal(t, domain.UnknownValue, result[1].FromAirport)
	assert.Equal(t, domain.UnknownValue, result[1].ToAirport)
	assert.Equal(t, domain.UnknownValue, result[1].Date)
}

func TestListUserTickets_TicketServiceDownDegradesToEmptyList(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	svc := newService(flight, ticket, bonus, &fakeCompensator{})
	ctx := context.Background()

	ticket.On("GetTickets", ctx, "TestUser").Return(nil, domain.NewServiceUnavailable("Ticket Service"))

	result, err := svc.ListUserTickets(ctx, "TestUser")
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NotNil(t, result)
}

func TestGetUserInfo_DegradesPerDownstream(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	svc := newService(flight, ticket, bonus, &fakeCompensator{})
	ctx := context.Background()

	ticket.On("GetTickets", ctx, "TestUser").Return(nil, domain.NewServiceUnavailable("Ticket Service"))
	bonus.On("GetPrivilege", ctx, "TestUser").Return(nil, domain.NewServiceUnavailable("Bonus Service"))

	info, err := svc.GetUserInfo(ctx, "TestUser")
	require.NoError(t, err)
	assert.Empty(t, info.Tickets)
	assert.Equal(t, domain.DefaultPrivilege(), info.Privilege)
}

func TestGetUserTicket_NotFound(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	svc := newService(flight, ticket, bonus, &fakeCompensator{})
	ctx := context.Background()

	ticket.On("GetTicket", ctx, "TestUser", "uid-1").Return(nil, domain.ErrTicketNotFound)

	_, err := svc.GetUserTicket(ctx, "TestUser", "uid-1")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestRefund_Success(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	comp := &fakeCompensator{}
	svc := newService(flight, ticket, bonus, comp)
	ctx := context.Background()

	ticket.On("GetTicket", ctx, "TestUser", "uid-1").Return(&domain.Ticket{
		TicketUID:    "uid-1",
		FlightNumber: "AFL031",
		Price:        1500,
		Status:       domain.TicketStatusPaid,
	}, nil)
	ticket.On("DeleteTicket", ctx, "uid-1").Return(nil)
	bonus.On("Rollback", ctx, "TestUser", "uid-1", 1500).Return(nil)

	err := svc.Refund(ctx, "TestUser", "uid-1")
	require.NoError(t, err)
	assert.Empty(t, comp.tasks)
	bonus.AssertExpectations(t)
}

func TestRefund_BonusUnavailableSchedulesCompensation(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	comp := &fakeCompensator{}
	svc := newService(flight, ticket, bonus, comp)
	ctx := context.Background()

	ticket.On("GetTicket", ctx, "TestUser", "uid-1").Return(&domain.Ticket{
		TicketUID:    "uid-1",
		FlightNumber: "AFL031",
		Price:        1500,
		Status:       domain.TicketStatusPaid,
	}, nil)
	ticket.On("DeleteTicket", ctx, "uid-1").Return(nil)
	bonus.On("Rollback", ctx, "TestUser", "uid-1", 1500).
		Return(domain.NewServiceUnavailable("Bonus Service")).Once()

	// the refund still succeeds
	err := svc.Refund(ctx, "TestUser", "uid-1")
	require.NoError(t, err)
	require.Len(t, comp.tasks, 1)

	// the enqueued task retries the same rollback
	bonus.On("Rollback", ctx, "TestUser", "uid-1", 1500).Return(nil).Once()
	require.NoError(t, comp.tasks[0].Run(ctx))
	bonus.AssertExpectations(t)
}

func TestRefund_TicketNotFound(t *testing.T) {
	flight := &MockFlightAPI{}
	ticket := &MockTicketAPI{}
	bonus := &MockBonusAPI{}
	comp := &fakeCompensator{}
	svc := newService(flight, ticket, bonus, comp)
	ctx := context.Background()

	ticket.On("GetTicket", ctx, "TestUser", "uid-1").Return(nil, domain.ErrTicketNotFound)

	err := svc.Refund(ctx, "TestUser", "uid-1")
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
	ticket.AssertNotCalled(t, "DeleteTicket", mock.Anything, mock.Anything)
	assert.Empty(t, comp.tasks)
}
