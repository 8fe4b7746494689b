package domain

type TicketStatus string

const (
	TicketStatusPaid     TicketStatus = "PAID"
	TicketStatusCanceled TicketStatus = "CANCELED"
)

// Ticket as stored by the Ticket service.
type Ticket struct {
	TicketUID    string       `json:"ticketUid"`
	FlightNumber string       `json:"flightNumber"`
	Price        int          `json:"price"`
	Status       TicketStatus `json:"status"`
}

// TicketInfo is a ticket enriched with flight data. When the Flight lookup
// fails the flight fields carry the "Unknown" placeholder.
type TicketInfo struct {
	TicketUID    string       `json:"ticketUid"`
	FlightNumber string       `json:"flightNumber"`
	FromAirport  string       `json:"fromAirport"`
	ToAirport    string       `json:"toAirport"`
	Date         string       `json:"date"`
	Status       TicketStatus `json:"status"`
	Price        int          `json:"price"`
}

// UnknownValue fills flight enrichment fields when the Flight service cannot
// resolve a ticket's flight number.
const UnknownValue = "Unknown"

type PurchaseResult struct {
	TicketUID     string       `json:"ticketUid"`
	FlightNumber  string       `json:"flightNumber"`
	FromAirport   string       `json:"fromAirport"`
	ToAirport     string       `json:"toAirport"`
	Date          string       `json:"date"`
	Status        TicketStatus `json:"status"`
	Price         int          `json:"price"`
	PaidByMoney   int          `json:"paidByMoney"`
	PaidByBonuses int          `json:"paidByBonuses"`
	Privilege     Privilege    `json:"privilege"`
}

type UserInfo struct {
	Tickets   []TicketInfo `json:"tickets"`
	Privilege Privilege    `json:"privilege"`
}
