package domain

// Flight as served by the Flight service. Date keeps the downstream's
// "YYYY-MM-DD HH:MM" string form.
type Flight struct {
	FlightNumber string `json:"flightNumber"`
	FromAirport  string `json:"fromAirport"`
	ToAirport    string `json:"toAirport"`
	Date         string `json:"date"`
	Price        int    `json:"price"`
}

type FlightPage struct {
	Page          int      `json:"page"`
	PageSize      int      `json:"pageSize"`
	TotalElements int      `json:"totalElements"`
	Items         []Flight `json:"items"`
}
