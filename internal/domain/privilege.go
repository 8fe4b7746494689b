package domain

type OperationType string

const (
	OperationFillInBalance   OperationType = "FILL_IN_BALANCE"
	OperationDebitTheAccount OperationType = "DEBIT_THE_ACCOUNT"
)

// Privilege is the short loyalty profile returned inside composite responses.
type Privilege struct {
	Balance int    `json:"balance"`
	Status  string `json:"status"`
}

// DefaultPrivilege is what the Bonus service reports for users without a
// profile, and what composite reads degrade to when Bonus is unavailable.
func DefaultPrivilege() Privilege {
	return Privilege{Balance: 0, Status: "BRONZE"}
}

type PrivilegeHistoryItem struct {
	Date          string        `json:"date"`
	TicketUID     string        `json:"ticketUid"`
	BalanceDiff   int           `json:"balanceDiff"`
	OperationType OperationType `json:"operationType"`
}

type PrivilegeInfo struct {
	Balance int                    `json:"balance"`
	Status  string                 `json:"status"`
	History []PrivilegeHistoryItem `json:"history"`
}

// BonusCalculation is the Bonus service's answer to a purchase calculation:
// how much of the price was covered by bonuses and the resulting profile.
type BonusCalculation struct {
	PaidByBonuses int       `json:"paidByBonuses"`
	BalanceDiff   int       `json:"balanceDiff"`
	Privilege     Privilege `json:"privilege"`
}
