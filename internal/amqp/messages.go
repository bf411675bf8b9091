package amqp

import (
	"encoding/json"
	"time"

	"budgetapi/internal/core"
)

// Event kinds
const (
	KindPlanned = "planned"
	KindActual  = "actual"
)

// LedgerEvent announces a committed write to a month ledger.
type LedgerEvent struct {
	User            string    `json:"user"`
	Month           string    `json:"month"`
	Kind            string    `json:"kind"`
	TotalPlanned    float64   `json:"total_planned"`
	TotalActual     float64   `json:"total_actual"`
	RemainingActual float64   `json:"remaining_actual"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewLedgerEvent builds an event from the ledger state after a write.
func NewLedgerEvent(kind, user string, l core.MonthLedger) *LedgerEvent {
	return &LedgerEvent{
		User:            user,
		Month:           l.Month.String(),
		Kind:            kind,
		TotalPlanned:    l.TotalPlanned,
		TotalActual:     l.TotalActual,
		RemainingActual: l.RemainingActual,
		Timestamp:       time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

