package domain

import "time"

// LoanEvent describes a loan entering a status, either at submission or on a transition
type LoanEvent struct {
	LoanID     uint       `json:"loanId"`
	UserID     uint       `json:"userId"`
	Amount     float64    `json:"amount"`
	From       LoanStatus `json:"from,omitempty"`
	To         LoanStatus `json:"to"`
	ActorID    uint       `json:"actorId"`
	ActorRole  Role       `json:"actorRole"`
	Reason     string     `json:"reason,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}
