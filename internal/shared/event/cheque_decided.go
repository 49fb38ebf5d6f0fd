package event

import "time"

// ChequeDecidedDestination is the default topic for terminal approval decisions.
const ChequeDecidedDestination string = "cheque.decided"

type ChequeDecidedMessage struct {
	EventID    int64     `json:"event_id"`
	WorkflowID string    `json:"workflow_id"`
	ChequeRef  string    `json:"cheque_ref"`
	Decision   string    `json:"decision"`
	DecidedAt  time.Time `json:"decided_at"`
}
