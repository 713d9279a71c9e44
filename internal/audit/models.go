package audit

import "time"

// Action names a checkout audit event.
type Action string

const (
	ActionCheckoutStarted Action = "checkout_started"
	ActionStepAdvanced    Action = "step_advanced"
	ActionStepRetreated   Action = "step_retreated"
	ActionStepRejected    Action = "step_rejected"
	ActionOrderPlaced     Action = "order_placed"
	ActionCheckoutReset   Action = "checkout_reset"
	ActionCheckoutDeleted Action = "checkout_deleted"
)

// Event is emitted from the checkout service to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out. Events never carry
// payment field values.
type Event struct {
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"session_id"`
	RequestID   string    `json:"request_id,omitempty"`
	Action      Action    `json:"action"`
	FromStep    int       `json:"from_step,omitempty"`
	ToStep      int       `json:"to_step,omitempty"`
	Fields      []string  `json:"fields,omitempty"`
	OrderNumber int       `json:"order_number,omitempty"`
}
