package notification

import (
	"context"
)

// EventKind distinguishes the two debtor notification flavours.
type EventKind string

const (
	// KindBulk is sent to every debtor during a notify-all sweep.
	KindBulk EventKind = "BULK"
	// KindSingle is sent to one specific debtor on demand.
	KindSingle EventKind = "SINGLE"
)

// Parameter keys carried by notification events. BULK events carry the
// debtor count on top of the common keys; SINGLE events carry the
// household fields instead.
const (
	ParamFirstName       = "firstName"
	ParamLastName        = "lastName"
	ParamDebt            = "debt"
	ParamNumberOfDebtors = "numberOfDebtors"
	ParamHasChildren     = "hasChildren"
	ParamFamilyStatus    = "familyStatus"
)

// Event is the wire payload handed to the messaging channel. Consumers
// decode it as JSON and render the outbound email from the parameters.
type Event struct {
	RecipientEmail string            `json:"recipientEmail"`
	Kind           EventKind         `json:"kind"`
	Parameters     map[string]string `json:"parameters"`
}

// Bus is the outbound messaging channel for debtor notifications.
// Delivery is asynchronous and at-least-once beyond the Send call;
// Send returning nil only means the bus accepted the event.
type Bus interface {
	Send(ctx context.Context, event Event) error
	Close()
}
