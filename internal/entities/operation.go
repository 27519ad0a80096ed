package entities

// Action is a logical operation against the QuickBooks API.
type Action string

const (
	ActionQuery  Action = "query"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionVoid   Action = "void"
)

// ValidActions lists every accepted action, in the order reported to callers.
var ValidActions = []Action{ActionQuery, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionVoid}

func (a Action) Valid() bool {
	for _, v := range ValidActions {
		if a == v {
			return true
		}
	}
	return false
}

// RequiresEntityID reports whether the action targets a single record.
func (a Action) RequiresEntityID() bool {
	switch a {
	case ActionRead, ActionUpdate, ActionDelete, ActionVoid:
		return true
	}
	return false
}

// Metered reports whether the action consumes a delete credit
// (unless the user holds an active subscription).
func (a Action) Metered() bool {
	return a == ActionDelete || a == ActionVoid
}

// EntityType is a QuickBooks transaction entity.
type EntityType string

const (
	EntityInvoice      EntityType = "Invoice"
	EntityBill         EntityType = "Bill"
	EntityPayment      EntityType = "Payment"
	EntityPurchase     EntityType = "Purchase"
	EntityJournalEntry EntityType = "JournalEntry"
	EntityTransfer     EntityType = "Transfer"
)

var ValidEntityTypes = []EntityType{EntityInvoice, EntityBill, EntityPayment, EntityPurchase, EntityJournalEntry, EntityTransfer}

func (e EntityType) Valid() bool {
	for _, v := range ValidEntityTypes {
		if e == v {
			return true
		}
	}
	return false
}

// OperationRequest is one inbound call to the operation endpoint,
// validated before any side effect.
type OperationRequest struct {
	Action     Action                 `json:"action"`
	EntityType EntityType             `json:"entity_type"`
	EntityID   string                 `json:"entity_id,omitempty"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Query      string                 `json:"query,omitempty"`
}
