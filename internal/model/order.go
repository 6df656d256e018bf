package model

import "time"

// Order is an immutable purchase record.
type Order struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Package   string    `json:"package"`
	Amount    string    `json:"amount"`
	Status    string    `json:"status"`
	Plan      PlanID    `json:"plan"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"createdAt"`
}

const OrderStatusPaid = "Paid"

// PlanID identifies a purchasable package
type PlanID string

const (
	PlanSingle PlanID = "single"
	PlanMulti  PlanID = "multi"
)

// Plan describes the price and credit grant of a package.
type Plan struct {
	ID      PlanID `json:"id"`
	Name    string `json:"name"`
	Amount  string `json:"amount"`
	Credits int    `json:"credits"`
}

// Plans is the fixed plan table.
var Plans = map[PlanID]Plan{
	PlanSingle: {ID: PlanSingle, Name: "Single Pack", Amount: "$79.00", Credits: 1},
	PlanMulti:  {ID: PlanMulti, Name: "Multi Pack", Amount: "$299.00", Credits: 5},
}

// LookupPlan returns the plan for id.
func LookupPlan(id PlanID) (Plan, bool) {
	p, ok := Plans[id]
	return p, ok
}

// PurchaseRequest represents the request body for POST /api/orders
type PurchaseRequest struct {
	Plan PlanID `json:"plan" validate:"required,oneof=single multi"`
}
