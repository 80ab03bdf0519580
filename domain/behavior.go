package domain

import "time"

type BehaviorAction string

const (
	ActionView     BehaviorAction = "view"
	ActionCart     BehaviorAction = "cart"
	ActionPurchase BehaviorAction = "purchase"
)

// AnonymousUserID is recorded for shoppers without an authenticated session.
const AnonymousUserID = "anonymous"

func (a BehaviorAction) Valid() bool {
	switch a {
	case ActionView, ActionCart, ActionPurchase:
		return true
	default:
		return false
	}
}

type BehaviorEvent struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	ProductID string         `json:"product_id"`
	Action    BehaviorAction `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
}
