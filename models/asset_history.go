// models/asset_history.go
package models

import "time"

type ActionType string

const (
	ActionCreated   ActionType = "CREATED"
	ActionAssigned  ActionType = "ASSIGNED"
	ActionReclaimed ActionType = "RECLAIMED"
	ActionEvaluated ActionType = "EVALUATED"
	ActionUpdated   ActionType = "UPDATED"
)

// AssetHistory is the append-only audit trail. Entries are never updated or
// deleted; each lifecycle transition writes exactly one row in the same
// operation that mutates the asset.
type AssetHistory struct {
	ID             string      `bson:"_id,omitempty" json:"id"`
	AssetID        string      `bson:"assetId" json:"assetId"`
	ActionType     ActionType  `bson:"actionType" json:"actionType"`
	PerformedBy    string      `bson:"performedBy" json:"performedBy"`
	PerformedAt    time.Time   `bson:"performedAt" json:"performedAt"`
	Details        string      `bson:"details" json:"details"`
	Notes          string      `bson:"notes,omitempty" json:"notes,omitempty"`
	PreviousStatus AssetStatus `bson:"previousStatus,omitempty" json:"previousStatus,omitempty"`
	NewStatus      AssetStatus `bson:"newStatus,omitempty" json:"newStatus,omitempty"`
	// Seq breaks performedAt ties so display order stays stable and matches
	// insertion order.
	Seq int64 `bson:"seq" json:"-"`
}
