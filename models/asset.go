// models/asset.go
package models

import (
	"regexp"
	"time"
)

type AssetStatus string

const (
	StatusInStock     AssetStatus = "IN_STOCK"
	StatusInUse       AssetStatus = "IN_USE"
	StatusMaintenance AssetStatus = "MAINTENANCE"
	StatusRetired     AssetStatus = "RETIRED"
)

type AssetCondition string

const (
	ConditionGood        AssetCondition = "GOOD"
	ConditionNeedsRepair AssetCondition = "NEEDS_REPAIR"
	ConditionObsolete    AssetCondition = "OBSOLETE"
)

// CodePattern is the only accepted shape for asset codes: uppercase letters,
// digits and dashes. Codes are immutable after creation.
var CodePattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

type Asset struct {
	ID           string         `bson:"_id,omitempty" json:"id"`
	Code         string         `bson:"code" json:"code"`
	Name         string         `bson:"name" json:"name"`
	TypeID       string         `bson:"typeId" json:"typeId"`
	DepartmentID string         `bson:"departmentId,omitempty" json:"departmentId,omitempty"`
	AssignedTo   string         `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	PurchaseDate time.Time      `bson:"purchaseDate" json:"purchaseDate"`
	Value        float64        `bson:"value" json:"value"`
	Status       AssetStatus    `bson:"status" json:"status"`
	Condition    AssetCondition `bson:"condition,omitempty" json:"condition,omitempty"`
	Image        string         `bson:"image,omitempty" json:"image,omitempty"`
	Description  string         `bson:"description,omitempty" json:"description,omitempty"`
	CreatedBy    string         `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

func (s AssetStatus) Valid() bool {
	switch s {
	case StatusInStock, StatusInUse, StatusMaintenance, StatusRetired:
		return true
	}
	return false
}

func (c AssetCondition) Valid() bool {
	switch c {
	case ConditionGood, ConditionNeedsRepair, ConditionObsolete:
		return true
	}
	return false
}
