package models

import "time"

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationSuccess NotificationType = "success"
)

type Notification struct {
	ID        string           `bson:"_id,omitempty" json:"id"`
	UserID    string           `bson:"userId" json:"userId"`
	Title     string           `bson:"title" json:"title"`
	Message   string           `bson:"message" json:"message"`
	Type      NotificationType `bson:"type" json:"type"`
	IsRead    bool             `bson:"isRead" json:"isRead"`
	AssetID   string           `bson:"assetId,omitempty" json:"assetId,omitempty"`
	CreatedAt time.Time        `bson:"createdAt" json:"createdAt"`
}
