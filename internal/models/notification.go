package models

import (
	"time"

	"github.com/gocql/gocql"
)

// NotificationCategory classe les notifications client
type NotificationCategory string

const (
	CategoryStatusChanged NotificationCategory = "status_changed"
	CategoryOrderAccepted NotificationCategory = "order_accepted"
	CategoryOrderRejected NotificationCategory = "order_rejected"
)

// Notification est l'enregistrement durable d'un changement visible client.
// Append-only : seul le flag is_read est modifiable après création.
type Notification struct {
	ID        gocql.UUID           `json:"notification_id"`
	UserID    string               `json:"user_id"`
	OrderID   gocql.UUID           `json:"order_id"`
	Category  NotificationCategory `json:"category"`
	Message   string               `json:"message"`
	IsRead    bool                 `json:"is_read"`
	CreatedAt time.Time            `json:"created_at"`
}
