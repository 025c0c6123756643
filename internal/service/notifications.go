package service

import (
	"context"
	"time"

	"vendra_back_end/internal/models"
	"vendra_back_end/internal/store"

	"github.com/gocql/gocql"
)

// NotificationLedger est le registre durable des changements visibles client.
// Chaque transition de statut y écrit AVANT la publication temps réel : un
// client déconnecté reconstruit l'historique ici à la reconnexion.
type NotificationLedger struct {
	store store.NotificationStore
}

func NewNotificationLedger(s store.NotificationStore) *NotificationLedger {
	return &NotificationLedger{store: s}
}

// Record ajoute une entrée au registre (append-only)
func (l *NotificationLedger) Record(ctx context.Context, userID string, orderID gocql.UUID, category models.NotificationCategory, message string) error {
	n := &models.Notification{
		ID:        gocql.TimeUUID(),
		UserID:    userID,
		OrderID:   orderID,
		Category:  category,
		Message:   message,
		IsRead:    false,
		CreatedAt: time.Now(),
	}
	return l.store.InsertNotification(ctx, n)
}

// ListFor retourne les notifications d'un client, plus récentes d'abord
func (l *NotificationLedger) ListFor(ctx context.Context, userID string) ([]models.Notification, error) {
	return l.store.ListNotificationsFor(ctx, userID)
}

// MarkRead passe le flag is_read, après vérification d'appartenance
func (l *NotificationLedger) MarkRead(ctx context.Context, id gocql.UUID, userID string) error {
	return l.store.MarkNotificationRead(ctx, id, userID)
}

// statusNotification associe à chaque statut la catégorie et le message client
func statusNotification(status models.OrderStatus) (models.NotificationCategory, string) {
	switch status {
	case models.StatusProcessing:
		return models.CategoryOrderAccepted, "Votre commande a été acceptée et est en préparation"
	case models.StatusShipped:
		return models.CategoryStatusChanged, "Votre commande a été expédiée"
	case models.StatusDelivered:
		return models.CategoryStatusChanged, "Votre commande a été livrée"
	case models.StatusCancelled:
		return models.CategoryOrderRejected, "Votre commande a été annulée"
	default:
		return models.CategoryStatusChanged, "Le statut de votre commande a été mis à jour"
	}
}
