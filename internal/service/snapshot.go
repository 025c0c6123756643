package service

import (
	"context"

	"vendra_back_end/internal/models"
	"vendra_back_end/internal/store"
	"vendra_back_end/internal/ws"
)

// EventBus est le point de publication temps réel injecté dans les services.
// L'implémentation réelle est ws.Hub ; les tests branchent un enregistreur.
type EventBus interface {
	Publish(ev ws.Event)
}

// Indexer pousse un snapshot dans l'index de recherche, best effort
type Indexer interface {
	IndexOrder(snapshot ws.OrderSnapshot)
}

// StatusEmailFunc envoie l'email de changement de statut, best effort.
// nil désactive l'envoi (tests, SMTP non configuré).
type StatusEmailFunc func(order models.Order, toEmail string, status models.OrderStatus)

// buildSnapshot résout le profil client et construit le snapshot diffusable.
// Un profil introuvable n'est pas bloquant : le snapshot porte alors l'id seul.
func buildSnapshot(ctx context.Context, users store.UserStore, order *models.Order) ws.OrderSnapshot {
	var customer *models.User
	if users != nil {
		if u, err := users.GetUserByID(ctx, order.UserID); err == nil {
			customer = u
		}
	}
	return ws.NewOrderSnapshot(order, customer)
}
