package service

import (
	"context"
	"log"
	"time"

	"vendra_back_end/internal/models"
	"vendra_back_end/internal/store"
	"vendra_back_end/internal/ws"

	"github.com/gocql/gocql"
)

// Graphe des transitions autorisées. Tout autre couple (courant, demandé)
// est rejeté, y compris les sauts par-dessus un état intermédiaire.
var allowedTransitions = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.StatusPending: {
		models.StatusProcessing: true,
		models.StatusCancelled:  true,
	},
	models.StatusProcessing: {
		models.StatusShipped: true,
	},
	models.StatusShipped: {
		models.StatusDelivered: true,
	},
	// delivered et cancelled sont terminaux
}

// StateMachine applique les transitions de statut et le soft delete.
// Seul ce composant mute le champ status.
type StateMachine struct {
	orders    store.OrderStore
	users     store.UserStore
	ledger    *NotificationLedger
	bus       EventBus
	indexer   Indexer         // optionnel
	sendEmail StatusEmailFunc // optionnel
}

func NewStateMachine(orders store.OrderStore, users store.UserStore, ledger *NotificationLedger, bus EventBus) *StateMachine {
	return &StateMachine{
		orders: orders,
		users:  users,
		ledger: ledger,
		bus:    bus,
	}
}

func (m *StateMachine) WithIndexer(idx Indexer) *StateMachine {
	m.indexer = idx
	return m
}

func (m *StateMachine) WithEmail(fn StatusEmailFunc) *StateMachine {
	m.sendEmail = fn
	return m
}

// Transition fait passer la commande au statut demandé si celui-ci est le
// successeur immédiat du statut courant et si l'acteur est un opérateur.
// Les clients ne mutent jamais le statut directement.
func (m *StateMachine) Transition(ctx context.Context, orderID gocql.UUID, target models.OrderStatus, actorRole string) (*models.Order, error) {
	if actorRole != models.RoleOperator {
		return nil, ErrNotOperator
	}
	if !target.IsValid() {
		return nil, ErrInvalidTransition
	}

	order, err := m.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DeletedAt != nil {
		return nil, store.ErrOrderNotFound
	}

	if !allowedTransitions[order.Status][target] {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	previous := order.Status
	applied, err := m.orders.UpdateStatus(ctx, orderID, previous, target, now)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Une transition concurrente a gagné la course
		return nil, ErrInvalidTransition
	}

	order.Status = target
	order.UpdatedAt = now

	// Registre durable d'abord, publication temps réel ensuite : un échec de
	// push n'annule jamais la transition déjà commitée
	category, message := statusNotification(target)
	if err := m.ledger.Record(ctx, order.UserID, order.ID, category, message); err != nil {
		log.Printf("⚠️ Échec écriture notification pour la commande %s: %v", order.ID, err)
	}

	snapshot := buildSnapshot(ctx, m.users, order)
	m.bus.Publish(ws.OrderStatusChanged{
		OrderID:   order.ID.String(),
		Status:    string(target),
		UpdatedAt: now,
		Order:     snapshot,
	})

	if m.indexer != nil {
		m.indexer.IndexOrder(snapshot)
	}

	if m.sendEmail != nil && snapshot.Customer.Email != "" {
		m.sendEmail(*order, snapshot.Customer.Email, target)
	}

	log.Printf("✅ Commande %s: %s → %s", order.ID, previous, target)
	return order, nil
}

// Delete pose le marqueur de suppression. Autorisé uniquement depuis un
// statut terminal ; la ligne n'est jamais supprimée physiquement (audit).
func (m *StateMachine) Delete(ctx context.Context, orderID gocql.UUID, actorRole string) (*models.Order, error) {
	if actorRole != models.RoleOperator {
		return nil, ErrNotOperator
	}

	order, err := m.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DeletedAt != nil {
		return nil, store.ErrOrderNotFound
	}

	if !order.Status.IsTerminal() {
		return nil, ErrOrderNotTerminal
	}

	now := time.Now()
	if err := m.orders.SoftDelete(ctx, orderID, now); err != nil {
		return nil, err
	}
	order.DeletedAt = &now
	order.UpdatedAt = now

	m.bus.Publish(ws.OrderDeleted{OrderID: order.ID.String()})

	log.Printf("🗑️ Commande %s supprimée (soft delete)", order.ID)
	return order, nil
}
