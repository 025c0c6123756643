package store

import (
	"context"
	"errors"
	"time"

	"vendra_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Erreurs métier remontées par les stores. Les handlers les traduisent en 4xx,
// tout le reste est une erreur infrastructure (5xx).
var (
	ErrProductNotFound      = errors.New("produit introuvable")
	ErrInsufficientStock    = errors.New("stock insuffisant")
	ErrOrderNotFound        = errors.New("commande introuvable")
	ErrNotificationNotFound = errors.New("notification introuvable")
	ErrUserNotFound         = errors.New("utilisateur introuvable")
)

// ProductStore porte le catalogue et le registre de stock.
// Reserve/Release sont les seules opérations autorisées à toucher le stock.
type ProductStore interface {
	GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)

	// Reserve décrémente atomiquement le stock si suffisant (CAS avec retry).
	// Deux réservations simultanées sur le même produit se sérialisent :
	// la somme des réservations réussies ne dépasse jamais le stock disponible.
	Reserve(ctx context.Context, id gocql.UUID, quantity int) error

	// Release restitue une quantité réservée (compensation en cas d'échec aval).
	Release(ctx context.Context, id gocql.UUID, quantity int) error
}

// OrderStore persiste les commandes et leurs lignes
type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id gocql.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)

	// UpdateStatus passe la commande de `from` à `to` de façon conditionnelle.
	// applied=false si le statut courant n'est plus `from` (course perdue).
	UpdateStatus(ctx context.Context, id gocql.UUID, from, to models.OrderStatus, at time.Time) (bool, error)

	// SoftDelete pose le marqueur deleted_at, la ligne n'est jamais supprimée
	SoftDelete(ctx context.Context, id gocql.UUID, at time.Time) error
}

// NotificationStore est le registre durable des notifications client
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	ListNotificationsFor(ctx context.Context, userID string) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id gocql.UUID, userID string) error
}

// UserStore expose l'identité minimale nécessaire au login et aux snapshots
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
