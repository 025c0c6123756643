package models

import (
	"time"

	"github.com/gocql/gocql"
)

// OrderStatus représente le cycle de vie d'une commande
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// IsTerminal indique si aucune transition n'est possible depuis ce statut
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// IsValid vérifie que le statut fait partie de l'énumération
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Méthodes de paiement acceptées
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// Statuts de paiement
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// LineKind distingue une ligne produit d'une ligne box
type LineKind string

const (
	LineProduct LineKind = "product"
	LineBox     LineKind = "box"
)

// Order est la commande canonique stockée dans ks_orders.orders
type Order struct {
	ID              gocql.UUID  `json:"order_id"`
	UserID          string      `json:"user_id"`
	Status          OrderStatus `json:"status"`
	PaymentMethod   string      `json:"payment_method"`
	PaymentStatus   string      `json:"payment_status"`
	TotalAmount     float64     `json:"total_amount"`
	DeliveryAddress string      `json:"delivery_address"`
	Comment         string      `json:"comment,omitempty"`
	Lines           []OrderLine `json:"lines"`
	DeletedAt       *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderLine est une ligne de commande : soit un produit, soit une box figée.
// Le prix est capturé une seule fois à la création et n'est jamais recalculé,
// même si le prix catalogue change ensuite.
type OrderLine struct {
	ID             gocql.UUID   `json:"line_id"`
	Kind           LineKind     `json:"kind"`
	ProductID      gocql.UUID   `json:"product_id,omitempty"`
	ProductName    string       `json:"product_name,omitempty"`
	BoxTitle       string       `json:"box_title,omitempty"`
	BoxDescription string       `json:"box_description,omitempty"`
	BoxProductIDs  []gocql.UUID `json:"box_product_ids,omitempty"`
	Quantity       int          `json:"quantity"`
	Price          float64      `json:"price"`
}
