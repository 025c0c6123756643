package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"vendra_back_end/internal/models"
)

// Types d'événements du bus temps réel (discriminant "type" sur le fil)
const (
	TypeOrderCreated       = "order_created"
	TypeOrderStatusChanged = "order_status_changed"
	TypeOrderDeleted       = "order_deleted"
)

// Event est l'union fermée des événements publiables sur le bus.
// La méthode non exportée empêche toute implémentation hors de ce package :
// les abonnés peuvent donc faire un switch exhaustif sur les trois variantes.
type Event interface {
	eventType() string
}

// CustomerSummary identifie le client propriétaire dans un snapshot
type CustomerSummary struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// LineSnapshot est une ligne de commande entièrement résolue
type LineSnapshot struct {
	ID             string  `json:"id"`
	Kind           string  `json:"kind"`
	ProductID      string  `json:"productId,omitempty"`
	ProductName    string  `json:"productName,omitempty"`
	BoxTitle       string  `json:"boxTitle,omitempty"`
	BoxDescription string  `json:"boxDescription,omitempty"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
}

// OrderSnapshot est la commande complète telle que diffusée : les abonnés
// ne doivent jamais avoir besoin d'un fetch supplémentaire pour l'afficher
type OrderSnapshot struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	TotalAmount     float64         `json:"totalAmount"`
	DeliveryAddress string          `json:"deliveryAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus"`
	Comment         string          `json:"comment,omitempty"`
	Customer        CustomerSummary `json:"customer"`
	Lines           []LineSnapshot  `json:"lines"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewOrderSnapshot construit le snapshot diffusable d'une commande.
// customer peut être nil si le profil n'a pas pu être résolu.
func NewOrderSnapshot(order *models.Order, customer *models.User) OrderSnapshot {
	snapshot := OrderSnapshot{
		ID:              order.ID.String(),
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount,
		DeliveryAddress: order.DeliveryAddress,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		Comment:         order.Comment,
		Customer:        CustomerSummary{ID: order.UserID},
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if customer != nil {
		snapshot.Customer.Email = customer.Email
		snapshot.Customer.Name = customer.Name
	}
	snapshot.Lines = make([]LineSnapshot, 0, len(order.Lines))
	for _, line := range order.Lines {
		ls := LineSnapshot{
			ID:             line.ID.String(),
			Kind:           string(line.Kind),
			ProductName:    line.ProductName,
			BoxTitle:       line.BoxTitle,
			BoxDescription: line.BoxDescription,
			Quantity:       line.Quantity,
			Price:          line.Price,
		}
		if line.Kind == models.LineProduct {
			ls.ProductID = line.ProductID.String()
		}
		snapshot.Lines = append(snapshot.Lines, ls)
	}
	return snapshot
}

// OrderCreated est diffusé aux opérateurs après le commit d'une nouvelle commande
type OrderCreated struct {
	Order OrderSnapshot `json:"order"`
}

func (OrderCreated) eventType() string { return TypeOrderCreated }

// OrderStatusChanged est diffusé aux opérateurs et au client propriétaire
type OrderStatusChanged struct {
	OrderID   string        `json:"orderId"`
	Status    string        `json:"status"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Order     OrderSnapshot `json:"order"`
}

func (OrderStatusChanged) eventType() string { return TypeOrderStatusChanged }

// OrderDeleted est diffusé aux opérateurs après un soft delete
type OrderDeleted struct {
	OrderID string `json:"orderId"`
}

func (OrderDeleted) eventType() string { return TypeOrderDeleted }

// Encode sérialise un événement avec son discriminant de type
func Encode(ev Event) ([]byte, error) {
	switch e := ev.(type) {
	case OrderCreated:
		return json.Marshal(struct {
			Type string `json:"type"`
			OrderCreated
		}{e.eventType(), e})
	case OrderStatusChanged:
		return json.Marshal(struct {
			Type string `json:"type"`
			OrderStatusChanged
		}{e.eventType(), e})
	case OrderDeleted:
		return json.Marshal(struct {
			Type string `json:"type"`
			OrderDeleted
		}{e.eventType(), e})
	default:
		return nil, fmt.Errorf("type d'événement inconnu: %T", ev)
	}
}

// Decode reconstruit l'événement typé depuis une trame du fil
func Decode(data []byte) (Event, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}

	switch envelope.Type {
	case TypeOrderCreated:
		var ev OrderCreated
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case TypeOrderStatusChanged:
		var ev OrderStatusChanged
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	case TypeOrderDeleted:
		var ev OrderDeleted
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil
	default:
		return nil, fmt.Errorf("type d'événement inconnu: %q", envelope.Type)
	}
}
