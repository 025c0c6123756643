package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"vendra_back_end/internal/models"
	"vendra_back_end/internal/store"
	"vendra_back_end/internal/ws"

	"github.com/gocql/gocql"
)

// LineInput est une ligne soumise par le client au moment de la commande
type LineInput struct {
	Kind           models.LineKind
	ProductID      gocql.UUID
	Quantity       int
	Price          float64 // utilisé uniquement pour les box (snapshot figé côté présentation)
	BoxTitle       string
	BoxDescription string
	BoxProductIDs  []gocql.UUID
}

// Intake valide un panier, réserve le stock et persiste la commande.
//
// Politique de prix : pour les lignes produit, le prix est re-dérivé du
// catalogue au moment de la prise de commande (jamais repris de la saisie
// client). Pour les box, le prix soumis est persisté tel quel : une box est
// un snapshot matérialisé côté présentation, sans contrôle de stock propre.
type Intake struct {
	products  store.ProductStore
	orders    store.OrderStore
	users     store.UserStore
	ledger    *NotificationLedger
	bus       EventBus
	indexer   Indexer         // optionnel
	sendEmail StatusEmailFunc // optionnel
}

func NewIntake(products store.ProductStore, orders store.OrderStore, users store.UserStore, ledger *NotificationLedger, bus EventBus) *Intake {
	return &Intake{
		products: products,
		orders:   orders,
		users:    users,
		ledger:   ledger,
		bus:      bus,
	}
}

// WithIndexer active l'indexation de recherche
func (s *Intake) WithIndexer(idx Indexer) *Intake {
	s.indexer = idx
	return s
}

// WithEmail active l'email de confirmation
func (s *Intake) WithEmail(fn StatusEmailFunc) *Intake {
	s.sendEmail = fn
	return s
}

type reservation struct {
	productID gocql.UUID
	quantity  int
}

// CreateOrder exécute la prise de commande. Tout échec après une réservation
// restitue chaque quantité réservée avant de retourner : une lecture du stock
// après un échec montre la valeur d'avant la tentative.
func (s *Intake) CreateOrder(ctx context.Context, customerID string, lines []LineInput, deliveryAddress, paymentMethod, comment string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if paymentMethod != models.PaymentCash && paymentMethod != models.PaymentCard {
		return nil, ErrInvalidPaymentMethod
	}

	// La séquence réserve/persiste/compense n'est pas annulable en vol : un
	// client qui abandonne sa requête laisse la création aller au bout ou se
	// compenser, jamais une réservation pendante.
	ctx = context.WithoutCancel(ctx)

	var reserved []reservation
	rollback := func() {
		for _, r := range reserved {
			if err := s.products.Release(ctx, r.productID, r.quantity); err != nil {
				log.Printf("❌ Échec restitution stock produit %s: %v", r.productID, err)
			}
		}
	}

	now := time.Now()
	order := &models.Order{
		ID:              gocql.TimeUUID(),
		UserID:          customerID,
		Status:          models.StatusPending,
		PaymentMethod:   paymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
		DeliveryAddress: deliveryAddress,
		Comment:         comment,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for _, input := range lines {
		if input.Quantity <= 0 {
			rollback()
			return nil, ErrInvalidLine
		}

		switch input.Kind {
		case models.LineProduct:
			product, err := s.products.GetProduct(ctx, input.ProductID)
			if err != nil {
				rollback()
				return nil, err
			}

			if err := s.products.Reserve(ctx, input.ProductID, input.Quantity); err != nil {
				rollback()
				return nil, err
			}
			reserved = append(reserved, reservation{input.ProductID, input.Quantity})

			order.Lines = append(order.Lines, models.OrderLine{
				ID:          gocql.TimeUUID(),
				Kind:        models.LineProduct,
				ProductID:   input.ProductID,
				ProductName: product.Name,
				Quantity:    input.Quantity,
				Price:       product.Price,
			})
			order.TotalAmount += product.Price * float64(input.Quantity)

		case models.LineBox:
			// Pas de contrôle de stock sur la box elle-même : ses produits
			// constituants ont été validés côté présentation
			order.Lines = append(order.Lines, models.OrderLine{
				ID:             gocql.TimeUUID(),
				Kind:           models.LineBox,
				BoxTitle:       input.BoxTitle,
				BoxDescription: input.BoxDescription,
				BoxProductIDs:  input.BoxProductIDs,
				Quantity:       input.Quantity,
				Price:          input.Price,
			})
			order.TotalAmount += input.Price * float64(input.Quantity)

		default:
			rollback()
			return nil, ErrInvalidLine
		}
	}

	if err := s.orders.InsertOrder(ctx, order); err != nil {
		rollback()
		return nil, fmt.Errorf("persistance commande: %w", err)
	}

	// Après le commit, jamais avant : registre de notifications puis
	// publication temps réel. Un échec ici ne remet pas en cause la commande,
	// elle est déjà durable.
	if err := s.ledger.Record(ctx, customerID, order.ID, models.CategoryStatusChanged,
		"Votre commande a été soumise et attend validation"); err != nil {
		log.Printf("⚠️ Échec écriture notification pour la commande %s: %v", order.ID, err)
	}

	snapshot := buildSnapshot(ctx, s.users, order)
	s.bus.Publish(ws.OrderCreated{Order: snapshot})

	if s.indexer != nil {
		s.indexer.IndexOrder(snapshot)
	}

	if s.sendEmail != nil && snapshot.Customer.Email != "" {
		s.sendEmail(*order, snapshot.Customer.Email, order.Status)
	}

	log.Printf("✅ Commande %s créée pour %s (%.2f€, %d lignes)", order.ID, customerID, order.TotalAmount, len(order.Lines))
	return order, nil
}
