package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"vendra_back_end/internal/models"
	"vendra_back_end/internal/store"
	"vendra_back_end/internal/ws"

	"github.com/gocql/gocql"
)

// fakeBus capture les événements publiés, dans l'ordre
type fakeBus struct {
	mu     sync.Mutex
	events []ws.Event
}

func (b *fakeBus) Publish(ev ws.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *fakeBus) all() []ws.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ws.Event(nil), b.events...)
}

func newIntakeFixture() (*Intake, *store.MemoryStore, *fakeBus) {
	s := store.NewMemoryStore()
	bus := &fakeBus{}
	intake := NewIntake(s, s, s, NewNotificationLedger(s), bus)
	return intake, s, bus
}

func TestCreateOrderEmptyLines(t *testing.T) {
	intake, _, _ := newIntakeFixture()

	_, err := intake.CreateOrder(context.Background(), "u1", nil, "Rue Haute 1, Bruxelles", models.PaymentCard, "")
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("err = %v, attendu ErrEmptyOrder", err)
	}
}

func TestCreateOrderInvalidPaymentMethod(t *testing.T) {
	intake, s, _ := newIntakeFixture()
	id := gocql.TimeUUID()
	s.PutProduct(models.Product{ID: id, Name: "Café", Price: 8, Stock: 5})

	lines := []LineInput{{Kind: models.LineProduct, ProductID: id, Quantity: 1}}
	_, err := intake.CreateOrder(context.Background(), "u1", lines, "Rue Haute 1", "cheque", "")
	if !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("err = %v, attendu ErrInvalidPaymentMethod", err)
	}
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	intake, _, bus := newIntakeFixture()

	lines := []LineInput{{Kind: models.LineProduct, ProductID: gocql.TimeUUID(), Quantity: 1}}
	_, err := intake.CreateOrder(context.Background(), "u1", lines, "Rue Haute 1", models.PaymentCash, "")
	if !errors.Is(err, store.ErrProductNotFound) {
		t.Fatalf("err = %v, attendu ErrProductNotFound", err)
	}
	if len(bus.all()) != 0 {
		t.Fatal("aucun événement ne doit être publié pour une commande refusée")
	}
}

// Une ligne passe, la suivante échoue sur le stock : la réservation déjà
// acquise doit être restituée intégralement.
func TestCreateOrderRollbackOnPartialFailure(t *testing.T) {
	intake, s, bus := newIntakeFixture()
	ctx := context.Background()

	okID := gocql.TimeUUID()
	shortID := gocql.TimeUUID()
	s.PutProduct(models.Product{ID: okID, Name: "Café", Price: 8, Stock: 10})
	s.PutProduct(models.Product{ID: shortID, Name: "Thé", Price: 5, Stock: 1})

	lines := []LineInput{
		{Kind: models.LineProduct, ProductID: okID, Quantity: 4},
		{Kind: models.LineProduct, ProductID: shortID, Quantity: 2},
	}
	_, err := intake.CreateOrder(ctx, "u1", lines, "Rue Haute 1", models.PaymentCard, "")
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("err = %v, attendu ErrInsufficientStock", err)
	}

	p, _ := s.GetProduct(ctx, okID)
	if p.Stock != 10 {
		t.Fatalf("stock après rollback = %d, attendu 10", p.Stock)
	}
	if len(bus.all()) != 0 {
		t.Fatal("aucun événement ne doit être publié après un rollback")
	}
	if orders, _ := s.ListOrders(ctx); len(orders) != 0 {
		t.Fatal("aucune commande ne doit être persistée après un rollback")
	}
}

func TestCreateOrderInvalidQuantity(t *testing.T) {
	intake, s, _ := newIntakeFixture()
	id := gocql.TimeUUID()
	s.PutProduct(models.Product{ID: id, Name: "Café", Price: 8, Stock: 5})

	lines := []LineInput{{Kind: models.LineProduct, ProductID: id, Quantity: 0}}
	_, err := intake.CreateOrder(context.Background(), "u1", lines, "Rue Haute 1", models.PaymentCash, "")
	if !errors.Is(err, ErrInvalidLine) {
		t.Fatalf("err = %v, attendu ErrInvalidLine", err)
	}
}

// Le prix d'une ligne produit vient du catalogue, jamais de la saisie client
func TestCreateOrderPriceFromCatalog(t *testing.T) {
	intake, s, _ := newIntakeFixture()
	ctx := context.Background()
	id := gocql.TimeUUID()
	s.PutProduct(models.Product{ID: id, Name: "Café", Price: 8.5, Stock: 10})

	lines := []LineInput{{Kind: models.LineProduct, ProductID: id, Quantity: 2, Price: 0.01}}
	order, err := intake.CreateOrder(ctx, "u1", lines, "Rue Haute 1", models.PaymentCard, "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.Lines[0].Price != 8.5 {
		t.Fatalf("prix ligne = %.2f, attendu 8.50 (catalogue)", order.Lines[0].Price)
	}
	if order.TotalAmount != 17 {
		t.Fatalf("total = %.2f, attendu 17.00", order.TotalAmount)
	}
	if order.Status != models.StatusPending {
		t.Fatalf("status = %s, attendu pending", order.Status)
	}

	p, _ := s.GetProduct(ctx, id)
	if p.Stock != 8 {
		t.Fatalf("stock = %d, attendu 8", p.Stock)
	}
}

// Une box est un snapshot figé : prix soumis conservé, aucun impact stock
func TestCreateOrderBoxLine(t *testing.T) {
	intake, s, _ := newIntakeFixture()
	ctx := context.Background()
	inner := gocql.TimeUUID()
	s.PutProduct(models.Product{ID: inner, Name: "Café", Price: 8, Stock: 5})

	lines := []LineInput{{
		Kind:          models.LineBox,
		Quantity:      1,
		Price:         25,
		BoxTitle:      "Box découverte",
		BoxProductIDs: []gocql.UUID{inner},
	}}
	order, err := intake.CreateOrder(ctx, "u1", lines, "Rue Haute 1", models.PaymentCash, "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.TotalAmount != 25 {
		t.Fatalf("total = %.2f, attendu 25.00", order.TotalAmount)
	}

	p, _ := s.GetProduct(ctx, inner)
	if p.Stock != 5 {
		t.Fatalf("une box ne réserve pas de stock, stock = %d", p.Stock)
	}
}

// ctxBoundProducts refuse toute opération dont le contexte est annulé et
// simule un client qui se déconnecte juste après la première réservation
type ctxBoundProducts struct {
	inner      store.ProductStore
	disconnect context.CancelFunc
}

func (p *ctxBoundProducts) GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.inner.GetProduct(ctx, id)
}

func (p *ctxBoundProducts) ListProducts(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.inner.ListProducts(ctx)
}

func (p *ctxBoundProducts) Reserve(ctx context.Context, id gocql.UUID, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := p.inner.Reserve(ctx, id, quantity)
	if p.disconnect != nil {
		p.disconnect()
		p.disconnect = nil
	}
	return err
}

func (p *ctxBoundProducts) Release(ctx context.Context, id gocql.UUID, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.inner.Release(ctx, id, quantity)
}

// Un client qui abandonne sa requête en pleine prise de commande ne doit
// jamais laisser une réservation pendante : la suite de la séquence et la
// compensation aboutissent même une fois le contexte de la requête annulé.
func TestCreateOrderRollbackSurvivesClientDisconnect(t *testing.T) {
	s := store.NewMemoryStore()
	bus := &fakeBus{}

	okID := gocql.TimeUUID()
	shortID := gocql.TimeUUID()
	s.PutProduct(models.Product{ID: okID, Name: "Café", Price: 8, Stock: 5})
	s.PutProduct(models.Product{ID: shortID, Name: "Thé", Price: 5, Stock: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	products := &ctxBoundProducts{inner: s, disconnect: cancel}
	intake := NewIntake(products, s, s, NewNotificationLedger(s), bus)

	lines := []LineInput{
		{Kind: models.LineProduct, ProductID: okID, Quantity: 3},
		{Kind: models.LineProduct, ProductID: shortID, Quantity: 2},
	}
	_, err := intake.CreateOrder(ctx, "u1", lines, "Rue Haute 1", models.PaymentCard, "")
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("err = %v, attendu ErrInsufficientStock (jamais context.Canceled)", err)
	}

	p, _ := s.GetProduct(context.Background(), okID)
	if p.Stock != 5 {
		t.Fatalf("stock après rollback = %d, attendu 5", p.Stock)
	}
}

func TestCreateOrderSendsConfirmationEmail(t *testing.T) {
	s := store.NewMemoryStore()
	bus := &fakeBus{}
	s.PutUser(models.User{ID: "u1", Email: "claire@vendra.be", Name: "Claire"})
	id := gocql.TimeUUID()
	s.PutProduct(models.Product{ID: id, Name: "Café", Price: 8, Stock: 5})

	var sentTo string
	var sentStatus models.OrderStatus
	intake := NewIntake(s, s, s, NewNotificationLedger(s), bus).
		WithEmail(func(o models.Order, toEmail string, status models.OrderStatus) {
			sentTo = toEmail
			sentStatus = status
		})

	lines := []LineInput{{Kind: models.LineProduct, ProductID: id, Quantity: 1}}
	if _, err := intake.CreateOrder(context.Background(), "u1", lines, "Rue Haute 1", models.PaymentCash, ""); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if sentTo != "claire@vendra.be" {
		t.Fatalf("email envoyé à %q, attendu claire@vendra.be", sentTo)
	}
	if sentStatus != models.StatusPending {
		t.Fatalf("statut email = %s, attendu pending", sentStatus)
	}
}

func TestCreateOrderPublishesAfterCommit(t *testing.T) {
	intake, s, bus := newIntakeFixture()
	ctx := context.Background()
	id := gocql.TimeUUID()
	s.PutProduct(models.Product{ID: id, Name: "Café", Price: 8, Stock: 10})
	s.PutUser(models.User{ID: "u1", Email: "claire@vendra.be", Name: "Claire", Role: models.RoleCustomer})

	lines := []LineInput{{Kind: models.LineProduct, ProductID: id, Quantity: 1}}
	order, err := intake.CreateOrder(ctx, "u1", lines, "Rue Haute 1", models.PaymentCard, "sonnez fort")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	events := bus.all()
	if len(events) != 1 {
		t.Fatalf("événements publiés = %d, attendu 1", len(events))
	}
	created, ok := events[0].(ws.OrderCreated)
	if !ok {
		t.Fatalf("événement = %T, attendu OrderCreated", events[0])
	}
	if created.Order.ID != order.ID.String() {
		t.Fatalf("snapshot id = %s, attendu %s", created.Order.ID, order.ID)
	}
	if created.Order.Customer.Name != "Claire" {
		t.Fatalf("le snapshot doit porter l'identité du client, name = %q", created.Order.Customer.Name)
	}

	// Le registre de notifications est écrit avant la publication
	notifs, _ := s.ListNotificationsFor(ctx, "u1")
	if len(notifs) != 1 {
		t.Fatalf("notifications = %d, attendu 1", len(notifs))
	}
	if notifs[0].OrderID != order.ID {
		t.Fatal("la notification doit référencer la commande créée")
	}
}
