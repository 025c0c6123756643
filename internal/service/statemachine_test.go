package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vendra_back_end/internal/models"
	"vendra_back_end/internal/store"
	"vendra_back_end/internal/ws"

	"github.com/gocql/gocql"
)

func newMachineFixture() (*StateMachine, *store.MemoryStore, *fakeBus) {
	s := store.NewMemoryStore()
	bus := &fakeBus{}
	machine := NewStateMachine(s, s, NewNotificationLedger(s), bus)
	return machine, s, bus
}

func seedOrder(t *testing.T, s *store.MemoryStore, status models.OrderStatus) gocql.UUID {
	t.Helper()
	order := models.Order{
		ID:        gocql.TimeUUID(),
		UserID:    "u1",
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.InsertOrder(context.Background(), &order); err != nil {
		t.Fatalf("InsertOrder: %v", err)
	}
	return order.ID
}

func TestTransitionHappyPath(t *testing.T) {
	machine, s, bus := newMachineFixture()
	ctx := context.Background()
	id := seedOrder(t, s, models.StatusPending)

	for _, target := range []models.OrderStatus{models.StatusProcessing, models.StatusShipped, models.StatusDelivered} {
		order, err := machine.Transition(ctx, id, target, models.RoleOperator)
		if err != nil {
			t.Fatalf("Transition vers %s: %v", target, err)
		}
		if order.Status != target {
			t.Fatalf("status = %s, attendu %s", order.Status, target)
		}
	}

	events := bus.all()
	if len(events) != 3 {
		t.Fatalf("événements = %d, attendu 3", len(events))
	}
	last, ok := events[2].(ws.OrderStatusChanged)
	if !ok {
		t.Fatalf("événement = %T, attendu OrderStatusChanged", events[2])
	}
	if last.Status != string(models.StatusDelivered) {
		t.Fatalf("dernier statut publié = %s, attendu delivered", last.Status)
	}
}

func TestTransitionCancelFromPending(t *testing.T) {
	machine, s, _ := newMachineFixture()
	id := seedOrder(t, s, models.StatusPending)

	order, err := machine.Transition(context.Background(), id, models.StatusCancelled, models.RoleOperator)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if order.Status != models.StatusCancelled {
		t.Fatalf("status = %s, attendu cancelled", order.Status)
	}
}

// Toute paire non adjacente du graphe est rejetée, y compris les retours en
// arrière et les sauts par-dessus un état.
func TestTransitionRejectsNonAdjacent(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
	}{
		{models.StatusPending, models.StatusShipped},
		{models.StatusPending, models.StatusDelivered},
		{models.StatusProcessing, models.StatusPending},
		{models.StatusProcessing, models.StatusDelivered},
		{models.StatusProcessing, models.StatusCancelled},
		{models.StatusShipped, models.StatusProcessing},
		{models.StatusShipped, models.StatusCancelled},
		{models.StatusDelivered, models.StatusProcessing},
		{models.StatusDelivered, models.StatusShipped},
		{models.StatusCancelled, models.StatusPending},
		{models.StatusCancelled, models.StatusProcessing},
	}

	for _, tc := range cases {
		machine, s, bus := newMachineFixture()
		id := seedOrder(t, s, tc.from)

		_, err := machine.Transition(context.Background(), id, tc.to, models.RoleOperator)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("%s → %s: err = %v, attendu ErrInvalidTransition", tc.from, tc.to, err)
		}

		got, _ := s.GetOrder(context.Background(), id)
		if got.Status != tc.from {
			t.Fatalf("%s → %s: le statut ne doit pas changer, status = %s", tc.from, tc.to, got.Status)
		}
		if len(bus.all()) != 0 {
			t.Fatalf("%s → %s: aucun événement ne doit être publié", tc.from, tc.to)
		}
	}
}

func TestTransitionRequiresOperator(t *testing.T) {
	machine, s, _ := newMachineFixture()
	id := seedOrder(t, s, models.StatusPending)

	_, err := machine.Transition(context.Background(), id, models.StatusProcessing, models.RoleCustomer)
	if !errors.Is(err, ErrNotOperator) {
		t.Fatalf("err = %v, attendu ErrNotOperator", err)
	}
}

func TestTransitionUnknownOrder(t *testing.T) {
	machine, _, _ := newMachineFixture()

	_, err := machine.Transition(context.Background(), gocql.TimeUUID(), models.StatusProcessing, models.RoleOperator)
	if !errors.Is(err, store.ErrOrderNotFound) {
		t.Fatalf("err = %v, attendu ErrOrderNotFound", err)
	}
}

func TestTransitionDeletedOrder(t *testing.T) {
	machine, s, _ := newMachineFixture()
	ctx := context.Background()
	id := seedOrder(t, s, models.StatusDelivered)
	if err := s.SoftDelete(ctx, id, time.Now()); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	_, err := machine.Transition(ctx, id, models.StatusProcessing, models.RoleOperator)
	if !errors.Is(err, store.ErrOrderNotFound) {
		t.Fatalf("une commande supprimée est invisible, err = %v", err)
	}
}

func TestTransitionRecordsNotification(t *testing.T) {
	machine, s, _ := newMachineFixture()
	ctx := context.Background()
	id := seedOrder(t, s, models.StatusPending)

	if _, err := machine.Transition(ctx, id, models.StatusProcessing, models.RoleOperator); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	notifs, _ := s.ListNotificationsFor(ctx, "u1")
	if len(notifs) != 1 {
		t.Fatalf("notifications = %d, attendu 1", len(notifs))
	}
	if notifs[0].Category != models.CategoryOrderAccepted {
		t.Fatalf("catégorie = %s, attendu order_accepted", notifs[0].Category)
	}
}

func TestTransitionToCancelledRecordsRejection(t *testing.T) {
	machine, s, _ := newMachineFixture()
	ctx := context.Background()
	id := seedOrder(t, s, models.StatusPending)

	if _, err := machine.Transition(ctx, id, models.StatusCancelled, models.RoleOperator); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	notifs, _ := s.ListNotificationsFor(ctx, "u1")
	if notifs[0].Category != models.CategoryOrderRejected {
		t.Fatalf("catégorie = %s, attendu order_rejected", notifs[0].Category)
	}
}

func TestTransitionSendsEmail(t *testing.T) {
	machine, s, _ := newMachineFixture()
	ctx := context.Background()
	s.PutUser(models.User{ID: "u1", Email: "claire@vendra.be", Name: "Claire"})
	id := seedOrder(t, s, models.StatusPending)

	var sentTo string
	var sentStatus models.OrderStatus
	machine.WithEmail(func(o models.Order, toEmail string, status models.OrderStatus) {
		sentTo = toEmail
		sentStatus = status
	})

	if _, err := machine.Transition(ctx, id, models.StatusProcessing, models.RoleOperator); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if sentTo != "claire@vendra.be" {
		t.Fatalf("email envoyé à %q, attendu claire@vendra.be", sentTo)
	}
	if sentStatus != models.StatusProcessing {
		t.Fatalf("statut email = %s, attendu processing", sentStatus)
	}
}

func TestDeleteRequiresTerminalStatus(t *testing.T) {
	for _, status := range []models.OrderStatus{models.StatusPending, models.StatusProcessing, models.StatusShipped} {
		machine, s, _ := newMachineFixture()
		id := seedOrder(t, s, status)

		_, err := machine.Delete(context.Background(), id, models.RoleOperator)
		if !errors.Is(err, ErrOrderNotTerminal) {
			t.Fatalf("delete depuis %s: err = %v, attendu ErrOrderNotTerminal", status, err)
		}
	}
}

func TestDeleteTerminalOrder(t *testing.T) {
	machine, s, bus := newMachineFixture()
	ctx := context.Background()
	id := seedOrder(t, s, models.StatusDelivered)

	order, err := machine.Delete(ctx, id, models.RoleOperator)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if order.DeletedAt == nil {
		t.Fatal("deleted_at doit être posé")
	}

	events := bus.all()
	if len(events) != 1 {
		t.Fatalf("événements = %d, attendu 1", len(events))
	}
	deleted, ok := events[0].(ws.OrderDeleted)
	if !ok {
		t.Fatalf("événement = %T, attendu OrderDeleted", events[0])
	}
	if deleted.OrderID != id.String() {
		t.Fatalf("id publié = %s, attendu %s", deleted.OrderID, id)
	}

	// Un second delete voit une commande déjà supprimée
	if _, err := machine.Delete(ctx, id, models.RoleOperator); !errors.Is(err, store.ErrOrderNotFound) {
		t.Fatalf("second delete: err = %v, attendu ErrOrderNotFound", err)
	}
}

func TestDeleteRequiresOperator(t *testing.T) {
	machine, s, _ := newMachineFixture()
	id := seedOrder(t, s, models.StatusCancelled)

	_, err := machine.Delete(context.Background(), id, models.RoleCustomer)
	if !errors.Is(err, ErrNotOperator) {
		t.Fatalf("err = %v, attendu ErrNotOperator", err)
	}
}
