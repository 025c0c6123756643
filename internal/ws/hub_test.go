package ws

import (
	"testing"
	"time"

	"vendra_back_end/internal/models"

	"github.com/gocql/gocql"
)

// newTestClient fabrique un client enregistré sans connexion réseau : seuls
// le rôle, la room et le canal d'envoi comptent pour le routage.
func newTestClient(hub *Hub, userID, role string) *Client {
	c := &Client{
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
		role:   role,
	}
	hub.register(c)
	return c
}

func drain(c *Client) [][]byte {
	var frames [][]byte
	for {
		select {
		case data := <-c.send:
			frames = append(frames, data)
		default:
			return frames
		}
	}
}

func statusChangedFor(userID string) OrderStatusChanged {
	order := &models.Order{
		ID:        gocql.TimeUUID(),
		UserID:    userID,
		Status:    models.StatusProcessing,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	return OrderStatusChanged{
		OrderID:   order.ID.String(),
		Status:    string(models.StatusProcessing),
		UpdatedAt: order.UpdatedAt,
		Order:     NewOrderSnapshot(order, &models.User{ID: userID}),
	}
}

func TestOperatorReceivesAllEvents(t *testing.T) {
	hub := NewHub()
	operator := newTestClient(hub, "op1", roleOperator)

	order := &models.Order{ID: gocql.TimeUUID(), UserID: "u1", Status: models.StatusPending}
	hub.Publish(OrderCreated{Order: NewOrderSnapshot(order, nil)})
	hub.Publish(statusChangedFor("u1"))
	hub.Publish(OrderDeleted{OrderID: order.ID.String()})

	if got := len(drain(operator)); got != 3 {
		t.Fatalf("trames opérateur = %d, attendu 3", got)
	}
}

func TestCustomerReceivesOnlyOwnStatusChanges(t *testing.T) {
	hub := NewHub()
	claire := newTestClient(hub, "u1", models.RoleCustomer)
	autre := newTestClient(hub, "u2", models.RoleCustomer)

	// order_created et order_deleted ne sortent jamais des opérateurs
	order := &models.Order{ID: gocql.TimeUUID(), UserID: "u1", Status: models.StatusPending}
	hub.Publish(OrderCreated{Order: NewOrderSnapshot(order, &models.User{ID: "u1"})})
	hub.Publish(OrderDeleted{OrderID: order.ID.String()})

	if got := len(drain(claire)); got != 0 {
		t.Fatalf("un client ne reçoit ni created ni deleted, trames = %d", got)
	}

	// Le changement de statut de u1 n'atteint que la room de u1
	hub.Publish(statusChangedFor("u1"))

	if got := len(drain(claire)); got != 1 {
		t.Fatalf("trames propriétaire = %d, attendu 1", got)
	}
	if got := len(drain(autre)); got != 0 {
		t.Fatalf("trames autre client = %d, attendu 0", got)
	}
}

func TestUnregisterClosesAndRemoves(t *testing.T) {
	hub := NewHub()
	claire := newTestClient(hub, "u1", models.RoleCustomer)

	hub.unregister(claire)

	if _, open := <-claire.send; open {
		t.Fatal("le canal doit être fermé après unregister")
	}

	// Publier après départ ne doit pas paniquer
	hub.Publish(statusChangedFor("u1"))
}

func TestSlowClientDropsFrames(t *testing.T) {
	hub := NewHub()
	claire := newTestClient(hub, "u1", models.RoleCustomer)

	ev := statusChangedFor("u1")
	for i := 0; i < sendBufferSize+10; i++ {
		hub.Publish(ev)
	}

	// Le buffer est plein mais la publication n'a jamais bloqué
	if got := len(drain(claire)); got != sendBufferSize {
		t.Fatalf("trames retenues = %d, attendu %d (le surplus est perdu)", got, sendBufferSize)
	}
}

func TestRoomSurvivesOneOfTwoConnections(t *testing.T) {
	hub := NewHub()
	tab1 := newTestClient(hub, "u1", models.RoleCustomer)
	tab2 := newTestClient(hub, "u1", models.RoleCustomer)

	hub.unregister(tab1)
	hub.Publish(statusChangedFor("u1"))

	if got := len(drain(tab2)); got != 1 {
		t.Fatalf("la connexion restante doit toujours recevoir, trames = %d", got)
	}
}
