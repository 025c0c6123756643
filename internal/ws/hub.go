package ws

import (
	"log"
	"sync"
)

// Hub est le registre des connexions temps réel. Il est injecté dans les
// services plutôt que global, et protégé par mutex car les publications et
// le va-et-vient des connexions sont concurrents sans relation d'ordre.
//
// Deux portées d'abonnement :
//   - opérateurs : broadcast de tous les événements
//   - rooms client : un client ne reçoit que les OrderStatusChanged de ses
//     propres commandes
//
// La publication est synchrone et in-process, immédiatement après le commit,
// donc les événements d'une même commande partent dans l'ordre des commits.
// La livraison est best-effort : un client dont le buffer est plein perd la
// trame (at-most-once, jamais de replay — le fallback est le registre de
// notifications).
type Hub struct {
	mu        sync.RWMutex
	operators map[*Client]struct{}
	rooms     map[string]map[*Client]struct{} // user_id → connexions
}

func NewHub() *Hub {
	return &Hub{
		operators: make(map[*Client]struct{}),
		rooms:     make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c.role == roleOperator {
		h.operators[c] = struct{}{}
		log.Printf("📡 Opérateur connecté au bus (%d opérateurs en ligne)", len(h.operators))
		return
	}

	room := h.rooms[c.userID]
	if room == nil {
		room = make(map[*Client]struct{})
		h.rooms[c.userID] = room
	}
	room[c] = struct{}{}
	log.Printf("📡 Client %s connecté à sa room", c.userID)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.operators[c]; ok {
		delete(h.operators, c)
		close(c.send)
		return
	}

	if room, ok := h.rooms[c.userID]; ok {
		if _, ok := room[c]; ok {
			delete(room, c)
			close(c.send)
			if len(room) == 0 {
				delete(h.rooms, c.userID)
			}
		}
	}
}

// Publish diffuse un événement aux abonnés concernés. Ne bloque jamais :
// un abonné trop lent perd la trame plutôt que de retenir le commit.
func (h *Hub) Publish(ev Event) {
	data, err := Encode(ev)
	if err != nil {
		log.Printf("❌ Erreur encodage événement: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	// Les opérateurs reçoivent les trois types d'événements, sans filtre
	for client := range h.operators {
		client.enqueue(data)
	}

	// Seuls les changements de statut sont poussés dans la room du propriétaire
	if changed, ok := ev.(OrderStatusChanged); ok {
		for client := range h.rooms[changed.Order.Customer.ID] {
			client.enqueue(data)
		}
	}
}
