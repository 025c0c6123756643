package alert

import (
	"sort"
	"sync"
	"time"

	"vendra_back_end/internal/models"
	"vendra_back_end/internal/ws"
)

// Cue est le signal sonore/visuel déclenché pour une commande en attente
type Cue func(orderID string)

// Escalator maintient l'ensemble des commandes en attente d'acquittement et
// répète un signal pour chacune jusqu'à ce qu'elle quitte le statut pending.
//
// C'est une pure réaction au flux d'événements : l'ensemble de travail est
// dérivé du seul statut reçu, jamais d'un flag séparé, et le composant
// n'appelle jamais la machine à états. Chaque commande a sa propre tâche
// répétitive annulable par id.
type Escalator struct {
	mu       sync.Mutex
	interval time.Duration
	cue      Cue
	active   map[string]chan struct{} // order_id → canal d'arrêt
}

func NewEscalator(interval time.Duration, cue Cue) *Escalator {
	return &Escalator{
		interval: interval,
		cue:      cue,
		active:   make(map[string]chan struct{}),
	}
}

// HandleEvent met à jour l'ensemble de travail depuis le flux du bus
func (e *Escalator) HandleEvent(ev ws.Event) {
	switch event := ev.(type) {
	case ws.OrderCreated:
		e.Add(event.Order.ID)
	case ws.OrderStatusChanged:
		if event.Status != string(models.StatusPending) {
			e.Remove(event.OrderID)
		}
	case ws.OrderDeleted:
		e.Remove(event.OrderID)
	}
}

// Add démarre le signal répétitif pour une commande. Idempotent.
func (e *Escalator) Add(orderID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.active[orderID]; exists {
		return
	}

	stop := make(chan struct{})
	e.active[orderID] = stop

	go func() {
		// Premier signal immédiat, puis répétition à intervalle fixe
		e.cue(orderID)
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				e.cue(orderID)
			case <-stop:
				return
			}
		}
	}()
}

// Remove annule immédiatement le signal de cette commande. Idempotent.
func (e *Escalator) Remove(orderID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if stop, exists := e.active[orderID]; exists {
		close(stop)
		delete(e.active, orderID)
	}
}

// Pending retourne les commandes encore en attente, triées pour l'affichage
func (e *Escalator) Pending() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids := make([]string, 0, len(e.active))
	for id := range e.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Contains indique si une commande est encore en attente d'acquittement
func (e *Escalator) Contains(orderID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, exists := e.active[orderID]
	return exists
}

// Stop annule tous les signaux en cours
func (e *Escalator) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, stop := range e.active {
		close(stop)
		delete(e.active, id)
	}
}
