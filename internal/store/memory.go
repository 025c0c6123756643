package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"vendra_back_end/internal/models"

	"github.com/gocql/gocql"
)

// MemoryStore est l'implémentation in-memory des stores, utilisée par les
// tests et le mode développement sans ScyllaDB. La discipline de concurrence
// est la même que côté Scylla : le stock n'est modifiable que sous verrou,
// donc la somme des réservations réussies ne dépasse jamais le stock initial.
type MemoryStore struct {
	mu            sync.RWMutex
	products      map[gocql.UUID]models.Product
	orders        map[gocql.UUID]models.Order
	notifications map[string][]models.Notification // user_id → notifications
	users         map[string]models.User
	usersByEmail  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products:      make(map[gocql.UUID]models.Product),
		orders:        make(map[gocql.UUID]models.Order),
		notifications: make(map[string][]models.Notification),
		users:         make(map[string]models.User),
		usersByEmail:  make(map[string]string),
	}
}

// Vérification des interfaces
var (
	_ ProductStore      = (*MemoryStore)(nil)
	_ OrderStore        = (*MemoryStore)(nil)
	_ NotificationStore = (*MemoryStore)(nil)
	_ UserStore         = (*MemoryStore)(nil)
)

// --- Seed helpers (tests et mode dev) ---

func (m *MemoryStore) PutProduct(p models.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *MemoryStore) PutUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	m.usersByEmail[u.Email] = u.ID
}

// --- ProductStore ---

func (m *MemoryStore) GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (m *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	products := make([]models.Product, 0, len(m.products))
	for _, p := range m.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (m *MemoryStore) Reserve(ctx context.Context, id gocql.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrProductNotFound
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	m.products[id] = p
	return nil
}

func (m *MemoryStore) Release(ctx context.Context, id gocql.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrProductNotFound
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now()
	m.products[id] = p
	return nil
}

// --- OrderStore ---

func (m *MemoryStore) InsertOrder(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = *order
	return nil
}

func (m *MemoryStore) GetOrder(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

func (m *MemoryStore) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var orders []models.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (m *MemoryStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	orders := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, id gocql.UUID, from, to models.OrderStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return false, ErrOrderNotFound
	}
	if o.Status != from {
		return false, nil
	}
	o.Status = to
	o.UpdatedAt = at
	m.orders[id] = o
	return true, nil
}

func (m *MemoryStore) SoftDelete(ctx context.Context, id gocql.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrOrderNotFound
	}
	deletedAt := at
	o.DeletedAt = &deletedAt
	o.UpdatedAt = at
	m.orders[id] = o
	return nil
}

// --- NotificationStore ---

func (m *MemoryStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.UserID] = append(m.notifications[n.UserID], *n)
	return nil
}

func (m *MemoryStore) ListNotificationsFor(ctx context.Context, userID string) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	notifications := make([]models.Notification, len(m.notifications[userID]))
	copy(notifications, m.notifications[userID])
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (m *MemoryStore) MarkNotificationRead(ctx context.Context, id gocql.UUID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.notifications[userID]
	for i := range list {
		if list[i].ID == id {
			list[i].IsRead = true
			return nil
		}
	}
	return ErrNotificationNotFound
}

// --- UserStore ---

func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.usersByEmail[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := m.users[id]
	return &u, nil
}
