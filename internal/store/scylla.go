package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"vendra_back_end/internal/cache"
	"vendra_back_end/internal/database"
	"vendra_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Nombre maximum de tentatives CAS avant d'abandonner une réservation.
// Chaque échec signifie qu'une réservation concurrente a gagné la course,
// on relit le stock et on retente.
const reserveMaxAttempts = 8

// ScyllaStore implémente tous les stores sur ScyllaDB via le gestionnaire
// de sessions multi-keyspaces
type ScyllaStore struct{}

func NewScyllaStore() *ScyllaStore {
	return &ScyllaStore{}
}

var (
	_ ProductStore      = (*ScyllaStore)(nil)
	_ OrderStore        = (*ScyllaStore)(nil)
	_ NotificationStore = (*ScyllaStore)(nil)
	_ UserStore         = (*ScyllaStore)(nil)
)

// =============================================
// PRODUITS & STOCK
// =============================================

func (s *ScyllaStore) GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var p models.Product
	p.ID = id
	err = session.Query("SELECT name, price, stock, updated_at FROM products WHERE product_id = ?", id).
		WithContext(ctx).Scan(&p.Name, &p.Price, &p.Stock, &p.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ScyllaStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT product_id, name, price, stock, updated_at FROM products").
		WithContext(ctx).Iter()

	var products []models.Product
	var p models.Product
	for iter.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.UpdatedAt) {
		products = append(products, p)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return products, nil
}

// Reserve décrémente le stock via une transaction légère (LWT) :
// UPDATE ... IF stock = ? garantit que deux réservations concurrentes sur le
// même produit se sérialisent côté serveur. La somme des réservations réussies
// ne peut donc jamais dépasser le stock observé au départ.
func (s *ScyllaStore) Reserve(ctx context.Context, id gocql.UUID, quantity int) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	for attempt := 0; attempt < reserveMaxAttempts; attempt++ {
		var stock int
		err := session.Query("SELECT stock FROM products WHERE product_id = ?", id).
			WithContext(ctx).Scan(&stock)
		if err == gocql.ErrNotFound {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		if stock < quantity {
			return ErrInsufficientStock
		}

		var current int
		applied, err := session.Query(
			"UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ? IF stock = ?",
			stock-quantity, time.Now(), id, stock).
			WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return err
		}
		if applied {
			cache.InvalidateProductCache(ctx, id)
			return nil
		}
		// Course perdue : un autre client a modifié le stock entre-temps
	}

	return fmt.Errorf("réservation stock: contention trop élevée sur le produit %s", id)
}

// Release restitue une quantité au stock (compensation après échec de création)
func (s *ScyllaStore) Release(ctx context.Context, id gocql.UUID, quantity int) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	for attempt := 0; attempt < reserveMaxAttempts; attempt++ {
		var stock int
		err := session.Query("SELECT stock FROM products WHERE product_id = ?", id).
			WithContext(ctx).Scan(&stock)
		if err == gocql.ErrNotFound {
			return ErrProductNotFound
		}
		if err != nil {
			return err
		}

		var current int
		applied, err := session.Query(
			"UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ? IF stock = ?",
			stock+quantity, time.Now(), id, stock).
			WithContext(ctx).ScanCAS(&current)
		if err != nil {
			return err
		}
		if applied {
			cache.InvalidateProductCache(ctx, id)
			return nil
		}
	}

	return fmt.Errorf("restitution stock: contention trop élevée sur le produit %s", id)
}

// =============================================
// COMMANDES
// =============================================

// InsertOrder écrit la commande, ses lignes et l'entrée orders_by_user dans
// un batch logged : soit tout est écrit, soit rien
func (s *ScyllaStore) InsertOrder(ctx context.Context, order *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`INSERT INTO orders (order_id, user_id, status, payment_method, payment_status, total_amount, delivery_address, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, string(order.Status), order.PaymentMethod, order.PaymentStatus,
		order.TotalAmount, order.DeliveryAddress, order.Comment, order.CreatedAt, order.UpdatedAt)

	for _, line := range order.Lines {
		batch.Query(`INSERT INTO order_lines (order_id, line_id, kind, product_id, product_name, box_title, box_description, box_product_ids, quantity, price)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			order.ID, line.ID, string(line.Kind), line.ProductID, line.ProductName,
			line.BoxTitle, line.BoxDescription, line.BoxProductIDs, line.Quantity, line.Price)
	}

	batch.Query(`INSERT INTO orders_by_user (user_id, order_id, status, total_amount, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		order.UserID, order.ID, string(order.Status), order.TotalAmount, order.CreatedAt)

	return session.ExecuteBatch(batch)
}

func (s *ScyllaStore) GetOrder(ctx context.Context, id gocql.UUID) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var order models.Order
	order.ID = id
	var status string
	var deletedAt time.Time

	err = session.Query(`SELECT user_id, status, payment_method, payment_status, total_amount, delivery_address, comment, deleted_at, created_at, updated_at
		FROM orders WHERE order_id = ?`, id).
		WithContext(ctx).Scan(&order.UserID, &status, &order.PaymentMethod, &order.PaymentStatus,
		&order.TotalAmount, &order.DeliveryAddress, &order.Comment, &deletedAt,
		&order.CreatedAt, &order.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatus(status)
	if !deletedAt.IsZero() {
		order.DeletedAt = &deletedAt
	}

	lines, err := s.loadLines(ctx, session, id)
	if err != nil {
		return nil, err
	}
	order.Lines = lines

	return &order, nil
}

func (s *ScyllaStore) loadLines(ctx context.Context, session *gocql.Session, orderID gocql.UUID) ([]models.OrderLine, error) {
	iter := session.Query(`SELECT line_id, kind, product_id, product_name, box_title, box_description, box_product_ids, quantity, price
		FROM order_lines WHERE order_id = ?`, orderID).
		WithContext(ctx).Iter()

	var lines []models.OrderLine
	var line models.OrderLine
	var kind string
	for iter.Scan(&line.ID, &kind, &line.ProductID, &line.ProductName, &line.BoxTitle,
		&line.BoxDescription, &line.BoxProductIDs, &line.Quantity, &line.Price) {
		line.Kind = models.LineKind(kind)
		lines = append(lines, line)
		line = models.OrderLine{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *ScyllaStore) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	// orders_by_user est clusterisé par order_id (timeuuid) DESC → plus récentes d'abord
	iter := session.Query("SELECT order_id FROM orders_by_user WHERE user_id = ?", userID).
		WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	var orders []models.Order
	for _, orderID := range ids {
		order, err := s.GetOrder(ctx, orderID)
		if err == ErrOrderNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (s *ScyllaStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT order_id FROM orders").WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	var orders []models.Order
	for _, orderID := range ids {
		order, err := s.GetOrder(ctx, orderID)
		if err == ErrOrderNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

// UpdateStatus applique la transition de façon conditionnelle (LWT) :
// si le statut courant n'est plus `from`, une transition concurrente a gagné
// et applied=false est retourné sans rien modifier
func (s *ScyllaStore) UpdateStatus(ctx context.Context, id gocql.UUID, from, to models.OrderStatus, at time.Time) (bool, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	var current string
	applied, err := session.Query(
		"UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF status = ?",
		string(to), at, id, string(from)).
		WithContext(ctx).ScanCAS(&current)
	if err == gocql.ErrNotFound {
		return false, ErrOrderNotFound
	}
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	// Mise à jour de la table dénormalisée, best effort : le statut canonique
	// est déjà commité, un échec ici ne doit pas faire échouer la transition
	var userID string
	if err := session.Query("SELECT user_id FROM orders WHERE order_id = ?", id).
		WithContext(ctx).Scan(&userID); err == nil {
		if err := session.Query("UPDATE orders_by_user SET status = ? WHERE user_id = ? AND order_id = ?",
			string(to), userID, id).WithContext(ctx).Exec(); err != nil {
			log.Printf("⚠️ Mise à jour orders_by_user pour la commande %s: %v", id, err)
		}
	}

	return true, nil
}

func (s *ScyllaStore) SoftDelete(ctx context.Context, id gocql.UUID, at time.Time) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	return session.Query("UPDATE orders SET deleted_at = ?, updated_at = ? WHERE order_id = ?", at, at, id).
		WithContext(ctx).Exec()
}

// =============================================
// NOTIFICATIONS
// =============================================

func (s *ScyllaStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	return session.Query(`INSERT INTO notifications (user_id, notification_id, order_id, category, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, n.ID, n.OrderID, string(n.Category), n.Message, n.IsRead, n.CreatedAt).
		WithContext(ctx).Exec()
}

func (s *ScyllaStore) ListNotificationsFor(ctx context.Context, userID string) ([]models.Notification, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	// notification_id est un timeuuid clusterisé DESC → plus récentes d'abord
	iter := session.Query(`SELECT notification_id, order_id, category, message, is_read, created_at
		FROM notifications WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()

	var notifications []models.Notification
	var n models.Notification
	var category string
	n.UserID = userID
	for iter.Scan(&n.ID, &n.OrderID, &category, &n.Message, &n.IsRead, &n.CreatedAt) {
		n.Category = models.NotificationCategory(category)
		notifications = append(notifications, n)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *ScyllaStore) MarkNotificationRead(ctx context.Context, id gocql.UUID, userID string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	// Vérifier que la notification appartient bien à l'utilisateur
	var existing gocql.UUID
	err = session.Query("SELECT notification_id FROM notifications WHERE user_id = ? AND notification_id = ?", userID, id).
		WithContext(ctx).Scan(&existing)
	if err == gocql.ErrNotFound {
		return ErrNotificationNotFound
	}
	if err != nil {
		return err
	}

	return session.Query("UPDATE notifications SET is_read = true WHERE user_id = ? AND notification_id = ?", userID, id).
		WithContext(ctx).Exec()
}

// =============================================
// UTILISATEURS
// =============================================

func (s *ScyllaStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	var u models.User
	u.ID = id
	err = session.Query("SELECT email, name, role, password FROM users WHERE user_id = ?", id).
		WithContext(ctx).Scan(&u.Email, &u.Name, &u.Role, &u.PasswordHash)
	if err == gocql.ErrNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *ScyllaStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	var userID string
	err = session.Query("SELECT user_id FROM users_by_email WHERE email = ?", email).
		WithContext(ctx).Scan(&userID)
	if err == gocql.ErrNotFound {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.GetUserByID(ctx, userID)
}
