package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes chaudes du pipeline de commandes
	stmtGetProductStock  *gocql.Query
	stmtGetOrderByID     *gocql.Query
	stmtInsertNotif      *gocql.Query
	stmtGetUserByEmail   *gocql.Query
	stmtGetUserByID      *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		productsSession, err := GetProductsSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements produits: %v", err)
			return
		}
		stmtGetProductStock = productsSession.Query("SELECT stock, name, price FROM products WHERE product_id = ?")

		ordersSession, err := GetOrdersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements commandes: %v", err)
			return
		}
		stmtGetOrderByID = ordersSession.Query(`SELECT user_id, status, payment_method, payment_status, total_amount, delivery_address, comment, deleted_at, created_at, updated_at
			FROM orders WHERE order_id = ?`)
		stmtInsertNotif = ordersSession.Query(`INSERT INTO notifications (user_id, notification_id, order_id, category, message, is_read, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)

		usersSession, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements users: %v", err)
			return
		}
		stmtGetUserByEmail = usersSession.Query("SELECT user_id FROM users_by_email WHERE email = ?")
		stmtGetUserByID = usersSession.Query("SELECT email, name, role, password FROM users WHERE user_id = ?")

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetProductStock() *gocql.Query {
	return stmtGetProductStock
}

func GetPreparedGetOrderByID() *gocql.Query {
	return stmtGetOrderByID
}

func GetPreparedInsertNotification() *gocql.Query {
	return stmtInsertNotif
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}
