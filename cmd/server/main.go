package main

import (
	"log"
	"os"

	"vendra_back_end/internal/config"
	"vendra_back_end/internal/database"
	"vendra_back_end/internal/handlers"
	"vendra_back_end/internal/handlers/notification"
	"vendra_back_end/internal/handlers/order"
	"vendra_back_end/internal/handlers/product"
	"vendra_back_end/internal/models"
	"vendra_back_end/internal/routes"
	"vendra_back_end/internal/service"
	"vendra_back_end/internal/store"
	"vendra_back_end/internal/utils"
	"vendra_back_end/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Configuration
	config.Load()

	// 2. Bases de données (ScyllaDB obligatoire, Redis/Elastic optionnels)
	database.ConnectDatabases()
	defer database.CloseScylla()
	database.InitPreparedStatements()

	// 3. Stockage
	scyllaStore := store.NewScyllaStore()

	// 4. Bus d'événements temps réel
	hub := ws.NewHub()

	// 5. Services métier
	ledger := service.NewNotificationLedger(scyllaStore)
	index := service.NewOrderIndex()
	sendStatusEmail := func(o models.Order, toEmail string, status models.OrderStatus) {
		go func() {
			if err := utils.SendOrderStatusEmail(o, toEmail, status); err != nil {
				log.Printf("⚠️ Email statut commande %s non envoyé: %v", o.ID, err)
			}
		}()
	}

	intake := service.NewIntake(scyllaStore, scyllaStore, scyllaStore, ledger, hub).
		WithIndexer(index).
		WithEmail(sendStatusEmail)
	machine := service.NewStateMachine(scyllaStore, scyllaStore, ledger, hub).
		WithIndexer(index).
		WithEmail(sendStatusEmail)

	// 6. Serveur HTTP
	r := gin.Default()

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:          handlers.NewAuthHandler(scyllaStore),
		Products:      product.NewHandler(scyllaStore),
		Orders:        order.NewHandler(intake, machine, scyllaStore).WithIndex(index),
		Notifications: notification.NewHandler(ledger),
		Hub:           hub,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("🚀 Serveur Vendra démarré sur le port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Impossible de démarrer le serveur: %v", err)
	}
}
