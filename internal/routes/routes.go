package routes

import (
	"time"

	"vendra_back_end/internal/handlers"
	"vendra_back_end/internal/handlers/notification"
	"vendra_back_end/internal/handlers/order"
	"vendra_back_end/internal/handlers/product"
	"vendra_back_end/internal/middleware"
	"vendra_back_end/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers regroupe toutes les dépendances HTTP du serveur
type Handlers struct {
	Auth          *handlers.AuthHandler
	Products      *product.Handler
	Orders        *order.Handler
	Notifications *notification.Handler
	Hub           *ws.Hub
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Flux temps réel (le token passe en query ou en header)
	r.GET("/ws", ws.ServeWS(h.Hub))

	api := r.Group("/api")

	// Authentification
	auth := api.Group("/auth")
	{
		auth.POST("/login", middleware.LoginRateLimit(), h.Auth.Login)
	}

	// Catalogue (public)
	products := api.Group("/products")
	{
		products.GET("", h.Products.List)
		products.GET("/:id", h.Products.GetByID)
	}

	// Espace client
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.POST("/orders", middleware.OrderRateLimit(), h.Orders.Create)
		authed.GET("/orders", h.Orders.ListMine)
		authed.GET("/orders/:id", h.Orders.GetByID)

		authed.GET("/notifications", h.Notifications.List)
		authed.PUT("/notifications/:id/read", h.Notifications.MarkRead)
	}

	// Espace opérateur
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.RequireOperator)
	{
		admin.GET("/orders", h.Orders.ListAll)
		admin.GET("/orders/search", h.Orders.Search)
		admin.PUT("/orders/:id/status", h.Orders.UpdateStatus)
		admin.DELETE("/orders/:id", h.Orders.Delete)
	}
}
