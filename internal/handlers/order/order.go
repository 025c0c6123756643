package order

import (
	"errors"
	"log"
	"net/http"

	"vendra_back_end/internal/models"
	"vendra_back_end/internal/service"
	"vendra_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// Handler regroupe la surface HTTP des commandes
type Handler struct {
	intake  *service.Intake
	machine *service.StateMachine
	orders  store.OrderStore
	index   *service.OrderIndex // optionnel
}

func NewHandler(intake *service.Intake, machine *service.StateMachine, orders store.OrderStore) *Handler {
	return &Handler{intake: intake, machine: machine, orders: orders}
}

// WithIndex active la recherche opérateur
func (h *Handler) WithIndex(index *service.OrderIndex) *Handler {
	h.index = index
	return h
}

type lineRequest struct {
	Kind           string   `json:"kind"`
	ProductID      string   `json:"product_id"`
	Quantity       int      `json:"quantity" binding:"required"`
	Price          float64  `json:"price"`
	BoxTitle       string   `json:"box_title"`
	BoxDescription string   `json:"box_description"`
	BoxProductIDs  []string `json:"box_product_ids"`
}

// respondError traduit une erreur métier en réponse HTTP sans jamais exposer
// le texte d'une erreur de stockage
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
	case errors.Is(err, store.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
	case errors.Is(err, store.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant"})
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "Transition de statut non autorisée"})
	case errors.Is(err, service.ErrOrderNotTerminal):
		c.JSON(http.StatusForbidden, gin.H{"error": "Suppression impossible: la commande n'est pas dans un statut terminal"})
	case errors.Is(err, service.ErrNotOperator):
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux opérateurs"})
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidLine),
		errors.Is(err, service.ErrInvalidPaymentMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ Erreur interne: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur, veuillez réessayer"})
	}
}

// Create - Soumettre une commande (client authentifié)
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	var req struct {
		Lines           []lineRequest `json:"lines" binding:"required"`
		DeliveryAddress string        `json:"delivery_address" binding:"required"`
		PaymentMethod   string        `json:"payment_method" binding:"required"`
		Comment         string        `json:"comment"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	lines := make([]service.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		input := service.LineInput{
			Quantity:       l.Quantity,
			Price:          l.Price,
			BoxTitle:       l.BoxTitle,
			BoxDescription: l.BoxDescription,
		}

		switch l.Kind {
		case "", string(models.LineProduct):
			input.Kind = models.LineProduct
			pid, err := uuid.Parse(l.ProductID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide: " + l.ProductID})
				return
			}
			input.ProductID = gocql.UUID(pid)
		case string(models.LineBox):
			input.Kind = models.LineBox
			for _, idStr := range l.BoxProductIDs {
				pid, err := uuid.Parse(idStr)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide dans la box: " + idStr})
					return
				}
				input.BoxProductIDs = append(input.BoxProductIDs, gocql.UUID(pid))
			}
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Type de ligne invalide: " + l.Kind})
			return
		}

		lines = append(lines, input)
	}

	order, err := h.intake.CreateOrder(c.Request.Context(), userID, lines, req.DeliveryAddress, req.PaymentMethod, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// ListMine - Récupérer les commandes de l'utilisateur connecté
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	orders, err := h.orders.ListOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Les commandes soft-deleted ne sont pas montrées au client
	visible := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.DeletedAt == nil {
			visible = append(visible, o)
		}
	}

	c.JSON(http.StatusOK, gin.H{"orders": visible})
}

// GetByID - Récupérer une commande (propriétaire ou opérateur)
func (h *Handler) GetByID(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	isOperator := c.GetString("role") == models.RoleOperator
	if !isOperator && order.UserID != c.GetString("user_id") {
		// Ne pas révéler l'existence de la commande
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if !isOperator && order.DeletedAt != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// ListAll - Toutes les commandes (opérateur)
func (h *Handler) ListAll(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  len(orders),
	})
}

// UpdateStatus - Faire avancer le cycle de vie d'une commande (opérateur)
func (h *Handler) UpdateStatus(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	target := models.OrderStatus(req.Status)
	if !target.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Statut invalide",
			"valid_statuses": []models.OrderStatus{models.StatusPending, models.StatusProcessing, models.StatusShipped, models.StatusDelivered, models.StatusCancelled},
		})
		return
	}

	order, err := h.machine.Transition(c.Request.Context(), orderID, target, c.GetString("role"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"order":      order,
		"status":     order.Status,
		"updated_at": order.UpdatedAt,
	})
}

// Delete - Soft delete d'une commande terminée (opérateur)
func (h *Handler) Delete(c *gin.Context) {
	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	order, err := h.machine.Delete(c.Request.Context(), orderID, c.GetString("role"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"order_id":   order.ID,
		"deleted_at": order.DeletedAt,
	})
}

// Search - Recherche plein texte dans les commandes (opérateur)
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q requis"})
		return
	}

	if h.index == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Recherche indisponible"})
		return
	}

	results, err := h.index.SearchOrders(query)
	if err != nil {
		log.Printf("❌ Erreur recherche commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"total":   len(results),
	})
}
