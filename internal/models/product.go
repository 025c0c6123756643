package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Product est la vue catalogue consommée par la prise de commande.
// Invariant : stock >= 0 en permanence, décrémenté uniquement via la
// réservation CAS du store produits.
type Product struct {
	ID        gocql.UUID `json:"product_id"`
	Name      string     `json:"name"`
	Price     float64    `json:"price"`
	Stock     int        `json:"stock"`
	UpdatedAt time.Time  `json:"updated_at"`
}
