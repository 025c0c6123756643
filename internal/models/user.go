package models

// Rôles portés par le token JWT
const (
	RoleCustomer = "customer"
	RoleOperator = "operator"
)

// User est l'identité minimale servie par le collaborateur credentials :
// un couple {id, role} vérifié, plus de quoi afficher le client dans un snapshot.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}
