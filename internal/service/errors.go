package service

import "errors"

// Erreurs métier du pipeline de commandes. Elles sont remontées sans effet
// de bord partiel : toute réservation déjà posée est restituée avant retour.
var (
	ErrEmptyOrder           = errors.New("la commande ne contient aucune ligne")
	ErrInvalidLine          = errors.New("ligne de commande invalide")
	ErrInvalidPaymentMethod = errors.New("méthode de paiement invalide")
	ErrInvalidTransition    = errors.New("transition de statut non autorisée")
	ErrOrderNotTerminal     = errors.New("suppression interdite: la commande n'est pas dans un statut terminal")
	ErrNotOperator          = errors.New("opération réservée aux opérateurs")
)
