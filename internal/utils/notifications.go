package utils

import (
	"fmt"
	"log"

	"vendra_back_end/internal/models"
)

// SendOrderStatusEmail envoie un email de notification de changement de statut
func SendOrderStatusEmail(order models.Order, userEmail string, newStatus models.OrderStatus) error {
	subject := getStatusEmailSubject(newStatus)
	html := generateStatusEmailHTML(order, newStatus)

	if err := SendEmail(userEmail, subject, html); err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}

	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, userEmail)
	return nil
}

func getStatusEmailSubject(status models.OrderStatus) string {
	switch status {
	case models.StatusPending:
		return "🛒 Commande reçue - Vendra"
	case models.StatusProcessing:
		return "✅ Commande acceptée - Vendra"
	case models.StatusShipped:
		return "📦 Votre commande a été expédiée - Vendra"
	case models.StatusDelivered:
		return "🎉 Votre commande a été livrée - Vendra"
	case models.StatusCancelled:
		return "❌ Commande annulée - Vendra"
	default:
		return "📋 Mise à jour de votre commande - Vendra"
	}
}

func getStatusMessage(status models.OrderStatus) string {
	switch status {
	case models.StatusPending:
		return "Votre commande a bien été reçue et attend validation par notre équipe."
	case models.StatusProcessing:
		return "Votre commande a été acceptée et est en préparation."
	case models.StatusShipped:
		return "Bonne nouvelle ! Votre commande a été expédiée et est en route vers vous."
	case models.StatusDelivered:
		return "Votre commande a été livrée avec succès. Nous espérons que vous en êtes satisfait !"
	case models.StatusCancelled:
		return "Votre commande a été annulée. Si vous avez des questions, n'hésitez pas à nous contacter."
	default:
		return "Le statut de votre commande a été mis à jour."
	}
}

func getStatusIcon(status models.OrderStatus) string {
	switch status {
	case models.StatusPending:
		return "🛒"
	case models.StatusProcessing:
		return "✅"
	case models.StatusShipped:
		return "📦"
	case models.StatusDelivered:
		return "🎉"
	case models.StatusCancelled:
		return "❌"
	default:
		return "📋"
	}
}

func generateStatusEmailHTML(order models.Order, status models.OrderStatus) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Mise à jour de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">%s Mise à jour de votre commande</h2>
		<p>Bonjour,</p>
		<p>%s</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tr>
				<td style="padding: 8px; color: #666;">Numéro de commande</td>
				<td style="padding: 8px; text-align: right;">#%s</td>
			</tr>
			<tr>
				<td style="padding: 8px; color: #666;">Montant total</td>
				<td style="padding: 8px; text-align: right; font-weight: bold;">%.2f€</td>
			</tr>
			<tr>
				<td style="padding: 8px; color: #666;">Statut</td>
				<td style="padding: 8px; text-align: right; font-weight: bold;">%s</td>
			</tr>
		</table>

		<p style="color: #999; font-size: 12px;">Cet email a été envoyé automatiquement, merci de ne pas y répondre.</p>
	</div>
</body>
</html>
`, getStatusIcon(status), getStatusMessage(status), order.ID.String()[:8], order.TotalAmount, status)
}
