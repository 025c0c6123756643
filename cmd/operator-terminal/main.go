// Commande terminal opérateur : se connecte au flux temps réel du serveur,
// affiche les événements de commandes et fait sonner un rappel tant qu'une
// commande reste en attente de validation.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendra_back_end/internal/alert"
	"vendra_back_end/internal/ws"

	"github.com/gorilla/websocket"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:8080/ws", "URL du flux temps réel")
	token := flag.String("token", os.Getenv("VENDRA_TOKEN"), "Jeton JWT opérateur")
	interval := flag.Duration("interval", 30*time.Second, "Intervalle de relance des alertes")
	flag.Parse()

	if *token == "" {
		log.Fatal("❌ Jeton opérateur requis (--token ou VENDRA_TOKEN)")
	}

	u, err := url.Parse(*serverURL)
	if err != nil {
		log.Fatalf("❌ URL invalide: %v", err)
	}
	q := u.Query()
	q.Set("token", *token)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("❌ Connexion au serveur impossible: %v", err)
	}
	defer conn.Close()
	log.Printf("📡 Connecté à %s", *serverURL)

	// La sonnerie du terminal sert de rappel tant que des commandes attendent
	escalator := alert.NewEscalator(*interval, func(orderID string) {
		fmt.Printf("\a🔔 Commande %s en attente de validation\n", orderID)
	})
	defer escalator.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Printf("⚠️ Connexion fermée: %v", err)
				return
			}

			ev, err := ws.Decode(data)
			if err != nil {
				log.Printf("⚠️ Événement ignoré: %v", err)
				continue
			}

			switch e := ev.(type) {
			case ws.OrderCreated:
				fmt.Printf("🆕 Nouvelle commande %s de %s (%.2f €)\n",
					e.Order.ID, e.Order.Customer.Name, e.Order.TotalAmount)
			case ws.OrderStatusChanged:
				fmt.Printf("🔄 Commande %s → %s\n", e.OrderID, e.Status)
			case ws.OrderDeleted:
				fmt.Printf("🗑️ Commande %s supprimée\n", e.OrderID)
			}

			escalator.HandleEvent(ev)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
	case <-sig:
		log.Println("👋 Arrêt du terminal opérateur")
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
