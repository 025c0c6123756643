package ws

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	roleOperator = "operator"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	// Taille du buffer d'envoi par connexion : au-delà, les trames sont
	// perdues (livraison at-most-once)
	sendBufferSize = 64
)

// Client est une connexion WebSocket authentifiée enregistrée sur le hub
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID string
	role   string
}

// enqueue pousse une trame sans bloquer ; appelé sous le RLock du hub
func (c *Client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		log.Printf("⚠️ Buffer plein pour %s, trame perdue", c.userID)
	}
}

// readPump consomme (et ignore) les messages entrants et maintient le pong.
// Le bus est descendant : les clients ne publient jamais.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ Connexion WebSocket fermée brutalement: %v", err)
			}
			return
		}
	}
}

// writePump pousse les trames du hub vers la connexion, avec ping périodique
// pour garder la connexion active
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Le hub a fermé le canal
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
