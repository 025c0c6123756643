package ws

import (
	"log"
	"net/http"
	"strings"

	"vendra_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// ServeWS authentifie la connexion puis l'enregistre sur le hub.
// Le token est le même bearer JWT que la surface HTTP, passé en query
// (`?token=...`, les navigateurs ne peuvent pas poser de header sur un
// WebSocket) ou en header Authorization pour les clients natifs.
// Token absent ou invalide ⇒ connexion refusée avant l'upgrade.
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			authHeader := c.GetHeader("Authorization")
			if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			log.Printf("❌ Handshake WebSocket refusé: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("❌ Erreur upgrade WebSocket: %v", err)
			return
		}

		client := &Client{
			hub:    hub,
			conn:   conn,
			send:   make(chan []byte, sendBufferSize),
			userID: claims.UserID,
			role:   claims.Role,
		}
		hub.register(client)

		go client.writePump()
		go client.readPump()
	}
}
