package utils

import (
	"fmt"
	"os"
	"time"

	"vendra_back_end/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super_secret"
	}
	return []byte(secret)
}

// Claims est le couple {id, role} vérifié porté par le token
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// GenerateJWT émet un token signé pour un utilisateur
func GenerateJWT(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseToken valide un token et retourne les claims vérifiés.
// Utilisé par le middleware HTTP et par le handshake WebSocket : les deux
// surfaces partagent le même schéma de credentials.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("claims invalides")
	}

	if exp, ok := claims["exp"].(float64); ok {
		if time.Now().Unix() > int64(exp) {
			return nil, fmt.Errorf("token expiré")
		}
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("user_id manquant dans les claims")
	}

	parsed := &Claims{UserID: userID}
	if email, ok := claims["email"].(string); ok {
		parsed.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		parsed.Role = role
	}

	return parsed, nil
}
