package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/SeraphMX/grupofinancial-hub-sub000/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims representa los claims del token de sesión
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthRequired valida el token JWT y deja la identidad en el contexto
func AuthRequired(jwtKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Se requiere el encabezado Authorization"})
			c.Abort()
			return
		}

		// Quitamos el prefijo "Bearer " si viene
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("método de firma inesperado: %v", token.Header["alg"])
			}
			return jwtKey, nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token no válido"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", models.UserRole(claims.Role))

		c.Next()
	}
}

// RoleRequired exige que el usuario autenticado tenga alguno de los roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Sesión no válida"})
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "El rol no tiene acceso a este recurso"})
		c.Abort()
	}
}

// GetUserID obtiene el ID del usuario autenticado desde el contexto
func GetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// GetRole obtiene el rol del usuario autenticado desde el contexto
func GetRole(c *gin.Context) (models.UserRole, bool) {
	v, exists := c.Get("role")
	if !exists {
		return "", false
	}
	role, ok := v.(models.UserRole)
	return role, ok
}

// Identity obtiene usuario y rol en una sola llamada
func Identity(c *gin.Context) (uint, models.UserRole, error) {
	userID, ok := GetUserID(c)
	if !ok {
		return 0, "", errors.New("user_id no encontrado en el contexto")
	}
	role, ok := GetRole(c)
	if !ok {
		return 0, "", errors.New("rol no encontrado en el contexto")
	}
	return userID, role, nil
}
