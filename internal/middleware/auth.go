package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"pawkie/internal/models"
)

// Context key under which RequireAuth stores the verified caller email.
const ContextEmailKey = "email"

// RequireAuth validates the Bearer token and injects the caller email into
// the request context.
func RequireAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		email, _ := claims["email"].(string)
		if strings.TrimSpace(email) == "" {
			log.Println("[AUTH] [ERROR] email claim missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ContextEmailKey, email)
		c.Next()
	}
}

// RequireRole is the capability check behind the admin and doctor areas: it
// resolves the caller's user document and compares the stored role rather
// than trusting a token claim. Must run after RequireAuth.
func RequireRole(db *mongo.Database, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(ContextEmailKey)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if !HasRole(c.Request.Context(), db, email, role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
			return
		}
		c.Next()
	}
}

// HasRole reports whether the user identified by email carries the role.
func HasRole(ctx context.Context, db *mongo.Database, email, role string) bool {
	lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := db.Collection("users").FindOne(lookupCtx, bson.M{"email": email}).Decode(&user); err != nil {
		return false
	}
	return user.Role == role
}

// RequireAdmin and RequireDoctor name the two guarded areas.
func RequireAdmin(db *mongo.Database) gin.HandlerFunc {
	return RequireRole(db, models.RoleAdmin)
}

func RequireDoctor(db *mongo.Database) gin.HandlerFunc {
	return RequireRole(db, models.RoleDoctor)
}
