package middleware

import (
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const contextUserIDKey = "userID"

// AuthMiddleware validates bearer tokens on protected routes
type AuthMiddleware struct {
	jwtManager *pkg.JWTManager
	logger     *pkg.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(jwtManager *pkg.JWTManager, logger *pkg.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		logger:     logger.WithPrefix("auth"),
	}
}

// RequireAuth validates the JWT and stores the caller's user id in the
// request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := pkg.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			pkg.ErrorResponse(c, pkg.ErrInvalidToken.WithMessage("Authorization header required"))
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			m.logger.Debug("token rejected", map[string]interface{}{
				"error": err.Error(),
			})
			pkg.ErrorResponse(c, pkg.ErrInvalidToken)
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			pkg.ErrorResponse(c, pkg.ErrInvalidToken)
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Next()
	}
}

// GetUserID reads the authenticated user id set by RequireAuth
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get(contextUserIDKey)
	if !exists {
		return primitive.NilObjectID, false
	}
	userID, ok := value.(primitive.ObjectID)
	return userID, ok
}
