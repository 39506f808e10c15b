package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"clouddrive/internal/identity"
	"clouddrive/internal/models"
	"clouddrive/internal/utils"
	"clouddrive/pkg/logger"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

var errVerifierPanic = errors.New("identity provider panicked")

// AuthRequired verifies the bearer token with the configured identity
// provider and stores the caller on the context.
func AuthRequired(verifier identity.Verifier, log *logger.Logger) gin.HandlerFunc {
	log = log.WithField("component", "auth_middleware")

	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrMsgNoToken)
			return
		}

		caller, err := verify(c, verifier, token)
		if errors.Is(err, errVerifierPanic) {
			log.WithError(err).Error("Identity provider failed")
			utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrMsgAuthFailed)
			return
		}
		if err != nil {
			log.WithError(err).WithField("path", c.Request.URL.Path).Debug("Token rejected")
			utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrMsgInvalidToken)
			return
		}
		if caller == nil || caller.UserID == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", utils.ErrMsgAuthFailed)
			return
		}

		c.Set(utils.ContextUserID, caller.UserID)
		c.Set(utils.ContextUserEmail, caller.Email)
		c.Set(utils.ContextProvider, string(caller.Provider))
		c.Set(identityKey, caller)
		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), caller.UserID))

		c.Next()
	}
}

// verify turns a panicking provider into a plain authentication failure.
func verify(c *gin.Context, verifier identity.Verifier, token string) (caller *models.Identity, err error) {
	defer func() {
		if r := recover(); r != nil {
			caller, err = nil, fmt.Errorf("%w: %v", errVerifierPanic, r)
		}
	}()
	return verifier.Verify(c.Request.Context(), token)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}

	// Browsers cannot set headers on a websocket handshake.
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("access_token")
	}
	return ""
}

// UserID returns the id AuthRequired stored on the context.
func UserID(c *gin.Context) string {
	return c.GetString(utils.ContextUserID)
}

func Identity(c *gin.Context) *models.Identity {
	if value, ok := c.Get(identityKey); ok {
		if caller, ok := value.(*models.Identity); ok {
			return caller
		}
	}
	return &models.Identity{UserID: UserID(c), Email: c.GetString(utils.ContextUserEmail)}
}
