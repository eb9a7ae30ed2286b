package http_access_middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/livepoll/internal/delivery/http/common"
	"github.com/humanbelnik/livepoll/internal/model"
)

const ModeReadOnly = "RO"

// ReadOnly rejects every mutating request when mode is RO, so an instance
// pointed at a replica can still serve snapshots, results and live updates.
func ReadOnly(mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mode != ModeReadOnly {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusBadGateway, http_common.ErrorResponse{
			Success: false,
			Kind:    model.KindInternal,
			Message: "write operations are not allowed on a read-only instance",
		})
	}
}
