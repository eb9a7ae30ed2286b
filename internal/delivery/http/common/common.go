package http_common

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/humanbelnik/livepoll/internal/model"
)

type ErrorResponse struct {
	Success bool       `json:"success"`
	Kind    model.Kind `json:"kind"`
	Message string     `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

func StatusOf(kind model.Kind) int {
	switch kind {
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindInvalidInput, model.KindInvalidQuestion, model.KindInvalidOption:
		return http.StatusBadRequest
	case model.KindInvalidTransition, model.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Fail writes err as an ErrorResponse and logs server-side failures.
func Fail(ctx *gin.Context, logger *slog.Logger, op string, err error) {
	kind := model.KindOf(err)
	status := StatusOf(kind)

	message := err.Error()
	if kind == model.KindInternal {
		message = "internal error"
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Debug("request rejected",
			slog.String("op", op),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
	}

	ctx.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Kind:    kind,
		Message: message,
	})
}

func OK(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// PollID reads the poll id path parameter, failing the request if it is malformed.
func PollID(ctx *gin.Context, logger *slog.Logger, op string) (model.PollID, bool) {
	id, err := model.ParsePollID(ctx.Param("poll_id"))
	if err != nil {
		Fail(ctx, logger, op, err)
		return model.EmptyPollID, false
	}
	return id, true
}

// CORS allows any origin, as the browser clients are served from elsewhere.
func CORS() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		h := ctx.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		h.Set("Access-Control-Expose-Headers", "Content-Disposition")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
