package http_results

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/livepoll/internal/delivery/http/common"
	usecase_vote "github.com/humanbelnik/livepoll/internal/usecase/vote"
)

const fileName = "results.csv"

type Controller struct {
	uc     *usecase_vote.Usecase
	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc *usecase_vote.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	poll := router.Group("/polls/:poll_id")
	poll.POST("/reset", c.reset)
	poll.GET("/results.csv", c.download)
}

func (c *Controller) RegisterLegacyRoutes(router *gin.RouterGroup) {
	router.GET("/downloadResults/:poll_id", c.download)
	router.POST("/resetResults/:poll_id", c.reset)
}

// reset
// @Summary Reset poll results
// @Tags Results
// @Produce json
// @Param poll_id path string true "Poll ID"
// @Success 200 {object} http_common.SuccessResponse
// @Failure 400 {object} http_common.ErrorResponse "Malformed poll id"
// @Failure 404 {object} http_common.ErrorResponse "Poll not found"
// @Router /polls/{poll_id}/reset [post]
func (c *Controller) reset(ctx *gin.Context) {
	id, ok := http_common.PollID(ctx, c.logger, "reset results")
	if !ok {
		return
	}

	if _, err := c.uc.ResetResults(ctx.Request.Context(), id); err != nil {
		http_common.Fail(ctx, c.logger, "reset results", err)
		return
	}
	http_common.OK(ctx)
}

// download
// @Summary Download poll results
// @Description CSV with header Option,Votes and one row per counted option
// @Tags Results
// @Produce text/csv
// @Param poll_id path string true "Poll ID"
// @Success 200 {file} file
// @Failure 400 {object} http_common.ErrorResponse "Malformed poll id"
// @Failure 404 {object} http_common.ErrorResponse "Poll not found"
// @Router /polls/{poll_id}/results.csv [get]
func (c *Controller) download(ctx *gin.Context) {
	id, ok := http_common.PollID(ctx, c.logger, "download results")
	if !ok {
		return
	}

	rows, err := c.uc.Results(ctx.Request.Context(), id)
	if err != nil {
		http_common.Fail(ctx, c.logger, "download results", err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Status(http.StatusOK)

	w := csv.NewWriter(ctx.Writer)
	_ = w.Write([]string{"Option", "Votes"})
	for _, r := range rows {
		_ = w.Write([]string{r.Option, strconv.Itoa(r.Votes)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		c.logger.Error("failed to write results",
			slog.String("poll_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
}
