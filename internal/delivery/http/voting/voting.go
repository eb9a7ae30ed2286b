package http_voting

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/livepoll/internal/delivery/http/common"
	"github.com/humanbelnik/livepoll/internal/model"
	usecase_status "github.com/humanbelnik/livepoll/internal/usecase/status"
	usecase_vote "github.com/humanbelnik/livepoll/internal/usecase/vote"
)

type Controller struct {
	votes  *usecase_vote.Usecase
	status *usecase_status.Usecase

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(
	votes *usecase_vote.Usecase,
	status *usecase_status.Usecase,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		votes:  votes,
		status: status,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	poll := router.Group("/polls/:poll_id")
	poll.POST("/votes", c.vote)
	poll.PATCH("/status", c.changeStatus)
}

func (c *Controller) RegisterLegacyRoutes(router *gin.RouterGroup) {
	router.POST("/vote/:poll_id", c.vote)
	router.POST("/updatePollStatus", c.changeStatusLegacy)
	router.POST("/pausePoll/:poll_id", c.pause)
	router.POST("/stopPoll/:poll_id", c.stop)
}

// VoteRequestDTO
type VoteRequestDTO struct {
	QuestionIndex *int   `json:"questionIndex" example:"0"`
	Option        string `json:"option" example:"Pizza"`
}

// StatusRequestDTO
type StatusRequestDTO struct {
	Status string `json:"status" example:"playing" enums:"paused,playing,stopped,next"`
}

// LegacyStatusRequestDTO
type LegacyStatusRequestDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// vote
// @Summary Cast a vote
// @Description Adds one vote for an option of a question and notifies observers
// @Tags Voting
// @Accept json
// @Produce json
// @Param poll_id path string true "Poll ID"
// @Param request body VoteRequestDTO true "Vote"
// @Success 200 {object} http_common.SuccessResponse
// @Failure 400 {object} http_common.ErrorResponse "Invalid question, option or input"
// @Failure 404 {object} http_common.ErrorResponse "Poll not found"
// @Failure 500 {object} http_common.ErrorResponse "Vote not persisted"
// @Router /polls/{poll_id}/votes [post]
func (c *Controller) vote(ctx *gin.Context) {
	id, ok := http_common.PollID(ctx, c.logger, "vote")
	if !ok {
		return
	}

	var req VoteRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		http_common.Fail(ctx, c.logger, "vote", fmt.Errorf("%w: malformed body", model.ErrInvalidInput))
		return
	}
	if req.QuestionIndex == nil {
		http_common.Fail(ctx, c.logger, "vote", fmt.Errorf("%w: questionIndex is required", model.ErrInvalidQuestion))
		return
	}

	if _, err := c.votes.ApplyVote(ctx.Request.Context(), id, *req.QuestionIndex, req.Option); err != nil {
		http_common.Fail(ctx, c.logger, "vote", err)
		return
	}
	http_common.OK(ctx)
}

// changeStatus
// @Summary Change poll status
// @Description paused, playing and stopped are states; next is relayed to observers
// @Tags Voting
// @Accept json
// @Produce json
// @Param poll_id path string true "Poll ID"
// @Param request body StatusRequestDTO true "Requested status"
// @Success 200 {object} http_common.SuccessResponse
// @Failure 400 {object} http_common.ErrorResponse "Invalid input"
// @Failure 404 {object} http_common.ErrorResponse "Poll not found"
// @Failure 409 {object} http_common.ErrorResponse "Transition not allowed"
// @Router /polls/{poll_id}/status [patch]
func (c *Controller) changeStatus(ctx *gin.Context) {
	id, ok := http_common.PollID(ctx, c.logger, "change status")
	if !ok {
		return
	}

	var req StatusRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		http_common.Fail(ctx, c.logger, "change status", fmt.Errorf("%w: malformed body", model.ErrInvalidInput))
		return
	}
	c.setStatus(ctx, id, req.Status)
}

func (c *Controller) changeStatusLegacy(ctx *gin.Context) {
	var req LegacyStatusRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil || req.ID == "" || req.Status == "" {
		http_common.Fail(ctx, c.logger, "change status", fmt.Errorf("%w: id and status are required", model.ErrInvalidInput))
		return
	}

	id, err := model.ParsePollID(req.ID)
	if err != nil {
		http_common.Fail(ctx, c.logger, "change status", err)
		return
	}
	c.setStatus(ctx, id, req.Status)
}

func (c *Controller) setStatus(ctx *gin.Context, id model.PollID, status string) {
	if _, err := c.status.SetStatus(ctx.Request.Context(), id, status); err != nil {
		http_common.Fail(ctx, c.logger, "change status", err)
		return
	}
	http_common.OK(ctx)
}

func (c *Controller) pause(ctx *gin.Context) {
	id, ok := http_common.PollID(ctx, c.logger, "pause")
	if !ok {
		return
	}
	if _, err := c.status.Pause(ctx.Request.Context(), id); err != nil {
		http_common.Fail(ctx, c.logger, "pause", err)
		return
	}
	http_common.OK(ctx)
}

func (c *Controller) stop(ctx *gin.Context) {
	id, ok := http_common.PollID(ctx, c.logger, "stop")
	if !ok {
		return
	}
	if _, err := c.status.Stop(ctx.Request.Context(), id); err != nil {
		http_common.Fail(ctx, c.logger, "stop", err)
		return
	}
	http_common.OK(ctx)
}
