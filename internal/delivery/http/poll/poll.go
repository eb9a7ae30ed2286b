package http_poll

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/livepoll/internal/delivery/http/common"
	"github.com/humanbelnik/livepoll/internal/model"
	usecase_poll "github.com/humanbelnik/livepoll/internal/usecase/poll"
)

type Controller struct {
	uc     *usecase_poll.Usecase
	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc *usecase_poll.Usecase, opts ...ControllerOption) *Controller {
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
	polls := router.Group("/polls")
	{
		polls.POST("", c.create)
		polls.GET("/:poll_id", c.get)
		polls.DELETE("/:poll_id", c.delete)
	}
}

func (c *Controller) RegisterLegacyRoutes(router *gin.RouterGroup) {
	router.POST("/createPoll", c.createLegacy)
	router.GET("/poll/:poll_id", c.get)
	router.DELETE("/deletePoll/:poll_id", c.delete)
}

type QuestionDTO struct {
	Text           string   `json:"text" example:"Pizza or Tacos?"`
	Options        []string `json:"options" example:"Pizza,Tacos"`
	HideAnswers    bool     `json:"hideAnswers"`
	ShowPercentage bool     `json:"showPercentage"`
}

type CreatePollRequestDTO struct {
	Name      string        `json:"name" example:"Lunch"`
	Questions []QuestionDTO `json:"questions"`
}

type CreatePollResponseDTO struct {
	Success bool   `json:"success"`
	PollID  string `json:"pollId" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// create
// @Summary Create a poll
// @Description Creates a paused poll with empty results
// @Tags Polls
// @Accept json
// @Produce json
// @Param request body CreatePollRequestDTO true "Poll definition"
// @Success 201 {object} CreatePollResponseDTO
// @Failure 400 {object} http_common.ErrorResponse "Invalid definition"
// @Failure 500 {object} http_common.ErrorResponse "Store unavailable"
// @Router /polls [post]
func (c *Controller) create(ctx *gin.Context) {
	c.createWithStatus(ctx, http.StatusCreated)
}

func (c *Controller) createLegacy(ctx *gin.Context) {
	c.createWithStatus(ctx, http.StatusOK)
}

func (c *Controller) createWithStatus(ctx *gin.Context, status int) {
	var req CreatePollRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		http_common.Fail(ctx, c.logger, "create poll", model.ErrInvalidInput)
		return
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, model.Question{
			Text:           q.Text,
			Options:        q.Options,
			HideAnswers:    q.HideAnswers,
			ShowPercentage: q.ShowPercentage,
		})
	}

	p, err := c.uc.Create(ctx.Request.Context(), req.Name, questions)
	if err != nil {
		http_common.Fail(ctx, c.logger, "create poll", err)
		return
	}

	ctx.JSON(status, CreatePollResponseDTO{
		Success: true,
		PollID:  string(p.ID),
	})
}

// get
// @Summary Get a poll snapshot
// @Tags Polls
// @Produce json
// @Param poll_id path string true "Poll ID"
// @Success 200 {object} model.Poll
// @Failure 400 {object} http_common.ErrorResponse "Malformed poll id"
// @Failure 404 {object} http_common.ErrorResponse "Poll not found"
// @Router /polls/{poll_id} [get]
func (c *Controller) get(ctx *gin.Context) {
	id, ok := http_common.PollID(ctx, c.logger, "get poll")
	if !ok {
		return
	}

	p, err := c.uc.Get(ctx.Request.Context(), id)
	if err != nil {
		http_common.Fail(ctx, c.logger, "get poll", err)
		return
	}
	ctx.JSON(http.StatusOK, p)
}

// delete
// @Summary Delete a poll and its results
// @Tags Polls
// @Produce json
// @Param poll_id path string true "Poll ID"
// @Success 200 {object} http_common.SuccessResponse
// @Failure 400 {object} http_common.ErrorResponse "Malformed poll id"
// @Failure 404 {object} http_common.ErrorResponse "Poll not found"
// @Router /polls/{poll_id} [delete]
func (c *Controller) delete(ctx *gin.Context) {
	id, ok := http_common.PollID(ctx, c.logger, "delete poll")
	if !ok {
		return
	}

	if err := c.uc.Delete(ctx.Request.Context(), id); err != nil {
		http_common.Fail(ctx, c.logger, "delete poll", err)
		return
	}
	http_common.OK(ctx)
}
