package http_swagger

import (
	"github.com/gin-gonic/gin"
	_ "github.com/humanbelnik/livepoll/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Controller serves the generated API description. Regenerate it with
// `swag init -g cmd/app/main.go` after changing handler annotations.
type Controller struct{}

func New() *Controller {
	return &Controller{}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
