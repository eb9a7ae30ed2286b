package main

import (
	"github.com/humanbelnik/livepoll/internal/app"
	"github.com/humanbelnik/livepoll/internal/config"
)

//	@title			Livepoll API
//	@version		1.0
//	@description	Live polls with realtime result updates.
//	@BasePath		/api/v1
func main() {
	app.Go(config.Load())
}
