package main

import (
	"ezwallet/connection"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	gin.SetMode(gin.ReleaseMode)
	if err := connection.StartServer(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
