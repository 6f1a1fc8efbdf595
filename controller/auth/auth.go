package auth

import (
	"ezwallet/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Options struct {
	Store   services.UserStore
	Codec   *services.TokenCodec
	Cookies *services.CookieManager
	Limiter *services.LoginLimiter // nil disables throttling
	Log     zerolog.Logger
}

func AuthController(router gin.IRouter, opts Options) {
	SignUpController(router, opts)
	SignInController(router, opts)
	LogoutController(router, opts)
}
