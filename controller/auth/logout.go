package auth

import (
	"errors"
	"net/http"

	"ezwallet/controller"
	"ezwallet/dto"
	"ezwallet/services"

	"github.com/gin-gonic/gin"
)

func LogoutController(router gin.IRouter, opts Options) {
	router.GET("/logout", func(c *gin.Context) {
		Logout(c, opts)
	})
}

// Logout forgets the stored refresh token and drops both session cookies.
func Logout(c *gin.Context, opts Options) {
	refreshToken := opts.Cookies.Read(c).RefreshToken
	if refreshToken == "" {
		controller.Fail(c, http.StatusBadRequest, "Refresh token not found")
		return
	}

	ctx := c.Request.Context()
	user, err := opts.Store.GetUserByRefreshToken(ctx, services.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "User not found")
			return
		}
		opts.Log.Error().Err(err).Msg("find user by refresh token")
		controller.Fail(c, http.StatusInternalServerError, "Failed to find user")
		return
	}

	if err := opts.Store.SetRefreshToken(ctx, user.UserID, ""); err != nil {
		opts.Log.Error().Err(err).Str("username", user.Username).Msg("clear refresh token")
		controller.Fail(c, http.StatusInternalServerError, "Failed to clear refresh token")
		return
	}

	opts.Cookies.Revoke(c, services.AccessTokenCookie)
	opts.Cookies.Revoke(c, services.RefreshTokenCookie)
	controller.Respond(c, http.StatusOK, dto.MessageResponse{Message: "User logged out"})
}
