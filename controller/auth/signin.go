package auth

import (
	"errors"
	"net/http"
	"strings"

	"ezwallet/controller"
	"ezwallet/dto"
	"ezwallet/model"
	"ezwallet/services"

	"github.com/gin-gonic/gin"
)

func SignInController(router gin.IRouter, opts Options) {
	router.POST("/login", func(c *gin.Context) {
		Signin(c, opts)
	})
}

func Signin(c *gin.Context, opts Options) {
	var request dto.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.Fail(c, http.StatusBadRequest, errMissingAttributes)
		return
	}
	email := strings.TrimSpace(request.Email)
	if email == "" || request.Password == "" {
		controller.Fail(c, http.StatusBadRequest, errMissingAttributes)
		return
	}

	ctx := c.Request.Context()
	if err := opts.Limiter.Check(ctx, email); err != nil {
		if errors.Is(err, services.ErrLoginThrottled) {
			controller.Fail(c, http.StatusTooManyRequests, err.Error())
			return
		}
		// the limiter fails open
		opts.Log.Warn().Err(err).Msg("login limiter check")
	}

	// ค้นหาผู้ใช้จากฐานข้อมูล
	user, err := opts.Store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "User not found. Please register")
			return
		}
		opts.Log.Error().Err(err).Msg("find user by email")
		controller.Fail(c, http.StatusInternalServerError, "Failed to find user")
		return
	}

	// ตรวจสอบรหัสผ่าน
	if !services.CheckPassword(user.Password, request.Password) {
		if err := opts.Limiter.RecordFailure(ctx, email); err != nil {
			opts.Log.Warn().Err(err).Msg("login limiter record")
		}
		controller.Fail(c, http.StatusBadRequest, "Wrong password retry")
		return
	}
	if err := opts.Limiter.Reset(ctx, email); err != nil {
		opts.Log.Warn().Err(err).Msg("login limiter reset")
	}

	// สร้าง tokens
	claims := model.NewTokenClaims(*user)
	accessToken, err := opts.Codec.MintAccess(claims)
	if err != nil {
		controller.Fail(c, http.StatusInternalServerError, "Failed to create access token")
		return
	}
	refreshToken, err := opts.Codec.MintRefresh(claims)
	if err != nil {
		controller.Fail(c, http.StatusInternalServerError, "Failed to create refresh token")
		return
	}

	if err := opts.Store.SetRefreshToken(ctx, user.UserID, services.HashRefreshToken(refreshToken)); err != nil {
		opts.Log.Error().Err(err).Str("username", user.Username).Msg("store refresh token")
		controller.Fail(c, http.StatusInternalServerError, "Failed to store refresh token")
		return
	}

	opts.Cookies.Issue(c, services.AccessTokenCookie, accessToken, opts.Codec.AccessTTL())
	opts.Cookies.Issue(c, services.RefreshTokenCookie, refreshToken, opts.Codec.RefreshTTL())

	opts.Log.Info().Str("username", user.Username).Msg("user logged in")
	controller.Respond(c, http.StatusOK, dto.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}
