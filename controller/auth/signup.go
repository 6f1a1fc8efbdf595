package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"ezwallet/controller"
	"ezwallet/dto"
	"ezwallet/model"
	"ezwallet/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const errMissingAttributes = "Missing or empty attributes"

func SignUpController(router gin.IRouter, opts Options) {
	router.POST("/register", func(c *gin.Context) {
		Signup(c, opts, model.RoleRegular)
	})
	router.POST("/admin", func(c *gin.Context) {
		Signup(c, opts, model.RoleAdmin)
	})
}

func Signup(c *gin.Context, opts Options, role model.Role) {
	var request dto.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.Fail(c, http.StatusBadRequest, errMissingAttributes)
		return
	}
	username := strings.TrimSpace(request.Username)
	email := strings.TrimSpace(request.Email)
	if username == "" || email == "" || request.Password == "" {
		controller.Fail(c, http.StatusBadRequest, errMissingAttributes)
		return
	}
	if !services.IsValidEmail(email) {
		controller.Fail(c, http.StatusBadRequest, "Invalid email format")
		return
	}

	ctx := c.Request.Context()
	if _, err := opts.Store.GetUserByEmail(ctx, email); err == nil {
		controller.Fail(c, http.StatusBadRequest, "email already registered")
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		opts.Log.Error().Err(err).Msg("check existing email")
		controller.Fail(c, http.StatusInternalServerError, "Failed to check existing email")
		return
	}
	if _, err := opts.Store.GetUserByUsername(ctx, username); err == nil {
		controller.Fail(c, http.StatusBadRequest, "username already used")
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		opts.Log.Error().Err(err).Msg("check existing username")
		controller.Fail(c, http.StatusInternalServerError, "Failed to check existing username")
		return
	}

	hashedPassword, err := services.HashPassword(request.Password)
	if err != nil {
		controller.Fail(c, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := model.User{
		UserID:    uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: time.Now(),
	}
	if err := opts.Store.CreateUser(ctx, &user); err != nil {
		opts.Log.Error().Err(err).Str("username", username).Msg("create user")
		controller.Fail(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	message := "User added successfully"
	if role == model.RoleAdmin {
		message = "Admin added successfully"
	}
	controller.Respond(c, http.StatusOK, dto.MessageResponse{Message: message})
}
