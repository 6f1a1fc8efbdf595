package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ezwallet/controller"
	"ezwallet/dto"
	"ezwallet/middleware"
	"ezwallet/model"
	"ezwallet/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func UserController(router gin.IRouter, store services.Store, guard *middleware.Guard, log zerolog.Logger) {
	router.GET("/users", guard.RequireAdmin(), func(c *gin.Context) {
		ListUsers(c, store, log)
	})
	router.DELETE("/users", guard.RequireAdmin(), func(c *gin.Context) {
		DeleteUser(c, store, log)
	})
	router.GET("/users/:username",
		guard.RequireAny(middleware.UserRequirement("username"), middleware.AdminRequirement),
		func(c *gin.Context) {
			GetUser(c, store, log)
		})
}

func ListUsers(c *gin.Context, store services.UserStore, log zerolog.Logger) {
	users, err := store.ListUsers(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list users")
		controller.Fail(c, http.StatusInternalServerError, "Failed to list users")
		return
	}

	userResponses := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		userResponses = append(userResponses, dto.NewUserResponse(user))
	}
	controller.Respond(c, http.StatusOK, userResponses)
}

func GetUser(c *gin.Context, store services.UserStore, log zerolog.Logger) {
	user, err := store.GetUserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "User not found")
			return
		}
		log.Error().Err(err).Msg("get user")
		controller.Fail(c, http.StatusInternalServerError, "Failed to get user")
		return
	}
	controller.Respond(c, http.StatusOK, dto.NewUserResponse(*user))
}

// DeleteUser removes a regular user along with their transactions and group
// memberships. A group left without members is deleted.
func DeleteUser(c *gin.Context, store services.Store, log zerolog.Logger) {
	var request dto.DeleteUserRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	email := strings.TrimSpace(request.Email)
	if email == "" {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	if !services.IsValidEmail(email) {
		controller.Fail(c, http.StatusBadRequest, "Invalid email format")
		return
	}

	ctx := c.Request.Context()
	user, err := store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "User not found")
			return
		}
		log.Error().Err(err).Msg("get user")
		controller.Fail(c, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if user.Role == model.RoleAdmin {
		controller.Fail(c, http.StatusBadRequest, "Cannot delete an admin")
		return
	}

	logger := log.With().Str("username", user.Username).Logger()
	deleted, err := store.DeleteUserTransactions(ctx, user.Username)
	if err != nil {
		logger.Error().Err(err).Msg("delete user transactions")
		controller.Fail(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	leftGroup, err := leaveGroups(ctx, store, email)
	if err != nil {
		logger.Error().Err(err).Msg("remove user from groups")
		controller.Fail(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if err := store.DeleteUser(ctx, user.UserID); err != nil && !errors.Is(err, services.ErrNotFound) {
		logger.Error().Err(err).Msg("delete user")
		controller.Fail(c, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	logger.Info().Int("transactions", deleted).Bool("group", leftGroup).Msg("user deleted")
	controller.Respond(c, http.StatusOK, dto.DeleteUserResponse{
		DeletedTransactions: deleted,
		DeletedFromGroup:    leftGroup,
	})
}

func leaveGroups(ctx context.Context, store services.GroupStore, email string) (bool, error) {
	groups, err := store.ListGroups(ctx)
	if err != nil {
		return false, err
	}

	left := false
	for _, group := range groups {
		if !group.HasMember(email) {
			continue
		}
		left = true
		if len(group.Members) == 1 {
			if err := store.DeleteGroup(ctx, group.Name); err != nil && !errors.Is(err, services.ErrNotFound) {
				return left, err
			}
			continue
		}
		members := make([]model.GroupMember, 0, len(group.Members)-1)
		for _, member := range group.Members {
			if member.Email != email {
				members = append(members, member)
			}
		}
		group.Members = members
		if err := store.UpdateGroup(ctx, &group); err != nil {
			return left, err
		}
	}
	return left, nil
}
