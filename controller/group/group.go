package group

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"ezwallet/controller"
	"ezwallet/controller/transaction"
	"ezwallet/dto"
	"ezwallet/middleware"
	"ezwallet/model"
	"ezwallet/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func GroupController(router gin.IRouter, store services.Store, guard *middleware.Guard, log zerolog.Logger) {
	routes := router.Group("/groups")
	{
		routes.POST("", guard.RequireSimple(), func(c *gin.Context) {
			CreateGroup(c, store, log)
		})
		routes.GET("", guard.RequireAdmin(), func(c *gin.Context) {
			ListGroups(c, store, log)
		})
		routes.GET("/:name", guard.RequireSimple(), func(c *gin.Context) {
			if group, ok := memberGroup(c, store, guard, log); ok {
				controller.Respond(c, http.StatusOK, toResponse(*group))
			}
		})
		routes.GET("/:name/transactions", guard.RequireSimple(), func(c *gin.Context) {
			if group, ok := memberGroup(c, store, guard, log); ok {
				listGroupTransactions(c, store, log, *group, transaction.Filter{})
			}
		})
		routes.GET("/:name/transactions/category/:category", guard.RequireSimple(), func(c *gin.Context) {
			if group, ok := memberGroup(c, store, guard, log); ok {
				listGroupTransactionsByCategory(c, store, log, *group)
			}
		})
	}

	router.GET("/transactions/groups/:name", guard.RequireAdmin(), func(c *gin.Context) {
		if group, ok := loadGroup(c, store, log); ok {
			listGroupTransactions(c, store, log, *group, transaction.Filter{})
		}
	})
	router.GET("/transactions/groups/:name/category/:category", guard.RequireAdmin(), func(c *gin.Context) {
		if group, ok := loadGroup(c, store, log); ok {
			listGroupTransactionsByCategory(c, store, log, *group)
		}
	})
}

// CreateGroup makes a group from the registered users among memberEmails.
// The caller always joins; unknown e-mails are reported back.
func CreateGroup(c *gin.Context, store services.Store, log zerolog.Logger) {
	var request dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	name := strings.TrimSpace(request.Name)
	if name == "" {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	claims, ok := middleware.Claims(c)
	if !ok {
		controller.Fail(c, http.StatusUnauthorized, services.CauseUnauthorized)
		return
	}

	ctx := c.Request.Context()
	if _, err := store.GetGroup(ctx, name); err == nil {
		controller.Fail(c, http.StatusBadRequest, "Group already exists")
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		log.Error().Err(err).Msg("check existing group")
		controller.Fail(c, http.StatusInternalServerError, "Failed to check existing group")
		return
	}

	group := model.Group{Name: name, CreatedAt: time.Now()}
	membersNotFound := make([]string, 0)
	for _, email := range append([]string{claims.Email}, request.MemberEmails...) {
		email = strings.TrimSpace(email)
		if email == "" || group.HasMember(email) {
			continue
		}
		if !services.IsValidEmail(email) {
			controller.Fail(c, http.StatusBadRequest, "Invalid email format")
			return
		}
		user, err := store.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				membersNotFound = append(membersNotFound, email)
				continue
			}
			log.Error().Err(err).Msg("find group member")
			controller.Fail(c, http.StatusInternalServerError, "Failed to find group member")
			return
		}
		group.Members = append(group.Members, model.GroupMember{
			Email:    user.Email,
			Username: user.Username,
			UserID:   user.UserID,
		})
	}
	if len(group.Members) < 2 {
		controller.Fail(c, http.StatusBadRequest, "None of the member emails belong to a registered user")
		return
	}

	if err := store.CreateGroup(ctx, &group); err != nil {
		log.Error().Err(err).Str("name", name).Msg("create group")
		controller.Fail(c, http.StatusInternalServerError, "Failed to create group")
		return
	}
	controller.Respond(c, http.StatusOK, dto.CreateGroupResponse{
		Group:           toResponse(group),
		MembersNotFound: membersNotFound,
	})
}

func ListGroups(c *gin.Context, store services.GroupStore, log zerolog.Logger) {
	groups, err := store.ListGroups(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list groups")
		controller.Fail(c, http.StatusInternalServerError, "Failed to list groups")
		return
	}

	response := make([]dto.GroupResponse, 0, len(groups))
	for _, group := range groups {
		response = append(response, toResponse(group))
	}
	controller.Respond(c, http.StatusOK, response)
}

// memberGroup loads the group of the url and lets through its members and
// admins.
func memberGroup(c *gin.Context, store services.GroupStore, guard *middleware.Guard, log zerolog.Logger) (*model.Group, bool) {
	group, ok := loadGroup(c, store, log)
	if !ok {
		return nil, false
	}
	decision := guard.Verify(c, services.Group(group.MemberEmails()))
	if !decision.Authorized {
		controller.Fail(c, http.StatusUnauthorized, decision.Cause)
		return nil, false
	}
	return group, true
}

func loadGroup(c *gin.Context, store services.GroupStore, log zerolog.Logger) (*model.Group, bool) {
	group, err := store.GetGroup(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "Group not found")
			return nil, false
		}
		log.Error().Err(err).Msg("get group")
		controller.Fail(c, http.StatusInternalServerError, "Failed to get group")
		return nil, false
	}
	return group, true
}

func listGroupTransactionsByCategory(c *gin.Context, store services.Store, log zerolog.Logger, group model.Group) {
	category := c.Param("category")
	if !transaction.CategoryExists(c, store, log, category) {
		return
	}
	listGroupTransactions(c, store, log, group, transaction.Filter{Category: category})
}

func listGroupTransactions(c *gin.Context, store services.Store, log zerolog.Logger, group model.Group, filter transaction.Filter) {
	response, err := transaction.ListWithColors(c.Request.Context(), store, filter, group.MemberUsernames()...)
	if err != nil {
		log.Error().Err(err).Str("group", group.Name).Msg("list group transactions")
		controller.Fail(c, http.StatusInternalServerError, "Failed to list transactions")
		return
	}
	controller.Respond(c, http.StatusOK, response)
}

func toResponse(group model.Group) dto.GroupResponse {
	return dto.GroupResponse{Name: group.Name, Members: group.MemberEmails()}
}
