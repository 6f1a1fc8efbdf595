package transaction

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ezwallet/controller"
	"ezwallet/dto"
	"ezwallet/middleware"
	"ezwallet/model"
	"ezwallet/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TransactionController(router gin.IRouter, store services.Store, guard *middleware.Guard, log zerolog.Logger) {
	userRoutes := router.Group("/users/:username/transactions")
	{
		userRoutes.POST("", guard.RequireUser("username"), func(c *gin.Context) {
			CreateTransaction(c, store, log)
		})
		userRoutes.GET("", guard.RequireUser("username"), func(c *gin.Context) {
			filter, err := ParseFilter(c)
			if err != nil {
				controller.Fail(c, http.StatusBadRequest, err.Error())
				return
			}
			ListUserTransactions(c, store, log, filter)
		})
		userRoutes.GET("/category/:category", guard.RequireUser("username"), func(c *gin.Context) {
			ListUserTransactionsByCategory(c, store, log)
		})
		userRoutes.DELETE("",
			guard.RequireAny(middleware.UserRequirement("username"), middleware.AdminRequirement),
			func(c *gin.Context) {
				DeleteTransaction(c, store, log)
			})
	}

	adminRoutes := router.Group("/transactions", guard.RequireAdmin())
	{
		adminRoutes.GET("", func(c *gin.Context) {
			ListAllTransactions(c, store, log)
		})
		adminRoutes.DELETE("", func(c *gin.Context) {
			DeleteTransactions(c, store, log)
		})
		adminRoutes.GET("/users/:username", func(c *gin.Context) {
			ListUserTransactions(c, store, log, Filter{})
		})
		adminRoutes.GET("/users/:username/category/:category", func(c *gin.Context) {
			ListUserTransactionsByCategory(c, store, log)
		})
	}
}

func CreateTransaction(c *gin.Context, store services.Store, log zerolog.Logger) {
	var request dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	username := strings.TrimSpace(request.Username)
	categoryType := strings.TrimSpace(request.Type)
	if username == "" || categoryType == "" {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	if username != c.Param("username") {
		controller.Fail(c, http.StatusBadRequest, "Username in body doesn't match the url params")
		return
	}

	ctx := c.Request.Context()
	if !userExists(c, store, log, username) {
		return
	}
	category, err := store.GetCategory(ctx, categoryType)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "Category not found")
			return
		}
		log.Error().Err(err).Msg("get category")
		controller.Fail(c, http.StatusInternalServerError, "Failed to get category")
		return
	}

	tx := model.Transaction{
		TransactionID: uuid.NewString(),
		Username:      username,
		Amount:        *request.Amount,
		Type:          category.Type,
		Date:          time.Now(),
	}
	if err := store.CreateTransaction(ctx, &tx); err != nil {
		log.Error().Err(err).Str("username", username).Msg("create transaction")
		controller.Fail(c, http.StatusInternalServerError, "Failed to create transaction")
		return
	}
	controller.Respond(c, http.StatusOK, toResponse(tx, category.Color))
}

func ListUserTransactions(c *gin.Context, store services.Store, log zerolog.Logger, filter Filter) {
	username := c.Param("username")
	if !userExists(c, store, log, username) {
		return
	}
	listTransactions(c, store, log, filter, username)
}

func ListUserTransactionsByCategory(c *gin.Context, store services.Store, log zerolog.Logger) {
	username := c.Param("username")
	if !userExists(c, store, log, username) {
		return
	}
	if !CategoryExists(c, store, log, c.Param("category")) {
		return
	}
	listTransactions(c, store, log, Filter{Category: c.Param("category")}, username)
}

func ListAllTransactions(c *gin.Context, store services.Store, log zerolog.Logger) {
	listTransactions(c, store, log, Filter{})
}

func listTransactions(c *gin.Context, store services.Store, log zerolog.Logger, filter Filter, usernames ...string) {
	response, err := ListWithColors(c.Request.Context(), store, filter, usernames...)
	if err != nil {
		log.Error().Err(err).Strs("usernames", usernames).Msg("list transactions")
		controller.Fail(c, http.StatusInternalServerError, "Failed to list transactions")
		return
	}
	controller.Respond(c, http.StatusOK, response)
}

// DeleteTransaction removes one transaction of the user named in the url.
func DeleteTransaction(c *gin.Context, store services.Store, log zerolog.Logger) {
	var request dto.DeleteTransactionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	username := c.Param("username")
	if !userExists(c, store, log, username) {
		return
	}

	ctx := c.Request.Context()
	tx, err := store.GetTransaction(ctx, request.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "Transaction not found")
			return
		}
		log.Error().Err(err).Msg("get transaction")
		controller.Fail(c, http.StatusInternalServerError, "Failed to get transaction")
		return
	}
	if tx.Username != username {
		controller.Fail(c, http.StatusBadRequest, "Transaction does not belong to the user")
		return
	}

	if err := store.DeleteTransaction(ctx, tx.TransactionID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "Transaction not found")
			return
		}
		log.Error().Err(err).Str("id", tx.TransactionID).Msg("delete transaction")
		controller.Fail(c, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}
	controller.Respond(c, http.StatusOK, dto.MessageResponse{Message: "Transaction deleted"})
}

// DeleteTransactions removes every listed transaction, or none when one of
// the ids is unknown.
func DeleteTransactions(c *gin.Context, store services.TransactionStore, log zerolog.Logger) {
	var request dto.DeleteTransactionsRequest
	if err := c.ShouldBindJSON(&request); err != nil || len(request.IDs) == 0 {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	seen := make(map[string]bool, len(request.IDs))
	ids := make([]string, 0, len(request.IDs))
	for _, id := range request.IDs {
		if strings.TrimSpace(id) == "" {
			controller.Fail(c, http.StatusBadRequest, "Transaction ids cannot be empty")
			return
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if err := store.DeleteTransactions(c.Request.Context(), ids...); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "One or more transactions not found")
			return
		}
		log.Error().Err(err).Strs("ids", ids).Msg("delete transactions")
		controller.Fail(c, http.StatusInternalServerError, "Failed to delete transactions")
		return
	}
	controller.Respond(c, http.StatusOK, dto.MessageResponse{Message: "Transactions deleted"})
}

// ListWithColors returns the transactions of usernames (all when empty) that
// match filter, each joined with the colour of its category.
func ListWithColors(ctx context.Context, store services.Store, filter Filter, usernames ...string) ([]dto.TransactionResponse, error) {
	txs, err := store.ListTransactions(ctx, usernames...)
	if err != nil {
		return nil, err
	}
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	colors := make(map[string]string, len(categories))
	for _, category := range categories {
		colors[category.Type] = category.Color
	}

	response := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		if filter.Match(tx) {
			response = append(response, toResponse(tx, colors[tx.Type]))
		}
	}
	return response, nil
}

func toResponse(tx model.Transaction, color string) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:       tx.TransactionID,
		Username: tx.Username,
		Amount:   tx.Amount,
		Type:     tx.Type,
		Color:    color,
		Date:     tx.Date,
	}
}

// CategoryExists answers 400 and returns false when categoryType is unknown.
func CategoryExists(c *gin.Context, store services.CategoryStore, log zerolog.Logger, categoryType string) bool {
	if _, err := store.GetCategory(c.Request.Context(), categoryType); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "Category not found")
			return false
		}
		log.Error().Err(err).Msg("get category")
		controller.Fail(c, http.StatusInternalServerError, "Failed to get category")
		return false
	}
	return true
}

func userExists(c *gin.Context, store services.UserStore, log zerolog.Logger, username string) bool {
	if _, err := store.GetUserByUsername(c.Request.Context(), username); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "User not found")
			return false
		}
		log.Error().Err(err).Msg("get user")
		controller.Fail(c, http.StatusInternalServerError, "Failed to get user")
		return false
	}
	return true
}
