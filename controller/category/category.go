package category

import (
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
	"github.com/rs/zerolog"
)

func CategoryController(router gin.IRouter, store services.Store, guard *middleware.Guard, log zerolog.Logger) {
	routes := router.Group("/categories")
	{
		routes.POST("", guard.RequireAdmin(), func(c *gin.Context) {
			CreateCategory(c, store, log)
		})
		routes.GET("", guard.RequireSimple(), func(c *gin.Context) {
			ListCategories(c, store, log)
		})
		routes.PATCH("/:type", guard.RequireAdmin(), func(c *gin.Context) {
			UpdateCategory(c, store, log)
		})
	}
}

func CreateCategory(c *gin.Context, store services.CategoryStore, log zerolog.Logger) {
	var request dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	categoryType := strings.TrimSpace(request.Type)
	color := strings.TrimSpace(request.Color)
	if categoryType == "" || color == "" {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}

	ctx := c.Request.Context()
	if _, err := store.GetCategory(ctx, categoryType); err == nil {
		controller.Fail(c, http.StatusBadRequest, "Category type already exists")
		return
	} else if !errors.Is(err, services.ErrNotFound) {
		log.Error().Err(err).Msg("check existing category")
		controller.Fail(c, http.StatusInternalServerError, "Failed to check existing category")
		return
	}

	category := model.Category{Type: categoryType, Color: color, CreatedAt: time.Now()}
	if err := store.CreateCategory(ctx, &category); err != nil {
		log.Error().Err(err).Str("type", categoryType).Msg("create category")
		controller.Fail(c, http.StatusInternalServerError, "Failed to create category")
		return
	}
	controller.Respond(c, http.StatusOK, dto.CategoryResponse{Type: category.Type, Color: category.Color})
}

func ListCategories(c *gin.Context, store services.CategoryStore, log zerolog.Logger) {
	categories, err := store.ListCategories(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("list categories")
		controller.Fail(c, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	response := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		response = append(response, dto.CategoryResponse{Type: category.Type, Color: category.Color})
	}
	controller.Respond(c, http.StatusOK, response)
}

// UpdateCategory renames and recolours the category of the url. Transactions
// of the old type follow the new one.
func UpdateCategory(c *gin.Context, store services.Store, log zerolog.Logger) {
	var request dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}
	newType := strings.TrimSpace(request.Type)
	color := strings.TrimSpace(request.Color)
	if newType == "" || color == "" {
		controller.Fail(c, http.StatusBadRequest, "Missing or empty attributes")
		return
	}

	ctx := c.Request.Context()
	oldType := c.Param("type")
	current, err := store.GetCategory(ctx, oldType)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "Category not found")
			return
		}
		log.Error().Err(err).Msg("get category")
		controller.Fail(c, http.StatusInternalServerError, "Failed to get category")
		return
	}
	if newType != oldType {
		if _, err := store.GetCategory(ctx, newType); err == nil {
			controller.Fail(c, http.StatusBadRequest, "Category type already exists")
			return
		} else if !errors.Is(err, services.ErrNotFound) {
			log.Error().Err(err).Msg("check existing category")
			controller.Fail(c, http.StatusInternalServerError, "Failed to check existing category")
			return
		}
	}

	updated := model.Category{Type: newType, Color: color, CreatedAt: current.CreatedAt}
	if err := store.UpdateCategory(ctx, oldType, &updated); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			controller.Fail(c, http.StatusBadRequest, "Category not found")
			return
		}
		log.Error().Err(err).Str("type", oldType).Msg("update category")
		controller.Fail(c, http.StatusInternalServerError, "Failed to update category")
		return
	}

	count := 0
	if newType != oldType {
		if count, err = store.RetypeTransactions(ctx, oldType, newType); err != nil {
			log.Error().Err(err).Str("type", oldType).Msg("retype transactions")
			controller.Fail(c, http.StatusInternalServerError, "Failed to update transactions")
			return
		}
	}
	controller.Respond(c, http.StatusOK, dto.UpdateCategoryResponse{Message: "Category edited successfully", Count: count})
}
