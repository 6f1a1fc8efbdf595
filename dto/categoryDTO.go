package dto

type CreateCategoryRequest struct {
	Type  string `json:"type" binding:"required"`
	Color string `json:"color" binding:"required"`
}

type CategoryResponse struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

type UpdateCategoryRequest struct {
	Type  string `json:"type" binding:"required"`
	Color string `json:"color" binding:"required"`
}

type UpdateCategoryResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
