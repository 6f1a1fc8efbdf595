package controller

import (
	"ezwallet/dto"
	"ezwallet/middleware"

	"github.com/gin-gonic/gin"
)

// Respond wraps data in the success envelope, carrying the renewal advisory
// when the guard refreshed the access token during this request.
func Respond(c *gin.Context, code int, data any) {
	c.JSON(code, dto.DataResponse{
		Data:                  data,
		RefreshedTokenMessage: middleware.RefreshedTokenMessage(c),
	})
}

func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
