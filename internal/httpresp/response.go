// Package httpresp holds the success envelopes shared by the JSON handlers.
// Errors go through httperr.
package httpresp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Page wraps a listing. Items is never null on the wire.
type Page[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
}

// List writes items as a Page with status 200.
func List[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, Page[T]{Data: items, Total: len(items)})
}

// Created writes a freshly created resource with status 201.
func Created(c *gin.Context, resource any) {
	c.JSON(http.StatusCreated, resource)
}
