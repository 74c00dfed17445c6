package controllers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
)

// pathID parses a positive integer path parameter. ok is false when the
// value cannot name an existing row.
func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// bindOptionalJSON decodes the body into v, treating an empty body as {}
func bindOptionalJSON(ctx *gin.Context, v any) error {
	if err := ctx.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// fail attaches err for the error handler
func fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
}
