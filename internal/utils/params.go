package utils

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseUintParam parses a numeric path parameter.
func ParseUintParam(ctx *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(ctx.Param(name), 10, 32)

	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}

	return uint(value), nil
}
