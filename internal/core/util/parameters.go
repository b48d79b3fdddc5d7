package util

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"todoitems/internal/core/domain"
)

func ParamsToMap[T any](c *gin.Context) (T, error) {
	var params T

	if err := c.ShouldBindJSON(&params); err != nil {
		return params, domain.WrapError(domain.ErrCodeInvalid, "malformed request body", err)
	}

	return params, nil
}

// IDParam reads an integer path parameter.
func IDParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("%s must be an integer", name), err)
	}

	return id, nil
}
