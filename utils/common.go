package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func PaginatedResponse(c *gin.Context, data interface{}, total int64, page int64, limit int64) {
	pages := int64(1)
	if limit > 0 && total > 0 {
		pages = (total + limit - 1) / limit
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": pages,
		},
	})
}

// QueryInt 读取整数查询参数，缺失或非法时返回默认值
func QueryInt(c *gin.Context, key string, defaultValue int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultValue
	}
	v, ok := ParseInt(raw)
	if !ok {
		return defaultValue
	}
	return v
}

// QueryBoolPtr 读取可选布尔查询参数，未提供时返回nil
func QueryBoolPtr(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}
