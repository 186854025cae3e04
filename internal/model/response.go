package model

import (
	"fmt"
	"net/http"

	"github.com/dnzakizamani/simple-login/internal/apperr"
	"github.com/dnzakizamani/simple-login/pkg/logger"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(data interface{}) Response {
	return Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

func Error(code int, message string) Response {
	return Response{
		Code:    code,
		Message: message,
	}
}

// HandleError 统一错误处理：按 apperr 分类映射状态码，记录请求上下文日志
// 非业务错误降级为500，原始信息只进日志不返回给调用方
func HandleError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	message := err.Error()
	if kind == apperr.Internal {
		message = "服务器内部错误"
	}

	userID := ""
	if uid, exists := c.Get("user_id"); exists {
		userID = fmt.Sprintf("%v", uid)
	}

	fullURL := c.Request.URL.Path
	if q := c.Request.URL.RawQuery; q != "" {
		fullURL = fmt.Sprintf("%s?%s", fullURL, q)
	}

	if status >= http.StatusInternalServerError {
		logger.Errorf("Request error [%d]: %v | %s %s | client=%s user=%s",
			status, err, c.Request.Method, fullURL, c.ClientIP(), userID)
	} else {
		logger.Warnf("Request rejected [%d]: %v | %s %s | client=%s user=%s",
			status, err, c.Request.Method, fullURL, c.ClientIP(), userID)
	}

	c.JSON(status, Error(status, message))
}

// PaginatedResponse 分页响应
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// NewPaginatedResponse 构建分页响应
func NewPaginatedResponse(data interface{}, total int64, page, pageSize int) PaginatedResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}
