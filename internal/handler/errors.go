package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"Lee_Meetup/internal/middleware"
	"Lee_Meetup/internal/pkg"
)

// respondError 业务错误统一转成 {"message": ...}，5xx 不暴露底层原因
func respondError(c *gin.Context, err error) {
	status := pkg.KindOf(err).Status()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"message": pkg.Message(err)})
}

// bindJSON 绑定失败一律按缺少字段处理
func bindJSON(c *gin.Context, req any, msg string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, errors.Join(pkg.Validation(msg), err))
		return false
	}
	return true
}

func currentUser(c *gin.Context) string {
	return c.GetString(middleware.ContextUserIDKey)
}
