package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/apperr"
)

type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

func (g *Gateway) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		g.logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, envelope{
		Success: false,
		Message: apperr.Message(err),
		Error:   apperr.KindOf(err).String(),
	})
}

func (g *Gateway) abort(c *gin.Context, err error) {
	g.fail(c, err)
	c.Abort()
}

func badRequest(err error) error {
	return apperr.Wrap(apperr.KindValidation, err, "invalid request body")
}
