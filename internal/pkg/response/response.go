package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"vaccinebooking/internal/pkg/apperror"
)

func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"message": message,
		"data":    data,
		"err":     gin.H{},
	})
}

func Error(c *gin.Context, statusCode int, code string, message string, explanation interface{}) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"code":    code,
		"message": message,
		"err":     explanation,
		"data":    gin.H{},
	})
}

// Fail renders err with the status its kind maps to. Unknown errors are
// reported as service errors carrying the raw message.
func Fail(c *gin.Context, err error) {
	var ae *apperror.Error
	if !errors.As(err, &ae) {
		ae = &apperror.Error{Kind: apperror.KindService, Message: "Something went wrong", Explanation: err.Error()}
	}
	_ = c.Error(err)
	Error(c, apperror.HTTPStatus(ae.Kind), string(ae.Kind), ae.Message, ae.Explanation)
}
