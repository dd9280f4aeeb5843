package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Mil05h/calories-ai/apperr"
)

// respondError maps an error to its HTTP status and stable wire code.
// Internal causes are not echoed to callers; the short message is.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	message := "internal error"
	var e *apperr.Error
	if errors.As(err, &e) {
		message = e.Message
	}

	c.JSON(apperr.HTTPStatus(kind), gin.H{
		"error": message,
		"code":  apperr.Code(kind),
	})
}
