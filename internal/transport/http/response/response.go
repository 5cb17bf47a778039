package response

import "github.com/gin-gonic/gin"

// Body is the envelope every endpoint writes.
type Body struct {
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Token   string            `json:"token,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func OK(msg string, data any) Body { return Body{Message: msg, Data: data} }

// Fail builds an error body; an empty errText uses the status default.
func Fail(status int, msg, errText string) Body {
	if errText == "" {
		errText = ErrorText(status)
	}
	return Body{Message: msg, Error: errText}
}

func Abort(c *gin.Context, status int, msg, errText string) {
	c.AbortWithStatusJSON(status, Fail(status, msg, errText))
}
