package response

import "github.com/gin-gonic/gin"

func RespondJSON(c *gin.Context, code int, success bool, message string, data interface{}) {
	c.JSON(code, APIResponse{
		Success: success,
		Message: message,
		Data:    data,
	})
}

// Fail writes a failure envelope and aborts the handler chain
func Fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, APIResponse{
		Success: false,
		Message: message,
	})
}
