package status

import "github.com/gin-gonic/gin"

// Machine-readable API status codes. The leading three digits mirror the
// HTTP status they accompany.
const (
	AccountCreated = 20000
	LoginSucceeded = 20001

	InvalidBody      = 40000
	InvalidBodyTypes = 40001
	InvalidID        = 40002

	Unauthorized       = 40100
	InvalidCredentials = 40101

	MissingPermissions = 40300

	UsernameTaken = 40900

	InternalError = 50000
)

// messages maps status codes to their canonical descriptions.
var messages = map[int]string{
	AccountCreated: "Your account has successfully been created.",
	LoginSucceeded: "You have successfully logged in.",

	InvalidBody:      "The provided content body is not valid.",
	InvalidBodyTypes: "The provided content body's value types are not valid.",
	InvalidID:        "The provided ID was not a valid numerical value.",

	Unauthorized:       "You are not authorized to perform this request.",
	InvalidCredentials: "The username or password combination is invalid.",

	MissingPermissions: "You do not have the permissions required to perform this request.",

	UsernameTaken: "The username chosen is currently in use.",

	InternalError: "The server has encountered an unexpected error, and is unable to recover this request.",
}

// Error writes a catalog error response.
func Error(c *gin.Context, httpStatus, code int) {
	c.JSON(httpStatus, gin.H{
		"status":  httpStatus,
		"code":    code,
		"message": messages[code],
	})
}

// Respond writes a catalog success response with a data payload.
func Respond(c *gin.Context, httpStatus, code int, data any) {
	c.JSON(httpStatus, gin.H{
		"status":  httpStatus,
		"code":    code,
		"message": messages[code],
		"data":    data,
	})
}
