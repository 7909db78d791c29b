package pagination

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// contextKey stores the query plan in the gin context.
const contextKey = "pagination"

// Middleware plans pagination for every request before handlers run,
// rejecting out-of-range parameters with a 400.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, errPlan := Plan(c.Request.URL.Query())
		if errPlan != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    http.StatusBadRequest,
				"message": errPlan.Error(),
			})
			return
		}
		c.Set(contextKey, page)
		c.Next()
	}
}

// FromContext returns the request's query plan, or a default plan when the
// middleware did not run.
func FromContext(c *gin.Context) *Page {
	if value, ok := c.Get(contextKey); ok {
		if page, ok := value.(*Page); ok {
			return page
		}
	}
	return &Page{Limit: DefaultLimit, Filters: map[string]string{}}
}
