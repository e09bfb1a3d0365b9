package ssl

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// SecureHeaders sets the usual hardening headers. With redirect enabled plain
// HTTP requests are redirected to host:port over TLS.
func SecureHeaders(host string, port int, redirect, development bool) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:          redirect,
		SSLHost:              host + ":" + strconv.Itoa(port),
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		ReferrerPolicy:       "no-referrer",
		IsDevelopment:        development,
		STSSeconds:           15552000,
		STSIncludeSubdomains: true,
	})

	return func(c *gin.Context) {
		// On error secure has already written the response (redirect), so stop here.
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	}
}
