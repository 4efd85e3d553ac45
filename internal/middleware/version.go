package middleware

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/admin-records/pkg/httputil"
)

const (
	HeaderAcceptVersion = "Accept-Version"
	HeaderAPIVersion    = "X-API-Version"
	ContextAPIVersion   = "api_version"
)

var versionRegex = regexp.MustCompile(`^\d+\.\d+$`)

// VersionConfig represents version middleware configuration
type VersionConfig struct {
	Current   string
	Supported []string
}

func DefaultVersionConfig() VersionConfig {
	return VersionConfig{
		Current:   "1.0",
		Supported: []string{"1.0"},
	}
}

// Version negotiates the API version from Accept-Version. A missing header
// means Current; a malformed one is a 400 and an unsupported one a 406.
func Version(config VersionConfig) gin.HandlerFunc {
	supported := make(map[string]struct{}, len(config.Supported))
	for _, v := range config.Supported {
		supported[v] = struct{}{}
	}

	return func(c *gin.Context) {
		requested := c.GetHeader(HeaderAcceptVersion)
		if requested == "" {
			requested = config.Current
		}

		if !versionRegex.MatchString(requested) {
			abortVersion(c, http.StatusBadRequest, "invalid version format, use major.minor")
			return
		}
		if _, ok := supported[requested]; !ok {
			abortVersion(c, http.StatusNotAcceptable, fmt.Sprintf("API version %s not supported", requested))
			return
		}

		c.Set(ContextAPIVersion, requested)
		c.Header(HeaderAPIVersion, requested)
		c.Next()
	}
}

func abortVersion(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, httputil.Response{
		Success: false,
		Error: &httputil.Error{
			Code:    status,
			Message: msg,
		},
	})
}
