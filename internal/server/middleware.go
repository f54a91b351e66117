package server

import (
	"crypto/subtle"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/rentaldocs/internal/config"
	documentdomain "github.com/smallbiznis/rentaldocs/internal/document/domain"
	obslogger "github.com/smallbiznis/rentaldocs/internal/observability/logger"
	"golang.org/x/crypto/bcrypt"
)

const contextKindKey = "document_kind"

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their JSON name.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// overflowHeaders lists every header the preview client reads.
func overflowHeaders() []string {
	headers := []string{"Content-Disposition", "X-Request-Id", obslogger.PreviewGenerationHeader}
	for _, kind := range []documentdomain.Kind{documentdomain.KindContract, documentdomain.KindInvoice} {
		prefix := kind.HeaderPrefix()
		headers = append(headers, prefix+"-Overflow", prefix+"-Overflow-After", prefix+"-Compact")
	}
	return headers
}

func CORS(cfg config.Config) gin.HandlerFunc {
	origins := make([]string, 0, 2)
	for _, origin := range strings.Split(cfg.ClientOrigin, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
			break
		}
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", obslogger.PreviewGenerationHeader},
		ExposeHeaders: overflowHeaders(),
		MaxAge:        12 * time.Hour,
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	return cors.New(corsCfg)
}

// BasicAuth guards /api when a password or bcrypt hash is configured.
func BasicAuth(cfg config.Config) gin.HandlerFunc {
	if !cfg.BasicAuthEnabled() {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}
		user, password, ok := c.Request.BasicAuth()
		if !ok || !checkCredentials(cfg, user, password) {
			c.Header("WWW-Authenticate", `Basic realm="rentaldocs", charset="UTF-8"`)
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func checkCredentials(cfg config.Config, user, password string) bool {
	if cfg.BasicAuthUser != "" && subtle.ConstantTimeCompare([]byte(user), []byte(cfg.BasicAuthUser)) != 1 {
		return false
	}
	if cfg.BasicAuthPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.BasicAuthPasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(cfg.BasicAuthPassword)) == 1
}

// withKind tags the request so logs and not-found messages name the document kind.
func withKind(kind documentdomain.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextKindKey, kind.String())
		c.Next()
	}
}
