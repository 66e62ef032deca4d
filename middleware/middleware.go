package middleware

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/SeraphMX/grupofinancial-hub-sub000/utils"
	"github.com/gin-gonic/gin"
)

var (
	// Rate limiter global por IP
	globalLimiter = utils.NewRateLimiter(100, time.Minute) // 100 peticiones por minuto
)

// RateLimit limita la frecuencia de peticiones por cliente
func RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		if !globalLimiter.Allow(clientIP) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas peticiones",
				"reset": globalLimiter.GetResetTime(clientIP),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", "100")
		c.Header("X-RateLimit-Remaining", strconv.Itoa(globalLimiter.GetRemaining(clientIP)))
		c.Header("X-RateLimit-Reset", globalLimiter.GetResetTime(clientIP).String())

		c.Next()
	}
}

// Logger registra cada petición con su duración y estado
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)
		status := c.Writer.Status()

		utils.LogInfo("Request: %s %s - Status: %d - Duration: %v",
			c.Request.Method,
			c.Request.URL.Path,
			status,
			duration,
		)

		utils.GetMetrics().RecordRequest(duration, status >= http.StatusBadRequest)

		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				utils.LogError("Error: %v", e)
			}
		}
	}
}

// Recovery atrapa pánicos y responde un error genérico
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				utils.LogError("Panic recovered: %v", err)

				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Error interno del servidor",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}

// OpsLogging registra las peticiones del servidor interno de operación
func OpsLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("ops: %s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}
