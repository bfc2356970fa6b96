package monitoring

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/taskflow/backend/internal/cache"
)

type Metrics struct {
	mu            sync.Mutex
	startedAt     time.Time
	requestTotal  int64
	requestErrors int64
	statusCounts  map[int]int64
	totalLatency  time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		startedAt:    time.Now(),
		statusCounts: make(map[int]int64),
	}
}

// Middleware counts requests, error responses, and accumulated latency.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()

		m.mu.Lock()
		m.requestTotal++
		m.statusCounts[status/100*100]++
		if status >= http.StatusInternalServerError {
			m.requestErrors++
		}
		m.totalLatency += time.Since(start)
		m.mu.Unlock()
	}
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		m.mu.Lock()
		statusCopy := make(map[int]int64, len(m.statusCounts))
		for k, v := range m.statusCounts {
			statusCopy[k] = v
		}
		avgLatency := time.Duration(0)
		if m.requestTotal > 0 {
			avgLatency = m.totalLatency / time.Duration(m.requestTotal)
		}
		body := gin.H{
			"uptime_seconds":    int64(time.Since(m.startedAt).Seconds()),
			"requests_total":    m.requestTotal,
			"request_errors":    m.requestErrors,
			"status_counts":     statusCopy,
			"avg_latency_ms":    avgLatency.Milliseconds(),
			"goroutines":        runtime.NumGoroutine(),
			"heap_alloc_bytes":  memStats.HeapAlloc,
			"total_alloc_bytes": memStats.TotalAlloc,
			"gc_cycles":         memStats.NumGC,
		}
		m.mu.Unlock()

		c.JSON(http.StatusOK, body)
	}
}

// HealthHandler reports the status of the database and, when configured,
// the cache. Degraded dependencies drop the overall status to 503.
func HealthHandler(db *gorm.DB, redisCache *cache.RedisCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}
		healthy := true

		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
				checks["database"] = "down"
				healthy = false
			} else {
				checks["database"] = "ok"
			}
		}

		if redisCache != nil {
			if err := redisCache.Health(); err != nil {
				checks["cache"] = "down"
				healthy = false
			} else {
				checks["cache"] = "ok"
			}
		}

		status := http.StatusOK
		overall := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
		}

		c.JSON(status, gin.H{
			"status": overall,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessHandler answers 200 once the database accepts connections.
func ReadinessHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

func LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive"})
	}
}
