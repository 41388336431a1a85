package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// timedWriter injects execution-time headers just before the first byte of
// the response is written, while the header map is still mutable.
type timedWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timedWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	now := time.Now()
	elapsedMs := float64(now.Sub(w.start).Microseconds()) / 1000.0
	w.Header().Set("X-Execution-Time-Ms", strconv.FormatFloat(elapsedMs, 'f', 2, 64))
	w.Header().Set("X-Time-Start", strconv.FormatInt(w.start.Unix(), 10))
	w.Header().Set("X-Time-End", strconv.FormatInt(now.Unix(), 10))
}

func (w *timedWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timedWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timedWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// Timing reports per-request execution time via response headers.
func Timing() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer = &timedWriter{ResponseWriter: c.Writer, start: time.Now()}
		c.Next()
	}
}
