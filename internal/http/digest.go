package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/scheduler"
)

// DigestController exposes the overdue digest scheduler.
type DigestController struct {
	scheduler *scheduler.OverdueDigestScheduler
}

// NewDigestController creates a new digest controller.
func NewDigestController(s *scheduler.OverdueDigestScheduler) *DigestController {
	return &DigestController{scheduler: s}
}

// Status reports whether the digest scheduler is running and its next run.
func (dc *DigestController) Status(c *gin.Context) {
	resp := gin.H{"running": dc.scheduler.IsRunning()}
	if next := dc.scheduler.GetNextRunTime(); next != nil {
		resp["next_run"] = next
	}
	c.JSON(http.StatusOK, resp)
}

// RunNow enqueues an immediate digest run.
func (dc *DigestController) RunNow(c *gin.Context) {
	if err := dc.scheduler.RunNow(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "digest enqueued"})
}
