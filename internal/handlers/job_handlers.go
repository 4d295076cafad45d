package handlers

import (
	"net/http"

	"restopos/internal/common"
	"restopos/internal/jobs/background"

	"github.com/labstack/echo/v4"
)

// JobRunner is the part of the background scheduler exposed over HTTP
type JobRunner interface {
	GetJobStatus() []background.JobStatus
	RunNow(name string) error
}

type JobHandlers struct {
	scheduler JobRunner
}

func NewJobHandlers(scheduler JobRunner) *JobHandlers {
	return &JobHandlers{scheduler: scheduler}
}

// ListJobs handles GET /jobs
func (h *JobHandlers) ListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"jobs": h.scheduler.GetJobStatus(),
	})
}

// RunJob handles POST /jobs/:name/run. The job runs asynchronously.
func (h *JobHandlers) RunJob(c echo.Context) error {
	name := c.Param("name")
	if err := h.scheduler.RunNow(name); err != nil {
		return common.SendNotFoundError(c, "job "+name)
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"job":    name,
		"status": "triggered",
	})
}
