package handlers

import (
	"errors"
	"net/http"

	"shopfront-backend/tasks"
	"shopfront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskHandler exposes the background task surface to admins: manual
// triggers for the lifecycle sweep and price recomputation, plus job
// status polling for work that runs asynchronously.
type TaskHandler struct {
	Dispatcher *tasks.Dispatcher
}

type recomputeRequest struct {
	PromotionID string `json:"promotion_id" binding:"omitempty,uuid"`
}

func (h *TaskHandler) enqueueResponse(c *gin.Context, jobID uuid.UUID, err error) {
	if err != nil {
		if errors.Is(err, tasks.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Task queue is full, try again later"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue task"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"job_id":  jobID,
		"message": "Task enqueued",
	})
}

// TriggerSweep enqueues a lifecycle sweep outside the scheduled interval.
func (h *TaskHandler) TriggerSweep(c *gin.Context) {
	jobID, err := h.Dispatcher.EnqueueSweep()
	h.enqueueResponse(c, jobID, err)
}

// TriggerRecompute enqueues a price recomputation. With a promotion_id it
// recomputes that promotion's pairs; without one it recomputes every
// promotion.
func (h *TaskHandler) TriggerRecompute(c *gin.Context) {
	var req recomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.PromotionID == "" {
		jobID, err := h.Dispatcher.EnqueueRecomputeAll()
		h.enqueueResponse(c, jobID, err)
		return
	}

	jobID, err := h.Dispatcher.EnqueueRecompute(uuid.MustParse(req.PromotionID))
	h.enqueueResponse(c, jobID, err)
}

func (h *TaskHandler) GetJobStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid job id"})
		return
	}

	job, ok := utils.Store.GetJob(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, job)
}
