package routes

import (
	"encoding/json"
	"net/http"

	"github.com/OFFIS-RIT/atlas/internal/queue"
	"github.com/OFFIS-RIT/atlas/internal/server/middleware"
	"github.com/OFFIS-RIT/atlas/pkg/graph"
	"github.com/OFFIS-RIT/atlas/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type jobResponse struct {
	Message string `json:"message"`
	JobID   string `json:"job_id,omitempty"`
}

func CreateIngestJobHandler(c echo.Context) error {
	params := new(graph.PairBatch)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, jobResponse{Message: "Invalid request body"})
	}
	if len(params.Rows) == 0 {
		return c.JSON(http.StatusBadRequest, jobResponse{Message: "Batch has no rows"})
	}

	jobID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, jobResponse{Message: "Internal server error"})
	}

	msg := queue.IngestJobMsg{JobID: jobID, Batch: *params}
	body, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, jobResponse{Message: "Internal server error"})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.IngestQueue, body); err != nil {
		logger.Error("[Server] Failed to enqueue ingest job", "job_id", jobID, "err", err)
		return c.JSON(http.StatusInternalServerError, jobResponse{Message: "Failed to enqueue job"})
	}

	logger.Info("[Server] Ingest job enqueued", "job_id", jobID, "rows", len(params.Rows))
	return c.JSON(http.StatusAccepted, jobResponse{Message: "Ingest job enqueued", JobID: jobID})
}

func CreateUnifyJobHandler(c echo.Context) error {
	params := new(graph.Table)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, jobResponse{Message: "Invalid request body"})
	}
	if len(params.Columns) < 2 {
		return c.JSON(http.StatusBadRequest, jobResponse{Message: "Table needs at least two identifier columns"})
	}

	jobID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, jobResponse{Message: "Internal server error"})
	}

	msg := queue.UnifyJobMsg{JobID: jobID, Table: *params}
	body, err := json.Marshal(msg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, jobResponse{Message: "Internal server error"})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.UnifyQueue, body); err != nil {
		logger.Error("[Server] Failed to enqueue unify job", "job_id", jobID, "err", err)
		return c.JSON(http.StatusInternalServerError, jobResponse{Message: "Failed to enqueue job"})
	}

	logger.Info("[Server] Unify job enqueued", "job_id", jobID, "columns", len(params.Columns), "rows", len(params.Rows))
	return c.JSON(http.StatusAccepted, jobResponse{Message: "Unify job enqueued", JobID: jobID})
}
