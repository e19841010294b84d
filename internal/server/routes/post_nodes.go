package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/atlas/internal/server/middleware"
	"github.com/OFFIS-RIT/atlas/pkg/graph"

	"github.com/labstack/echo/v4"
)

func CreateNodeHandler(c echo.Context) error {
	params := new(graph.NodeInput)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	client := c.(*middleware.AppContext).App.Graph

	node, err := client.CreateOrUpdateNode(ctx, *params)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}

	return c.JSON(http.StatusOK, node)
}

type nodeRef struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

func ConnectNodesHandler(c echo.Context) error {
	type connectNodesParams struct {
		A nodeRef `json:"a" validate:"required"`
		B nodeRef `json:"b" validate:"required"`
	}

	params := new(connectNodesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	client := c.(*middleware.AppContext).App.Graph

	a, err := client.ReadByKey(ctx, params.A.Name, params.A.Value)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}
	b, err := client.ReadByKey(ctx, params.B.Name, params.B.Value)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}

	if err := client.Connect(ctx, a, b); err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Nodes connected"})
}

func MergeNodesHandler(c echo.Context) error {
	type mergeNodesParams struct {
		From nodeRef `json:"from" validate:"required"`
		To   nodeRef `json:"to" validate:"required"`
	}

	params := new(mergeNodesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	client := c.(*middleware.AppContext).App.Graph

	from, err := client.ReadByKey(ctx, params.From.Name, params.From.Value)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}
	to, err := client.ReadByKey(ctx, params.To.Name, params.To.Value)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}

	merged, err := client.Merge(ctx, from, to)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}

	return c.JSON(http.StatusOK, merged)
}
