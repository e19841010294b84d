package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/atlas/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func DeleteNodeHandler(c echo.Context) error {
	type deleteNodeParams struct {
		Name  string `query:"name" validate:"required"`
		Value string `query:"value" validate:"required"`
	}

	params := new(deleteNodeParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	ctx := c.Request().Context()
	client := c.(*middleware.AppContext).App.Graph

	node, err := client.ReadByKey(ctx, params.Name, params.Value)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}

	if err := client.DeleteNode(ctx, node); err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Node deleted"})
}
