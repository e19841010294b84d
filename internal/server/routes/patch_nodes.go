package routes

import (
	"net/http"

	"github.com/OFFIS-RIT/atlas/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func UpdateNodeValueHandler(c echo.Context) error {
	type updateNodeValueParams struct {
		Name     string `json:"name" validate:"required"`
		Value    string `json:"value" validate:"required"`
		NewValue string `json:"new_value" validate:"required"`
	}

	params := new(updateNodeValueParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	ctx := c.Request().Context()
	client := c.(*middleware.AppContext).App.Graph

	node, err := client.ReadByKey(ctx, params.Name, params.Value)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}

	updated, err := client.UpdateNodeValue(ctx, node, params.NewValue)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}

	return c.JSON(http.StatusOK, updated)
}
