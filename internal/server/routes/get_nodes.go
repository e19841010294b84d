package routes

import (
	"net/http"
	"strings"

	"github.com/OFFIS-RIT/atlas/internal/server/middleware"
	"github.com/OFFIS-RIT/atlas/pkg/common"
	"github.com/OFFIS-RIT/atlas/pkg/store"

	"github.com/labstack/echo/v4"
)

func GetNodeHandler(c echo.Context) error {
	type getNodeParams struct {
		Name  string `query:"name" validate:"required"`
		Value string `query:"value" validate:"required"`
	}

	params := new(getNodeParams)
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

	return c.JSON(http.StatusOK, node)
}

func SearchNodesHandler(c echo.Context) error {
	type searchNodesParams struct {
		Name     string `query:"name"`
		Category string `query:"category"`
		Value    string `query:"value"`
		Exact    bool   `query:"exact"`
		Limit    int    `query:"limit"`
	}

	params := new(searchNodesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	ctx := c.Request().Context()
	client := c.(*middleware.AppContext).App.Graph

	nodes, err := client.FindByFilters(ctx, params.Name, params.Category, params.Value, params.Exact, params.Limit)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}
	if nodes == nil {
		nodes = []common.Node{}
	}

	return c.JSON(http.StatusOK, nodes)
}

func GetNeighborsHandler(c echo.Context) error {
	type getNeighborsParams struct {
		Name              string `query:"name" validate:"required"`
		Value             string `query:"value" validate:"required"`
		Names             string `query:"names"`
		ExcludeNames      string `query:"exclude_names"`
		Categories        string `query:"categories"`
		ExcludeCategories string `query:"exclude_categories"`
		Limit             int    `query:"limit"`
	}

	params := new(getNeighborsParams)
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

	filter := store.NeighborFilter{
		Names:             splitList(params.Names),
		ExcludeNames:      splitList(params.ExcludeNames),
		Categories:        splitList(params.Categories),
		ExcludeCategories: splitList(params.ExcludeCategories),
	}

	neighbors, err := client.NeighborsOf(ctx, node, filter, params.Limit)
	if err != nil {
		return c.JSON(statusForError(err), errorResponse(err))
	}
	if neighbors == nil {
		neighbors = []common.Node{}
	}

	return c.JSON(http.StatusOK, neighbors)
}

// splitList parses a comma-separated query value into a filter list.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
