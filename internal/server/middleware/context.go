package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/OFFIS-RIT/atlas/pkg/graph"
)

type AppUser struct {
	Subject string
	Role    string
}

type App struct {
	Graph        *graph.Client
	Queue        *amqp091.Channel
	AuthSecret   []byte
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(
	graphClient *graph.Client,
	queue *amqp091.Channel,
	authSecret []byte,
	masterAPIKey string,
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			app := &App{
				Graph:        graphClient,
				Queue:        queue,
				AuthSecret:   authSecret,
				MasterAPIKey: masterAPIKey,
			}
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
