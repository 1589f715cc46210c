package handlers

import (
	"core-api-base/app/server/types"
	"core-api-base/app/server/utils"
	"github.com/labstack/echo/v4"
	"net/http"
)

func (a *App) er(c echo.Context, statusCode int) error {
	return a.erm(c, statusCode, http.StatusText(statusCode))
}

func (a *App) erm(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, &types.ErrorMessage{
		Message: utils.P(message),
	})
}
