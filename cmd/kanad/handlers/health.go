package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dpetrashka/kanaweb/pkg/ocr"
)

type HealthView struct {
	Status     string     `json:"status"`
	Recognizer ocr.Health `json:"recognizer"`
}

// HealthHandler reports service health. The response is 200 even while
// the recognizer is cold: reading practice needs no model, so a cold
// model must not take the whole app out of rotation.
func HealthHandler(rec ocr.Recognizer) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, HealthView{
			Status:     "ok",
			Recognizer: rec.Health(c.Request().Context()),
		})
	}
}
