package rem

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jcmo5969-netizen/libro-partos-sub000/internal/domain/partos"
)

// Resumen bundles every section for the dashboard and AI-summary layers.
type Resumen struct {
	A  *SeccionA  `json:"seccionA"`
	A1 *SeccionA1 `json:"seccionA1"`
	B  *SeccionB  `json:"seccionB"`
	D1 *SeccionD1 `json:"seccionD1"`
}

// ComputarResumen computes all four sections over one filtered pass
// definition.
func ComputarResumen(coleccion []*partos.Parto, f Filtro) *Resumen {
	return &Resumen{
		A:  ComputarSeccionA(coleccion, f),
		A1: ComputarSeccionA1(coleccion, f),
		B:  ComputarSeccionB(coleccion, f),
		D1: ComputarSeccionD1(coleccion, f),
	}
}

// ColeccionProvider yields the current enriched record collection. The
// partos service implements it.
type ColeccionProvider interface {
	Coleccion(ctx context.Context) ([]*partos.Parto, error)
}

// Handler serves the REM sections over HTTP.
type Handler struct {
	fuente ColeccionProvider
}

func NewHandler(fuente ColeccionProvider) *Handler {
	return &Handler{fuente: fuente}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/rem")
	g.GET("/a", h.SeccionA)
	g.GET("/a1", h.SeccionA1)
	g.GET("/b", h.SeccionB)
	g.GET("/d1", h.SeccionD1)
	g.GET("/resumen", h.Resumen)
}

func (h *Handler) SeccionA(c echo.Context) error {
	coleccion, f, err := h.preparar(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ComputarSeccionA(coleccion, f))
}

func (h *Handler) SeccionA1(c echo.Context) error {
	coleccion, f, err := h.preparar(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ComputarSeccionA1(coleccion, f))
}

func (h *Handler) SeccionB(c echo.Context) error {
	coleccion, f, err := h.preparar(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ComputarSeccionB(coleccion, f))
}

func (h *Handler) SeccionD1(c echo.Context) error {
	coleccion, f, err := h.preparar(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ComputarSeccionD1(coleccion, f))
}

func (h *Handler) Resumen(c echo.Context) error {
	coleccion, f, err := h.preparar(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ComputarResumen(coleccion, f))
}

func (h *Handler) preparar(c echo.Context) ([]*partos.Parto, Filtro, error) {
	f, err := filtroDesdeQuery(c)
	if err != nil {
		return nil, Filtro{}, err
	}
	coleccion, err := h.fuente.Coleccion(c.Request().Context())
	if err != nil {
		return nil, Filtro{}, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return coleccion, f, nil
}

func filtroDesdeQuery(c echo.Context) (Filtro, error) {
	var f Filtro
	if v := c.QueryParam("mes"); v != "" {
		mes, err := strconv.Atoi(v)
		if err != nil || mes < 1 || mes > 12 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "mes inválido")
		}
		f.Mes = &mes
	}
	if v := c.QueryParam("anio"); v != "" {
		anio, err := strconv.Atoi(v)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "anio inválido")
		}
		f.Anio = &anio
	}
	return f, nil
}
