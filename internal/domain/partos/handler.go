package partos

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/jcmo5969-netizen/libro-partos-sub000/pkg/pagination"
)

// Tamaño máximo aceptado para una importación de texto tabulado.
const maxImportBytes = 16 << 20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/partos", h.Listar)
	api.GET("/partos/coleccion", h.Coleccion)
	api.GET("/partos/madres", h.Madres)
	api.GET("/partos/:id", h.Obtener)
	api.POST("/partos", h.Crear)
	api.PUT("/partos/:id", h.Actualizar)
	api.DELETE("/partos/:id", h.Eliminar)
	api.POST("/partos/importar", h.Importar)
}

func (h *Handler) Crear(c echo.Context) error {
	var valores map[string]string
	if err := c.Bind(&valores); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reg, err := h.svc.Crear(c.Request().Context(), valores)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, reg)
}

func (h *Handler) Obtener(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id inválido")
	}
	reg, err := h.svc.Obtener(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "parto no encontrado")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reg)
}

func (h *Handler) Listar(c echo.Context) error {
	pg := pagination.FromContext(c)
	regs, total, err := h.svc.Listar(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(regs, total, pg.Limit, pg.Offset))
}

// Coleccion returns the entire enriched collection, unpaginated: the shape
// the dashboard and AI layers consume.
func (h *Handler) Coleccion(c echo.Context) error {
	coleccion, err := h.svc.Coleccion(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if coleccion == nil {
		coleccion = []*Parto{}
	}
	return c.JSON(http.StatusOK, coleccion)
}

func (h *Handler) Madres(c echo.Context) error {
	madres, err := h.svc.Madres(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, madres)
}

func (h *Handler) Actualizar(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id inválido")
	}
	var valores map[string]string
	if err := c.Bind(&valores); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	reg, err := h.svc.Actualizar(c.Request().Context(), id, valores)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "parto no encontrado")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reg)
}

func (h *Handler) Eliminar(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id inválido")
	}
	if err := h.svc.Eliminar(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Importar ingests a whole tab-delimited export as text/plain body.
func (h *Handler) Importar(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportBytes))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no se pudo leer el cuerpo")
	}
	res, err := h.svc.Importar(c.Request().Context(), string(body))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
