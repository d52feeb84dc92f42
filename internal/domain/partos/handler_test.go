package partos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_Crear(t *testing.T) {
	h, e := newTestHandler()
	body := `{"nombreMadre":"MARIA PEREZ","rut":"12.345.678-9","tipoParto":"VAGINAL"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Crear(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var reg map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
		t.Fatal(err)
	}
	parto, ok := reg["parto"].(map[string]interface{})
	if !ok {
		t.Fatalf("respuesta sin parto: %s", rec.Body.String())
	}
	if parto["tipoParto"] != "VAGINAL" {
		t.Errorf("tipoParto = %v", parto["tipoParto"])
	}
	// Los alias históricos viajan en el JSON.
	if parto["nombre"] != "MARIA PEREZ" {
		t.Errorf("alias nombre = %v", parto["nombre"])
	}
}

func TestHandler_Obtener_NoEncontrado(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Obtener(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %v", err)
	}
}

func TestHandler_Obtener_IDInvalido(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("no-es-uuid")

	err := h.Obtener(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", err)
	}
}

func TestHandler_Importar(t *testing.T) {
	h, e := newTestHandler()
	texto := strings.Join([]string{
		linea(map[int]string{colNombre: "MARIA", colTipoParto: "VAGINAL", colFecha: "03/15/2024"}),
		"linea\tcorta",
	}, "\n")

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(texto))
	req.Header.Set(echo.HeaderContentType, echo.MIMETextPlain)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Importar(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var res ResultadoImportacion
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Importados != 1 {
		t.Errorf("importados = %d, want 1", res.Importados)
	}
	if len(res.Advertencias) != 1 {
		t.Errorf("advertencias = %d, want 1", len(res.Advertencias))
	}
}

func TestHandler_Coleccion_Vacia(t *testing.T) {
	h, e := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Coleccion(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("colección vacía = %s, want []", got)
	}
}

func TestHandler_EliminarYActualizar(t *testing.T) {
	h, e := newTestHandler()
	ctx := context.Background()

	reg, err := h.svc.Crear(ctx, map[string]string{"nombreMadre": "MARIA"})
	if err != nil {
		t.Fatal(err)
	}

	body := `{"nombreMadre":"MARIA ACTUALIZADA"}`
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(reg.ID.String())

	if err := h.Actualizar(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(reg.ID.String())

	if err := h.Eliminar(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}

	if _, err := h.svc.Obtener(ctx, reg.ID); err == nil {
		t.Error("el registro borrado no debería existir")
	}
}

func TestHandler_Listar(t *testing.T) {
	h, e := newTestHandler()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := h.svc.Crear(ctx, map[string]string{"nombreMadre": "M"}); err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/?limit=2&offset=0", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Listar(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res struct {
		Total   int  `json:"total"`
		HasMore bool `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Total != 3 || !res.HasMore {
		t.Errorf("total=%d has_more=%v, want 3 y true", res.Total, res.HasMore)
	}
}
