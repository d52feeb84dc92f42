package rem

import (
	"testing"

	"github.com/jcmo5969-netizen/libro-partos-sub000/internal/domain/partos"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

// partoMes builds a minimal record dated at the given month/year. mes == 0
// leaves the record undated.
func partoMes(trace string, mes, anio int) *partos.Parto {
	p := &partos.Parto{TraceID: trace}
	if mes != 0 {
		p.Mes = intPtr(mes)
		p.Anio = intPtr(anio)
	}
	return p
}

func TestFiltro_Aplicar(t *testing.T) {
	coleccion := []*partos.Parto{
		partoMes("a", 3, 2024),
		partoMes("b", 3, 2023),
		partoMes("c", 5, 2024),
		partoMes("d", 0, 0), // sin fecha
	}

	// Sin restricción: misma colección, mismo orden.
	got := Filtro{}.Aplicar(coleccion)
	if len(got) != 4 {
		t.Errorf("filtro vacío = %d registros, want 4", len(got))
	}

	got = Filtro{Mes: intPtr(3)}.Aplicar(coleccion)
	if len(got) != 2 || got[0].TraceID != "a" || got[1].TraceID != "b" {
		t.Errorf("mes=3 = %d registros", len(got))
	}

	got = Filtro{Mes: intPtr(3), Anio: intPtr(2024)}.Aplicar(coleccion)
	if len(got) != 1 || got[0].TraceID != "a" {
		t.Errorf("mes=3 anio=2024 = %d registros", len(got))
	}

	got = Filtro{Anio: intPtr(2024)}.Aplicar(coleccion)
	if len(got) != 2 {
		t.Errorf("anio=2024 = %d registros, want 2", len(got))
	}

	// El registro sin fecha nunca pasa un filtro con restricción.
	got = Filtro{Anio: intPtr(2023)}.Aplicar(coleccion)
	for _, p := range got {
		if p.TraceID == "d" {
			t.Error("registro sin fecha no debería pasar un filtro por año")
		}
	}
}
