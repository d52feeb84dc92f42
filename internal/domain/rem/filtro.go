// Package rem computes the REM statistical sections (A, A.1, B and D.1) as
// pure reducers over an in-memory birth-record collection. Every section
// tolerates an empty collection and returns zero-filled structures; input
// records are never mutated.
package rem

import (
	"github.com/jcmo5969-netizen/libro-partos-sub000/internal/domain/partos"
)

// Filtro restricts a collection by calendar month and/or year. A nil field
// means "no restriction on that component". Records without a parsed date
// never match a month or year restriction.
type Filtro struct {
	Mes  *int
	Anio *int
}

// Aplicar returns the records matching the filter, preserving input order.
// A zero Filtro returns the input slice unchanged.
func (f Filtro) Aplicar(coleccion []*partos.Parto) []*partos.Parto {
	if f.Mes == nil && f.Anio == nil {
		return coleccion
	}
	var out []*partos.Parto
	for _, p := range coleccion {
		if f.Mes != nil && (p.Mes == nil || *p.Mes != *f.Mes) {
			continue
		}
		if f.Anio != nil && (p.Anio == nil || *p.Anio != *f.Anio) {
			continue
		}
		out = append(out, p)
	}
	return out
}
