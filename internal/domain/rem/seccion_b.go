package rem

import (
	"strings"

	"github.com/jcmo5969-netizen/libro-partos-sub000/internal/domain/partos"
)

// SeccionB is the flat list of process and equity indicators, each a single
// total over the filtered collection.
type SeccionB struct {
	TotalPartos           int            `json:"totalPartos"`
	OcitocinaProfilactica int            `json:"ocitocinaProfilactica"`
	Anestesia             map[string]int `json:"anestesia"`
	SinAnestesia          int            `json:"sinAnestesia"`
	LigaduraTardia        int            `json:"ligaduraTardia"`
	ApegoMadreMenor2500   int            `json:"apegoMadreMenor2500"`
	ApegoMadre2500oMas    int            `json:"apegoMadre2500oMas"`
	ApegoPadreMenor2500   int            `json:"apegoPadreMenor2500"`
	ApegoPadre2500oMas    int            `json:"apegoPadre2500oMas"`
	LactanciaPrecoz       int            `json:"lactanciaPrecoz"`
	AlojamientoConjunto   int            `json:"alojamientoConjunto"`
	PertinenciaCultural   int            `json:"pertinenciaCultural"`
	PuebloOriginario      int            `json:"puebloOriginario"`
	Migrante              int            `json:"migrante"`
	Discapacidad          int            `json:"discapacidad"`
	PrivadaDeLibertad     int            `json:"privadaDeLibertad"`
	IdentidadGenero       map[string]int `json:"identidadGenero"`
}

// ComputarSeccionB reduces the filtered collection into the flat indicator
// totals. The anesthesia breakdown keys on the uppercased modality text.
func ComputarSeccionB(coleccion []*partos.Parto, f Filtro) *SeccionB {
	seccion := &SeccionB{
		Anestesia:       make(map[string]int),
		IdentidadGenero: make(map[string]int),
	}
	for _, p := range f.Aplicar(coleccion) {
		seccion.TotalPartos++
		seccion.OcitocinaProfilactica += p.AlumbramientoDirigido
		if p.Anestesia != nil {
			seccion.Anestesia[strings.ToUpper(*p.Anestesia)]++
		} else {
			seccion.SinAnestesia++
		}
		seccion.LigaduraTardia += p.LigaduraTardia
		sumarApego(p, &seccion.ApegoMadreMenor2500, &seccion.ApegoMadre2500oMas,
			&seccion.ApegoPadreMenor2500, &seccion.ApegoPadre2500oMas)
		seccion.LactanciaPrecoz += p.LactanciaPrecoz
		seccion.AlojamientoConjunto += p.AlojamientoConjunto
		seccion.PertinenciaCultural += p.PertinenciaCultural
		seccion.PuebloOriginario += p.PuebloOriginario
		seccion.Migrante += p.Migrante
		seccion.Discapacidad += p.Discapacidad
		seccion.PrivadaDeLibertad += p.PrivadaDeLibertad
		if p.IdentidadGenero != nil {
			seccion.IdentidadGenero[*p.IdentidadGenero]++
		}
	}
	return seccion
}
