package rem

import (
	"github.com/jcmo5969-netizen/libro-partos-sub000/internal/domain/partos"
)

// TramoEtario breaks a row's records down by maternal age band. A record with
// edad nula is excluded from every band but still counts in the row total.
type TramoEtario struct {
	Menor15  int `json:"menor15"`
	De15a19  int `json:"de15a19"`
	De20a34  int `json:"de20a34"`
	De35oMas int `json:"de35oMas"`
}

func (t *TramoEtario) sumar(edad *int) {
	if edad == nil {
		return
	}
	switch {
	case *edad < 15:
		t.Menor15++
	case *edad <= 19:
		t.De15a19++
	case *edad <= 34:
		t.De20a34++
	default:
		t.De35oMas++
	}
}

// TramoGestacional breaks a row down by prematurity band (semanas de
// gestación). Records at term (>= 37 semanas) or without a value fall
// outside every band.
type TramoGestacional struct {
	Menor24 int `json:"menor24"`
	De24a28 int `json:"de24a28"`
	De29a32 int `json:"de29a32"`
	De33a36 int `json:"de33a36"`
}

func (t *TramoGestacional) sumar(semanas *int) {
	if semanas == nil {
		return
	}
	switch {
	case *semanas < 24:
		t.Menor24++
	case *semanas <= 28:
		t.De24a28++
	case *semanas <= 32:
		t.De29a32++
	case *semanas <= 36:
		t.De33a36++
	}
}

// PivotesFila are the per-row humanization and equity pivots of Sección A.
type PivotesFila struct {
	LigaduraTardia      int            `json:"ligaduraTardia"`
	ApegoMadreMenor2500 int            `json:"apegoMadreMenor2500"`
	ApegoMadre2500oMas  int            `json:"apegoMadre2500oMas"`
	ApegoPadreMenor2500 int            `json:"apegoPadreMenor2500"`
	ApegoPadre2500oMas  int            `json:"apegoPadre2500oMas"`
	LactanciaPrecoz     int            `json:"lactanciaPrecoz"`
	AlojamientoConjunto int            `json:"alojamientoConjunto"`
	PertinenciaCultural int            `json:"pertinenciaCultural"`
	PuebloOriginario    int            `json:"puebloOriginario"`
	Migrante            int            `json:"migrante"`
	Discapacidad        int            `json:"discapacidad"`
	PrivadaDeLibertad   int            `json:"privadaDeLibertad"`
	IdentidadGenero     map[string]int `json:"identidadGenero"`
}

func (pv *PivotesFila) sumar(p *partos.Parto) {
	pv.LigaduraTardia += p.LigaduraTardia
	sumarApego(p, &pv.ApegoMadreMenor2500, &pv.ApegoMadre2500oMas, &pv.ApegoPadreMenor2500, &pv.ApegoPadre2500oMas)
	pv.LactanciaPrecoz += p.LactanciaPrecoz
	pv.AlojamientoConjunto += p.AlojamientoConjunto
	pv.PertinenciaCultural += p.PertinenciaCultural
	pv.PuebloOriginario += p.PuebloOriginario
	pv.Migrante += p.Migrante
	pv.Discapacidad += p.Discapacidad
	pv.PrivadaDeLibertad += p.PrivadaDeLibertad
	if p.IdentidadGenero != nil {
		if pv.IdentidadGenero == nil {
			pv.IdentidadGenero = make(map[string]int)
		}
		pv.IdentidadGenero[*p.IdentidadGenero]++
	}
}

// sumarApego pivots skin-to-skin contact by party and newborn weight band.
// A record without weight is excluded from the weight split entirely.
func sumarApego(p *partos.Parto, madreBajo, madreAlto, padreBajo, padreAlto *int) {
	if p.Peso == nil {
		return
	}
	bajo := *p.Peso < 2500
	if p.ContactoPielAPiel.ConMadre == 1 {
		if bajo {
			*madreBajo++
		} else {
			*madreAlto++
		}
	}
	if p.ContactoPielAPiel.ConPadreAcompanante == 1 {
		if bajo {
			*padreBajo++
		} else {
			*padreAlto++
		}
	}
}

// FilaSeccionA is one category row of Sección A.
type FilaSeccionA struct {
	Categoria string           `json:"categoria"`
	Total     int              `json:"total"`
	Edades    TramoEtario      `json:"edades"`
	Gestacion TramoGestacional `json:"gestacion"`
	Pivotes   PivotesFila      `json:"pivotes"`
}

// SeccionA is the delivery-type and special-category breakdown of the REM.
type SeccionA struct {
	Filas []FilaSeccionA `json:"filas"`
}

// Nombres de fila de la Sección A, en el orden de la planilla REM.
const (
	FilaTotal             = "Total partos"
	FilaVaginal           = "Parto vaginal"
	FilaInstrumental      = "Parto instrumental"
	FilaCesareaElectiva   = "Cesárea electiva"
	FilaCesareaUrgencia   = "Cesárea de urgencia"
	FilaExtrahospitalario = "Parto extrahospitalario"
	FilaFueraDeRed        = "Atención fuera de la red"
	FilaPlanParto         = "Con plan de parto"
	FilaPlacenta          = "Entrega de placenta a solicitud"
	FilaNoControlado      = "Embarazo no controlado"
	FilaDomicilioConAtn   = "Parto domiciliario con atención profesional"
	FilaDomicilioSinAtn   = "Parto domiciliario sin atención profesional"
)

// filasSeccionA define cada fila como un predicado sobre el registro. Las
// cinco filas de tipo de parto son mutuamente excluyentes; las restantes son
// transversales y pueden solaparse con ellas.
var filasSeccionA = []struct {
	nombre    string
	predicado func(*partos.Parto) bool
}{
	{FilaTotal, func(*partos.Parto) bool { return true }},
	{FilaVaginal, esTipo(partos.TipoVaginal)},
	{FilaInstrumental, esTipo(partos.TipoInstrumental)},
	{FilaCesareaElectiva, esTipo(partos.TipoCesareaElectiva)},
	{FilaCesareaUrgencia, esTipo(partos.TipoCesareaUrgencia)},
	{FilaExtrahospitalario, esTipo(partos.TipoExtrahospitalario)},
	{FilaFueraDeRed, func(p *partos.Parto) bool { return p.FueraDeRed == 1 }},
	{FilaPlanParto, func(p *partos.Parto) bool { return p.PlanParto == 1 }},
	{FilaPlacenta, func(p *partos.Parto) bool { return p.PlacentaSolicitada == 1 }},
	// La ausencia de dato cuenta como "no controlado", no como desconocido.
	{FilaNoControlado, func(p *partos.Parto) bool { return p.EmbarazoControlado == 0 }},
	{FilaDomicilioConAtn, func(p *partos.Parto) bool { return p.EsDomiciliario() && p.AtencionProfesional == 1 }},
	{FilaDomicilioSinAtn, func(p *partos.Parto) bool { return p.EsDomiciliario() && p.AtencionProfesional == 0 }},
}

func esTipo(valor string) func(*partos.Parto) bool {
	return func(p *partos.Parto) bool { return p.TipoParto.Valor == valor }
}

// ComputarSeccionA reduces the filtered collection into the Sección A rows.
func ComputarSeccionA(coleccion []*partos.Parto, f Filtro) *SeccionA {
	filtrados := f.Aplicar(coleccion)

	seccion := &SeccionA{Filas: make([]FilaSeccionA, len(filasSeccionA))}
	for i, def := range filasSeccionA {
		fila := FilaSeccionA{Categoria: def.nombre}
		for _, p := range filtrados {
			if !def.predicado(p) {
				continue
			}
			fila.Total++
			fila.Edades.sumar(p.Edad)
			fila.Gestacion.sumar(p.EdadGestacional)
			fila.Pivotes.sumar(p)
		}
		seccion.Filas[i] = fila
	}
	return seccion
}

// Fila returns the row with the given category name, or nil.
func (s *SeccionA) Fila(categoria string) *FilaSeccionA {
	for i := range s.Filas {
		if s.Filas[i].Categoria == categoria {
			return &s.Filas[i]
		}
	}
	return nil
}
