package rem

import (
	"strings"

	"github.com/jcmo5969-netizen/libro-partos-sub000/internal/domain/partos"
)

// FilaSeccionA1 is one care-model attribute of Sección A.1, broken down by
// gestational-age band. Records without semanas de gestación count only in
// the row total.
type FilaSeccionA1 struct {
	Atributo string `json:"atributo"`
	Menor28  int    `json:"menor28"`
	De28a37  int    `json:"de28a37"`
	De38oMas int    `json:"de38oMas"`
	Total    int    `json:"total"`
}

// SeccionA1 is the care-model breakdown over vaginal deliveries only.
type SeccionA1 struct {
	TotalVaginales int             `json:"totalVaginales"`
	Filas          []FilaSeccionA1 `json:"filas"`
}

const (
	AtributoEspontaneo          = "Inicio espontáneo"
	AtributoInduccionMecanica   = "Inducción mecánica"
	AtributoInduccionFarmaco    = "Inducción farmacológica"
	AtributoAceleracion         = "Aceleración ocitócica"
	AtributoLibertadMovimiento  = "Libertad de movimiento"
	AtributoLiquidosLibres      = "Ingesta de líquidos libres"
	AtributoDolorFarmacologico  = "Manejo farmacológico del dolor"
	AtributoDolorNoFarmaco      = "Manejo no farmacológico del dolor"
	AtributoPosicionLitotomia   = "Expulsivo en litotomía"
	AtributoPosicionDistinta    = "Expulsivo en posición distinta de litotomía"
	AtributoEpisiotomia         = "Episiotomía"
	AtributoAcompTodoElTrabajo  = "Acompañamiento durante todo el trabajo de parto"
	AtributoAcompSoloExpulsivo  = "Acompañamiento sólo en expulsivo"
)

var filasSeccionA1 = []struct {
	nombre    string
	predicado func(*partos.Parto) bool
}{
	{AtributoEspontaneo, func(p *partos.Parto) bool { return p.Induccion == 0 }},
	{AtributoInduccionMecanica, esInduccion("MECANICA")},
	{AtributoInduccionFarmaco, esInduccion("FARMACOLOGICA")},
	{AtributoAceleracion, func(p *partos.Parto) bool { return p.AceleracionOcitocica == 1 }},
	{AtributoLibertadMovimiento, func(p *partos.Parto) bool { return p.LibertadMovimiento == 1 }},
	{AtributoLiquidosLibres, func(p *partos.Parto) bool { return p.LiquidosLibres == 1 }},
	{AtributoDolorFarmacologico, func(p *partos.Parto) bool { return p.Anestesia != nil }},
	{AtributoDolorNoFarmaco, func(p *partos.Parto) bool { return p.MedidasNoFarmacologicas == 1 }},
	{AtributoPosicionLitotomia, posicion(true)},
	{AtributoPosicionDistinta, posicion(false)},
	{AtributoEpisiotomia, func(p *partos.Parto) bool { return p.Episiotomia == 1 }},
	{AtributoAcompTodoElTrabajo, func(p *partos.Parto) bool { return p.AcompanamientoTrabajoParto == 1 }},
	{AtributoAcompSoloExpulsivo, func(p *partos.Parto) bool {
		return p.AcompanamientoTrabajoParto == 0 && p.AcompanamientoExpulsivo == 1
	}},
}

func esInduccion(tipo string) func(*partos.Parto) bool {
	return func(p *partos.Parto) bool {
		return p.Induccion == 1 && p.TipoInduccion != nil && *p.TipoInduccion == tipo
	}
}

// posicion matches the expulsive-stage position: lithotomy or explicitly
// something else. A record without position data matches neither row.
func posicion(litotomia bool) func(*partos.Parto) bool {
	return func(p *partos.Parto) bool {
		if p.PosicionExpulsivo == nil {
			return false
		}
		es := strings.Contains(strings.ToUpper(*p.PosicionExpulsivo), "LITOTOM")
		return es == litotomia
	}
}

// ComputarSeccionA1 reduces the filtered vaginal deliveries into the care
// model rows of Sección A.1.
func ComputarSeccionA1(coleccion []*partos.Parto, f Filtro) *SeccionA1 {
	var vaginales []*partos.Parto
	for _, p := range f.Aplicar(coleccion) {
		if p.TipoParto.Valor == partos.TipoVaginal {
			vaginales = append(vaginales, p)
		}
	}

	seccion := &SeccionA1{
		TotalVaginales: len(vaginales),
		Filas:          make([]FilaSeccionA1, len(filasSeccionA1)),
	}
	for i, def := range filasSeccionA1 {
		fila := FilaSeccionA1{Atributo: def.nombre}
		for _, p := range vaginales {
			if !def.predicado(p) {
				continue
			}
			fila.Total++
			if p.EdadGestacional == nil {
				continue
			}
			switch {
			case *p.EdadGestacional < 28:
				fila.Menor28++
			case *p.EdadGestacional <= 37:
				fila.De28a37++
			default:
				fila.De38oMas++
			}
		}
		seccion.Filas[i] = fila
	}
	return seccion
}

// Fila returns the row with the given attribute name, or nil.
func (s *SeccionA1) Fila(atributo string) *FilaSeccionA1 {
	for i := range s.Filas {
		if s.Filas[i].Atributo == atributo {
			return &s.Filas[i]
		}
	}
	return nil
}
