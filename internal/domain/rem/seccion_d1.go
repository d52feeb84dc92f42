package rem

import (
	"github.com/jcmo5969-netizen/libro-partos-sub000/internal/domain/partos"
)

// TramoPeso is one newborn weight band of Sección D.1.
type TramoPeso struct {
	Tramo    string `json:"tramo"`
	Desde    int    `json:"desde"`
	Hasta    int    `json:"hasta,omitempty"` // 0 en el tramo abierto superior
	Cantidad int    `json:"cantidad"`
}

// SeccionD1 is the newborn weight-band distribution plus the congenital
// anomaly count.
type SeccionD1 struct {
	Tramos         []TramoPeso `json:"tramos"`
	SinPeso        int         `json:"sinPeso"`
	Malformaciones int         `json:"malformaciones"`
	TotalNacidos   int         `json:"totalNacidos"`
}

// limitesPeso define los tramos de 500 gramos de la planilla D.1. El último
// tramo es abierto (>= 4000).
var limitesPeso = []struct {
	etiqueta     string
	desde, hasta int
}{
	{"< 500", 0, 499},
	{"500 - 999", 500, 999},
	{"1.000 - 1.499", 1000, 1499},
	{"1.500 - 1.999", 1500, 1999},
	{"2.000 - 2.499", 2000, 2499},
	{"2.500 - 2.999", 2500, 2999},
	{"3.000 - 3.499", 3000, 3499},
	{"3.500 - 3.999", 3500, 3999},
	{">= 4.000", 4000, 0},
}

// ComputarSeccionD1 reduces the filtered collection into the weight-band
// distribution. A newborn without a parseable weight counts in SinPeso and
// in no band.
func ComputarSeccionD1(coleccion []*partos.Parto, f Filtro) *SeccionD1 {
	seccion := &SeccionD1{Tramos: make([]TramoPeso, len(limitesPeso))}
	for i, l := range limitesPeso {
		seccion.Tramos[i] = TramoPeso{Tramo: l.etiqueta, Desde: l.desde, Hasta: l.hasta}
	}

	for _, p := range f.Aplicar(coleccion) {
		seccion.TotalNacidos++
		seccion.Malformaciones += p.Malformaciones
		if p.Peso == nil {
			seccion.SinPeso++
			continue
		}
		gramos := int(*p.Peso)
		for i, l := range limitesPeso {
			if gramos >= l.desde && (l.hasta == 0 || gramos <= l.hasta) {
				seccion.Tramos[i].Cantidad++
				break
			}
		}
	}
	return seccion
}
