package partos

// Segunda pasada del pipeline: con la colección completa en memoria se
// construyen los índices de agrupación y luego se pueblan las relaciones de
// cada registro. No existe variante incremental: tras cualquier alta, edición
// o borrado el llamador debe reconstruir los índices sobre la colección
// completa.

// Indices groups the full collection by each relation key. The maps are built
// once per batch and passed explicitly; nothing closes over shared state.
type Indices struct {
	PorRut         map[string][]*Parto
	PorConsultorio map[string][]*Parto
	PorComuna      map[string][]*Parto
	PorMes         map[int][]*Parto // clave anio*100 + mes
	PorMedico      map[string][]*Parto
	PorMatrona     map[string][]*Parto
}

// ConstruirIndices runs the single grouping pass over the collection.
// Records without a key (sin RUT, sin comuna, ...) are simply absent from
// that index.
func ConstruirIndices(coleccion []*Parto) *Indices {
	idx := &Indices{
		PorRut:         make(map[string][]*Parto),
		PorConsultorio: make(map[string][]*Parto),
		PorComuna:      make(map[string][]*Parto),
		PorMes:         make(map[int][]*Parto),
		PorMedico:      make(map[string][]*Parto),
		PorMatrona:     make(map[string][]*Parto),
	}
	for _, p := range coleccion {
		if p.RutNormalizado != nil {
			idx.PorRut[*p.RutNormalizado] = append(idx.PorRut[*p.RutNormalizado], p)
		}
		if p.Consultorio != nil {
			idx.PorConsultorio[*p.Consultorio] = append(idx.PorConsultorio[*p.Consultorio], p)
		}
		if p.Comuna != nil {
			idx.PorComuna[*p.Comuna] = append(idx.PorComuna[*p.Comuna], p)
		}
		if clave, ok := claveMes(p); ok {
			idx.PorMes[clave] = append(idx.PorMes[clave], p)
		}
		if p.Medico != nil {
			idx.PorMedico[*p.Medico] = append(idx.PorMedico[*p.Medico], p)
		}
		if p.Matrona != nil {
			idx.PorMatrona[*p.Matrona] = append(idx.PorMatrona[*p.Matrona], p)
		}
	}
	return idx
}

// EnlazarRelaciones populates every record's relation lists and counts from
// the prebuilt indexes, excluding the record itself from each bucket. The
// lists hold trace ids (and light projections), never record pointers.
func EnlazarRelaciones(coleccion []*Parto, idx *Indices) {
	for _, p := range coleccion {
		rel := Relaciones{}

		if p.RutNormalizado != nil {
			for _, otro := range idx.PorRut[*p.RutNormalizado] {
				if otro.TraceID == p.TraceID {
					continue
				}
				rel.PartosMismaMadre = append(rel.PartosMismaMadre, PartoRelacionado{
					TraceID:   otro.TraceID,
					Fecha:     otro.FechaTexto,
					TipoParto: otro.TipoParto.Valor,
					Numero:    otro.Numero,
				})
			}
		}
		if p.Consultorio != nil {
			rel.MismoConsultorio = traceIDsExcepto(idx.PorConsultorio[*p.Consultorio], p)
		}
		if p.Comuna != nil {
			rel.MismaComuna = traceIDsExcepto(idx.PorComuna[*p.Comuna], p)
		}
		if clave, ok := claveMes(p); ok {
			rel.MismoMes = traceIDsExcepto(idx.PorMes[clave], p)
		}
		if p.Medico != nil {
			rel.MismoMedico = traceIDsExcepto(idx.PorMedico[*p.Medico], p)
		}
		if p.Matrona != nil {
			rel.MismaMatrona = traceIDsExcepto(idx.PorMatrona[*p.Matrona], p)
		}

		p.Relaciones = rel
		p.Conteo = ConteoRelaciones{
			PartosMismaMadre: len(rel.PartosMismaMadre),
			MismoConsultorio: len(rel.MismoConsultorio),
			MismaComuna:      len(rel.MismaComuna),
			MismoMes:         len(rel.MismoMes),
			MismoMedico:      len(rel.MismoMedico),
			MismaMatrona:     len(rel.MismaMatrona),
		}
	}
}

// Enriquecer is the whole second phase: build the indexes and link every
// record. Returns the mother map (normalized RUT -> trace ids) for callers
// that need the cross-reference.
func Enriquecer(coleccion []*Parto) map[string][]string {
	idx := ConstruirIndices(coleccion)
	EnlazarRelaciones(coleccion, idx)
	return idx.TraceIDsPorMadre()
}

// TraceIDsPorMadre projects the RUT index to trace ids.
func (idx *Indices) TraceIDsPorMadre() map[string][]string {
	madres := make(map[string][]string, len(idx.PorRut))
	for rut, registros := range idx.PorRut {
		ids := make([]string, 0, len(registros))
		for _, p := range registros {
			ids = append(ids, p.TraceID)
		}
		madres[rut] = ids
	}
	return madres
}

// claveMes keys a record by calendar month AND year.
func claveMes(p *Parto) (int, bool) {
	if p.Mes == nil || p.Anio == nil {
		return 0, false
	}
	return *p.Anio*100 + *p.Mes, true
}

func traceIDsExcepto(registros []*Parto, propio *Parto) []string {
	var ids []string
	for _, p := range registros {
		if p.TraceID != propio.TraceID {
			ids = append(ids, p.TraceID)
		}
	}
	return ids
}
