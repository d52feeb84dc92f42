package partos

import (
	"encoding/json"
	"strings"
	"time"
)

// Canonical delivery-type labels. The domain is open: a raw value outside the
// vocabulary is kept uppercased with Otro set, and aggregate code must
// tolerate it.
const (
	TipoVaginal           = "VAGINAL"
	TipoInstrumental      = "INSTRUMENTAL"
	TipoCesareaElectiva   = "CES ELE"
	TipoCesareaUrgencia   = "CES URG"
	TipoExtrahospitalario = "EXTRAHOSPITALARIO"

	ParidadPrimipara = "PRIMIPARA"
	ParidadMultipara = "MULTIPARA"

	PresentacionCefalica   = "CEFALICA"
	PresentacionPodalica   = "PODALICA"
	PresentacionTransversa = "TRANSVERSA"
)

// Categoria is an open categorical value: either a known canonical label or
// the uppercased raw source text flagged as Otro.
type Categoria struct {
	Valor string
	Otro  bool
}

// Conocida reports whether the value matched the known vocabulary.
func (c Categoria) Conocida() bool { return !c.Otro && c.Valor != "" }

// Vacia reports whether no value was present at all.
func (c Categoria) Vacia() bool { return c.Valor == "" }

// MarshalJSON serialises the category as its plain label, which is what the
// consuming UI contract expects.
func (c Categoria) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Valor)
}

func (c *Categoria) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = Categoria{Valor: s, Otro: !esVocabularioConocido(s)}
	return nil
}

func esVocabularioConocido(v string) bool {
	switch v {
	case TipoVaginal, TipoInstrumental, TipoCesareaElectiva, TipoCesareaUrgencia,
		TipoExtrahospitalario, ParidadPrimipara, ParidadMultipara,
		PresentacionCefalica, PresentacionPodalica, PresentacionTransversa, "":
		return true
	}
	return false
}

func categoriaConocida(valor string) Categoria { return Categoria{Valor: valor} }

func categoriaOtra(raw string) Categoria {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "" {
		return Categoria{}
	}
	return Categoria{Valor: v, Otro: true}
}

// ClasificarTipoParto canonicalises the delivery type by case-insensitive
// substring matching, falling back to the uppercased raw value.
func ClasificarTipoParto(raw string) Categoria {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case v == "":
		return Categoria{}
	case strings.Contains(v, "INSTRUMENTAL") || strings.Contains(v, "FORCEPS"):
		return categoriaConocida(TipoInstrumental)
	case strings.Contains(v, "CES") && (strings.Contains(v, "URG") || strings.Contains(v, "EMERG")):
		return categoriaConocida(TipoCesareaUrgencia)
	case strings.Contains(v, "CES") && (strings.Contains(v, "ELE") || strings.Contains(v, "PROGRAM")):
		return categoriaConocida(TipoCesareaElectiva)
	case strings.Contains(v, "EXTRAHOSP") || strings.Contains(v, "EXTRA HOSP"):
		return categoriaConocida(TipoExtrahospitalario)
	case strings.Contains(v, "VAGINAL"):
		return categoriaConocida(TipoVaginal)
	default:
		return categoriaOtra(v)
	}
}

// EsCesarea reports whether a delivery type counts as a cesarean. It also
// accepts fallback labels that merely mention the word, since the categorical
// domain is open.
func EsCesarea(c Categoria) bool {
	if c.Valor == TipoCesareaElectiva || c.Valor == TipoCesareaUrgencia {
		return true
	}
	return c.Otro && (strings.Contains(c.Valor, "CESAREA") || strings.Contains(c.Valor, "CESÁREA"))
}

// ClasificarParidad canonicalises parity (PRIMIPARA / MULTIPARA / other).
func ClasificarParidad(raw string) Categoria {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case v == "":
		return Categoria{}
	case strings.Contains(v, "PRIMI"):
		return categoriaConocida(ParidadPrimipara)
	case strings.Contains(v, "MULTI"):
		return categoriaConocida(ParidadMultipara)
	default:
		return categoriaOtra(v)
	}
}

// ClasificarPresentacion canonicalises fetal presentation.
func ClasificarPresentacion(raw string) Categoria {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case v == "":
		return Categoria{}
	case strings.Contains(v, "CEFAL"):
		return categoriaConocida(PresentacionCefalica)
	case strings.Contains(v, "PODAL"):
		return categoriaConocida(PresentacionPodalica)
	case strings.Contains(v, "TRANSVER"):
		return categoriaConocida(PresentacionTransversa)
	default:
		return categoriaOtra(v)
	}
}

// NormalizeSexo canonicalises newborn sex to FEMENINO/MASCULINO/INDETERMINADO
// or nil.
func NormalizeSexo(raw string) *string {
	v := strings.ToUpper(strings.TrimSpace(raw))
	var out string
	switch {
	case strings.Contains(v, "FEM"):
		out = "FEMENINO"
	case strings.Contains(v, "MASC"):
		out = "MASCULINO"
	case strings.Contains(v, "INDET"):
		out = "INDETERMINADO"
	default:
		return nil
	}
	return &out
}

// PartoRelacionado is the lightweight projection used for the same-mother
// relation list.
type PartoRelacionado struct {
	TraceID   string `json:"traceId"`
	Fecha     string `json:"fecha"`
	TipoParto string `json:"tipoParto"`
	Numero    int    `json:"numero"`
}

// Relaciones holds the per-record relation lists. Lists reference trace ids,
// never live record pointers, so the record serialises without cycles.
type Relaciones struct {
	PartosMismaMadre []PartoRelacionado `json:"partosMismaMadre"`
	MismoConsultorio []string           `json:"mismoConsultorio"`
	MismaComuna      []string           `json:"mismaComuna"`
	MismoMes         []string           `json:"mismoMes"`
	MismoMedico      []string           `json:"mismoMedico"`
	MismaMatrona     []string           `json:"mismaMatrona"`
}

// ConteoRelaciones caches the cardinality of each relation list for O(1)
// downstream queries.
type ConteoRelaciones struct {
	PartosMismaMadre int `json:"partosMismaMadre"`
	MismoConsultorio int `json:"mismoConsultorio"`
	MismaComuna      int `json:"mismaComuna"`
	MismoMes         int `json:"mismoMes"`
	MismoMedico      int `json:"mismoMedico"`
	MismaMatrona     int `json:"mismaMatrona"`
}

// Parto is one normalized birth record. Pointer fields are nullable (absent
// or unparseable source data); flag fields are always exactly 0 or 1 after
// normalization. The json tags are the compatibility contract with the
// consuming UI and REST layers.
type Parto struct {
	// Identidad
	TraceID        string  `json:"traceId"`
	Numero         int     `json:"numeroCorrelativo"`
	RutNormalizado *string `json:"rutNormalizado"`

	// Madre
	Nombre             string  `json:"nombreMadre"`
	Rut                string  `json:"rut"`
	Edad               *int    `json:"edad"`
	PuebloOriginario   int     `json:"puebloOriginario"`
	Migrante           int     `json:"migrante"`
	Nacionalidad       *string `json:"nacionalidad"`
	Discapacidad       int     `json:"discapacidad"`
	IdentidadGenero    *string `json:"identidadGenero"`
	PrivadaDeLibertad  int     `json:"privadaDeLibertad"`
	Comuna             *string `json:"comuna"`
	Consultorio        *string `json:"consultorio"`
	EmbarazoControlado int     `json:"embControlado"`

	// Temporal
	Fecha      *time.Time `json:"fechaISO,omitempty"`
	FechaTexto string     `json:"fechaParto"`
	Hora       string     `json:"horaParto"`
	Mes        *int       `json:"mesParto"`
	Anio       *int       `json:"anioParto"`

	// Clasificación del parto
	TipoParto       Categoria `json:"tipoParto"`
	Paridad         Categoria `json:"paridad"`
	Presentacion    Categoria `json:"presentacion"`
	EdadGestacional *int      `json:"edadGestacional"`

	// Proceso de trabajo de parto y atención
	Induccion                     int     `json:"induccion"`
	TipoInduccion                 *string `json:"tipoInduccion"`
	AceleracionOcitocica          int     `json:"aceleracionOcitocica"`
	TrabajoPartoActivo            int     `json:"trabajoPartoActivo"`
	LibertadMovimiento            int     `json:"libertadMovimiento"`
	LiquidosLibres                int     `json:"liquidosLibres"`
	Anestesia                     *string `json:"anestesia"`
	MedidasNoFarmacologicas       int     `json:"medidasNoFarmacologicasParaElDolor"`
	MedidasNoFarmacologicasCuales *string `json:"medidasNoFarmacologicasParaElDolorCuales"`
	CausaCesarea                  *string `json:"causaCesarea"`
	PosicionExpulsivo             *string `json:"posicionExpulsivo"`
	Episiotomia                   int     `json:"episiotomia"`
	AlumbramientoDirigido         int     `json:"alumbramientoDirigido"`
	LigaduraTardia                int     `json:"ligaduraTardia"`
	PlanParto                     int     `json:"planParto"`
	PertinenciaCultural           int     `json:"pertinenciaCultural"`
	PlacentaSolicitada            int     `json:"placentaSolicitada"`
	LugarParto                    *string `json:"lugarParto"`
	AtencionProfesional           int     `json:"atencionProfesional"`
	FueraDeRed                    int     `json:"fueraDeRed"`

	// Acompañamiento
	AcompanamientoPreParto      int     `json:"acompanamientoPreParto"`
	AcompanamientoTrabajoParto  int     `json:"acompanamientoTrabajoParto"`
	AcompanamientoExpulsivo     int     `json:"acompanamientoExpulsivo"`
	AcompanamientoPostparto     int     `json:"acompanamientoPostparto"`
	AcompanamientoRecienNacido  int     `json:"acompanamientoRecienNacido"`
	NombreAcompanante           *string `json:"nombreAcompanante"`
	ParentescoAcompanante       *string `json:"parentescoAcompanante"`
	ParentescoRecienNacido      *string `json:"parentescoRecienNacido"`

	// Recién nacido
	Peso                   *float64          `json:"peso"`
	Talla                  *float64          `json:"talla"`
	CircunferenciaCraneana *float64          `json:"circunferenciaCraneana"`
	Apgar1                 *int              `json:"apgar1"`
	Apgar5                 *int              `json:"apgar5"`
	Apgar10                *int              `json:"apgar10"`
	Sexo                   *string           `json:"sexo"`
	Malformaciones         int               `json:"malformaciones"`
	ContactoPielAPiel      ContactoPielAPiel `json:"contactoPielAPiel"`
	LactanciaPrecoz        int               `json:"lactanciaPrecoz"`
	Destino                *string           `json:"destino"`
	AlojamientoConjunto    int               `json:"alojamientoConjunto"`

	// Exámenes de laboratorio
	Chagas     int    `json:"chagas"`
	VIH        int    `json:"vih"`
	VIHParto   int    `json:"vihParto"`
	VIHPartoRaw string `json:"vihPartoRaw"`
	HepatitisB int    `json:"hepatitisB"`
	RPR        int    `json:"rprVdrl"`

	// Personal que atiende
	Matrona *string `json:"matrona"`
	Medico  *string `json:"medico"`

	Observaciones *string `json:"observaciones"`

	// Relaciones (pobladas en la segunda pasada)
	Relaciones Relaciones       `json:"relaciones"`
	Conteo     ConteoRelaciones `json:"conteoRelaciones"`
}

// EsDomiciliario reports whether the birth happened at home, derived from the
// free-text place of birth.
func (p *Parto) EsDomiciliario() bool {
	return p.LugarParto != nil && strings.Contains(strings.ToUpper(*p.LugarParto), "DOMICILIO")
}

// MarshalJSON emits the canonical fields plus the legacy duplicate keys the
// historical UI expects (numero, id, fecha, hora, nombre, semanasGestacion,
// tipoAnestesia, perimetroCefalico). The duplicates are generated here, at
// the serialization boundary, never stored on the record.
func (p *Parto) MarshalJSON() ([]byte, error) {
	type alias Parto
	return json.Marshal(&struct {
		*alias
		LegacyNumero           int      `json:"numero"`
		LegacyID               string   `json:"id"`
		LegacyFecha            string   `json:"fecha"`
		LegacyHora             string   `json:"hora"`
		LegacyNombre           string   `json:"nombre"`
		LegacySemanasGestacion *int     `json:"semanasGestacion"`
		LegacyTipoAnestesia    *string  `json:"tipoAnestesia"`
		LegacyPerimetro        *float64 `json:"perimetroCefalico"`
	}{
		alias:                  (*alias)(p),
		LegacyNumero:           p.Numero,
		LegacyID:               p.TraceID,
		LegacyFecha:            p.FechaTexto,
		LegacyHora:             p.Hora,
		LegacyNombre:           p.Nombre,
		LegacySemanasGestacion: p.EdadGestacional,
		LegacyTipoAnestesia:    p.Anestesia,
		LegacyPerimetro:        p.CircunferenciaCraneana,
	})
}
