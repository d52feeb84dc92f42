package partos

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Posiciones fijas de columna para la vía de ingesta de texto tabulado.
// La planilla exportada no trae fila de encabezado: la línea 1 ya es dato.
const (
	colNombre = iota
	colRut
	colEdad
	colPuebloOriginario
	colNacionalidad
	colMigrante
	colDiscapacidad
	colIdentidadGenero
	colPrivadaDeLibertad
	colComuna
	colConsultorio
	colEmbControlado
	colFecha
	colHora
	colSemanas
	colTipoParto
	colParidad
	colPresentacion
	colInduccion
	colAceleracionOcitocica
	colTrabajoPartoActivo
	colLibertadMovimiento
	colLiquidosLibres
	colAnestesia
	colMedidasNoFarmacologicas
	colCausaCesareaOMedidas // columna compartida, ver resolución abajo
	colPosicionExpulsivo
	colEpisiotomia
	colAlumbramientoDirigido
	colLigaduraTardia
	colPlanParto
	colPertinenciaCultural
	colPlacentaSolicitada
	colLugarParto
	colAtencionProfesional
	colFueraDeRed
	colAcompPreParto
	colAcompTrabajoParto
	colAcompExpulsivo
	colAcompPostparto
	colAcompRecienNacido
	colNombreAcompanante
	colParentescoAcompanante
	colParentescoRecienNacido
	colContactoPielAPiel
	colLactanciaPrecoz
	colDestino
	colPeso
	colTalla
	colCircunferenciaCraneana
	colApgar1
	colApgar5
	colApgar10
	colSexo
	colMalformaciones
	colChagas
	colVIH
	colVIHParto
	colHepatitisB
	colRPR
	colMatrona
	colMedico
	colObservaciones
)

// Una línea con menos campos que esto se descarta con advertencia.
const minCampos = 10

// Advertencia describes a skipped line or a degraded field during a batch
// parse. Warnings never abort the batch.
type Advertencia struct {
	Linea  int    `json:"linea"`
	Motivo string `json:"motivo"`
}

// ParseResult is the explicit outcome of a batch parse: the records that
// could be built, in input order, plus every per-line warning. An empty or
// entirely invalid input yields an empty collection, not an error.
type ParseResult struct {
	Partos       []*Parto      `json:"partos"`
	Advertencias []Advertencia `json:"advertencias"`
}

// Parser builds normalized records from raw tab-delimited text or from named
// form submissions.
type Parser struct {
	log zerolog.Logger
}

func NewParser(log zerolog.Logger) *Parser {
	return &Parser{log: log}
}

// ParseTexto parses a whole tab-delimited export: UTF-8 text, one record per
// line, fields separated by tabs. Malformed lines are skipped with a warning
// and never abort the rest of the batch. Relation lists are initialised empty
// here; they are populated by the second pass (EnlazarRelaciones).
func (pr *Parser) ParseTexto(texto string) *ParseResult {
	res := &ParseResult{}
	if strings.TrimSpace(texto) == "" {
		return res
	}

	numero := 0
	for i, linea := range strings.Split(texto, "\n") {
		linea = strings.TrimRight(linea, "\r")
		if strings.TrimSpace(linea) == "" {
			continue
		}

		campos := strings.Split(linea, "\t")
		if len(campos) < minCampos {
			res.advertir(i+1, fmt.Sprintf("línea con %d campos (mínimo %d), descartada", len(campos), minCampos))
			pr.log.Warn().Int("linea", i+1).Int("campos", len(campos)).Msg("línea descartada por campos insuficientes")
			continue
		}

		numero++
		p := pr.construir(campos, numero, huellaLinea(linea, numero))
		if p.Fecha == nil && strings.TrimSpace(campo(campos, colFecha)) != "" {
			res.advertir(i+1, fmt.Sprintf("fecha inválida %q, registro conservado sin fecha", campo(campos, colFecha)))
			pr.log.Warn().Int("linea", i+1).Str("fecha", campo(campos, colFecha)).Msg("fecha de parto inválida")
		}
		res.Partos = append(res.Partos, p)
	}
	return res
}

// DesdeFormulario builds one record from a flat named-field submission. The
// field names match the canonical json tags of Parto; the same normalizers
// apply, without positional mapping.
func (pr *Parser) DesdeFormulario(valores map[string]string, numero int) *Parto {
	campos := make([]string, colObservaciones+1)
	for clave, col := range camposFormulario {
		campos[col] = valores[clave]
	}
	// Los nombres canónicos alimentan la misma columna compartida; la
	// resolución por tipo de parto decide en cuál campo termina el valor.
	if campos[colCausaCesareaOMedidas] == "" {
		if v := valores["causaCesarea"]; v != "" {
			campos[colCausaCesareaOMedidas] = v
		} else if v := valores["medidasNoFarmacologicasParaElDolorCuales"]; v != "" {
			campos[colCausaCesareaOMedidas] = v
		}
	}
	return pr.construir(campos, numero, huellaFormulario(valores, numero))
}

// camposFormulario maps canonical field names of the form-submission path
// onto the same slots the positional path fills, so both paths share one
// builder.
var camposFormulario = map[string]int{
	"nombreMadre":                              colNombre,
	"rut":                                      colRut,
	"edad":                                     colEdad,
	"puebloOriginario":                         colPuebloOriginario,
	"nacionalidad":                             colNacionalidad,
	"migrante":                                 colMigrante,
	"discapacidad":                             colDiscapacidad,
	"identidadGenero":                          colIdentidadGenero,
	"privadaDeLibertad":                        colPrivadaDeLibertad,
	"comuna":                                   colComuna,
	"consultorio":                              colConsultorio,
	"embControlado":                            colEmbControlado,
	"fechaParto":                               colFecha,
	"horaParto":                                colHora,
	"edadGestacional":                          colSemanas,
	"tipoParto":                                colTipoParto,
	"paridad":                                  colParidad,
	"presentacion":                             colPresentacion,
	"induccion":                                colInduccion,
	"aceleracionOcitocica":                     colAceleracionOcitocica,
	"trabajoPartoActivo":                       colTrabajoPartoActivo,
	"libertadMovimiento":                       colLibertadMovimiento,
	"liquidosLibres":                           colLiquidosLibres,
	"anestesia":                                colAnestesia,
	"medidasNoFarmacologicasParaElDolor":       colMedidasNoFarmacologicas,
	"causaCesareaOMedidas":                     colCausaCesareaOMedidas,
	"posicionExpulsivo":                        colPosicionExpulsivo,
	"episiotomia":                              colEpisiotomia,
	"alumbramientoDirigido":                    colAlumbramientoDirigido,
	"ligaduraTardia":                           colLigaduraTardia,
	"planParto":                                colPlanParto,
	"pertinenciaCultural":                      colPertinenciaCultural,
	"placentaSolicitada":                       colPlacentaSolicitada,
	"lugarParto":                               colLugarParto,
	"atencionProfesional":                      colAtencionProfesional,
	"fueraDeRed":                               colFueraDeRed,
	"acompanamientoPreParto":                   colAcompPreParto,
	"acompanamientoTrabajoParto":               colAcompTrabajoParto,
	"acompanamientoExpulsivo":                  colAcompExpulsivo,
	"acompanamientoPostparto":                  colAcompPostparto,
	"acompanamientoRecienNacido":               colAcompRecienNacido,
	"nombreAcompanante":                        colNombreAcompanante,
	"parentescoAcompanante":                    colParentescoAcompanante,
	"parentescoRecienNacido":                   colParentescoRecienNacido,
	"contactoPielAPiel":                        colContactoPielAPiel,
	"lactanciaPrecoz":                          colLactanciaPrecoz,
	"destino":                                  colDestino,
	"peso":                                     colPeso,
	"talla":                                    colTalla,
	"circunferenciaCraneana":                   colCircunferenciaCraneana,
	"apgar1":                                   colApgar1,
	"apgar5":                                   colApgar5,
	"apgar10":                                  colApgar10,
	"sexo":                                     colSexo,
	"malformaciones":                           colMalformaciones,
	"chagas":                                   colChagas,
	"vih":                                      colVIH,
	"vihParto":                                 colVIHParto,
	"hepatitisB":                               colHepatitisB,
	"rprVdrl":                                  colRPR,
	"matrona":                                  colMatrona,
	"medico":                                   colMedico,
	"observaciones":                            colObservaciones,
}

// construir maps one row of raw fields into a normalized Parto. A bad field
// degrades to nil/0; it never invalidates the whole record.
func (pr *Parser) construir(campos []string, numero int, traceID string) *Parto {
	p := &Parto{
		TraceID: traceID,
		Numero:  numero,
	}

	// Identidad y madre
	p.Nombre = strings.TrimSpace(campo(campos, colNombre))
	p.Rut = strings.TrimSpace(campo(campos, colRut))
	p.RutNormalizado = NormalizeRUT(p.Rut)
	p.Edad = CleanInt(campo(campos, colEdad))
	p.PuebloOriginario = NormalizeFlag(campo(campos, colPuebloOriginario))
	p.Nacionalidad = CleanString(campo(campos, colNacionalidad))
	p.Migrante = NormalizeFlag(campo(campos, colMigrante))
	p.Discapacidad = NormalizeFlag(campo(campos, colDiscapacidad))
	p.IdentidadGenero = CleanString(campo(campos, colIdentidadGenero))
	p.PrivadaDeLibertad = NormalizeFlag(campo(campos, colPrivadaDeLibertad))
	p.Comuna = CleanString(campo(campos, colComuna))
	p.Consultorio = CleanString(campo(campos, colConsultorio))
	p.EmbarazoControlado = NormalizeFlag(campo(campos, colEmbControlado))

	// Temporal: mes y año se derivan una sola vez aquí, nunca desde la fecha
	// con formato de pantalla.
	p.FechaTexto = strings.TrimSpace(campo(campos, colFecha))
	p.Hora = strings.TrimSpace(campo(campos, colHora))
	if fecha, err := parsearFecha(p.FechaTexto); err == nil {
		p.Fecha = fecha
		mes := int(fecha.Month())
		anio := fecha.Year()
		p.Mes = &mes
		p.Anio = &anio
	}

	// Clasificación
	p.TipoParto = ClasificarTipoParto(campo(campos, colTipoParto))
	p.Paridad = ClasificarParidad(campo(campos, colParidad))
	p.Presentacion = ClasificarPresentacion(campo(campos, colPresentacion))
	p.EdadGestacional = CleanInt(campo(campos, colSemanas))

	// Inducción: NO/vacío, MECANICA o FARMACOLOGICA
	induccion := strings.ToUpper(strings.TrimSpace(campo(campos, colInduccion)))
	switch {
	case strings.Contains(induccion, "MECANICA") || strings.Contains(induccion, "MECÁNICA"):
		p.Induccion = 1
		tipo := "MECANICA"
		p.TipoInduccion = &tipo
	case strings.Contains(induccion, "FARMACOLOGICA") || strings.Contains(induccion, "FARMACOLÓGICA"):
		p.Induccion = 1
		tipo := "FARMACOLOGICA"
		p.TipoInduccion = &tipo
	default:
		p.Induccion = NormalizeFlag(induccion)
	}

	// Proceso
	p.AceleracionOcitocica = NormalizeFlag(campo(campos, colAceleracionOcitocica))
	p.TrabajoPartoActivo = NormalizeFlag(campo(campos, colTrabajoPartoActivo))
	p.LibertadMovimiento = NormalizeFlag(campo(campos, colLibertadMovimiento))
	p.LiquidosLibres = NormalizeFlag(campo(campos, colLiquidosLibres))
	p.Anestesia = CleanString(campo(campos, colAnestesia))
	p.MedidasNoFarmacologicas = NormalizeFlag(campo(campos, colMedidasNoFarmacologicas))
	p.PosicionExpulsivo = CleanString(campo(campos, colPosicionExpulsivo))
	p.Episiotomia = NormalizeFlag(campo(campos, colEpisiotomia))
	p.AlumbramientoDirigido = NormalizeFlag(campo(campos, colAlumbramientoDirigido))
	p.LigaduraTardia = NormalizeFlag(campo(campos, colLigaduraTardia))
	p.PlanParto = NormalizeFlag(campo(campos, colPlanParto))
	p.PertinenciaCultural = NormalizeFlag(campo(campos, colPertinenciaCultural))
	p.PlacentaSolicitada = NormalizeFlag(campo(campos, colPlacentaSolicitada))
	p.LugarParto = CleanString(campo(campos, colLugarParto))
	p.AtencionProfesional = NormalizeFlag(campo(campos, colAtencionProfesional))
	p.FueraDeRed = NormalizeFlag(campo(campos, colFueraDeRed))

	// Columna compartida: causa de cesárea para cesáreas, detalle de medidas
	// no farmacológicas para todo el resto. Mutuamente excluyentes.
	compartido := CleanString(campo(campos, colCausaCesareaOMedidas))
	if EsCesarea(p.TipoParto) {
		p.CausaCesarea = compartido
	} else {
		p.MedidasNoFarmacologicasCuales = compartido
	}

	// Acompañamiento
	p.AcompanamientoPreParto = NormalizeFlag(campo(campos, colAcompPreParto))
	p.AcompanamientoTrabajoParto = NormalizeFlag(campo(campos, colAcompTrabajoParto))
	p.AcompanamientoExpulsivo = NormalizeFlag(campo(campos, colAcompExpulsivo))
	p.AcompanamientoPostparto = NormalizeFlag(campo(campos, colAcompPostparto))
	p.AcompanamientoRecienNacido = NormalizeFlag(campo(campos, colAcompRecienNacido))
	p.NombreAcompanante = CleanString(campo(campos, colNombreAcompanante))
	p.ParentescoAcompanante = CleanString(campo(campos, colParentescoAcompanante))
	p.ParentescoRecienNacido = CleanString(campo(campos, colParentescoRecienNacido))

	// Recién nacido
	p.ContactoPielAPiel = NormalizeContactoPielAPiel(campo(campos, colContactoPielAPiel))
	p.LactanciaPrecoz = NormalizeFlag(campo(campos, colLactanciaPrecoz))
	p.Destino = CleanString(campo(campos, colDestino))
	p.AlojamientoConjunto = inferirAlojamientoConjunto(p.Destino)
	p.Peso = CleanFloat(campo(campos, colPeso))
	p.Talla = CleanFloat(campo(campos, colTalla))
	p.CircunferenciaCraneana = CleanFloat(campo(campos, colCircunferenciaCraneana))
	p.Apgar1 = CleanInt(campo(campos, colApgar1))
	p.Apgar5 = CleanInt(campo(campos, colApgar5))
	p.Apgar10 = CleanInt(campo(campos, colApgar10))
	p.Sexo = NormalizeSexo(campo(campos, colSexo))
	p.Malformaciones = NormalizeFlag(campo(campos, colMalformaciones))

	// Laboratorio
	p.Chagas = NormalizeLabResult(campo(campos, colChagas))
	p.VIH = NormalizeLabResult(campo(campos, colVIH))
	p.VIHParto, p.VIHPartoRaw = NormalizeVIHParto(campo(campos, colVIHParto))
	p.HepatitisB = NormalizeLabResult(campo(campos, colHepatitisB))
	p.RPR = NormalizeFlag(campo(campos, colRPR))

	// Personal
	p.Matrona = CleanString(campo(campos, colMatrona))
	p.Medico = CleanString(campo(campos, colMedico))
	p.Observaciones = CleanString(campo(campos, colObservaciones))

	return p
}

// inferirAlojamientoConjunto applies the historical rooming-in heuristic over
// the free-text destination: contains "SALA" and does not contain "NO".
// Known to be fragile on text like "SALA DE AISLAMIENTO, NO ALOJAMIENTO";
// preserved verbatim for backward compatibility.
func inferirAlojamientoConjunto(destino *string) int {
	if destino == nil {
		return 0
	}
	d := strings.ToUpper(*destino)
	if strings.Contains(d, "SALA") && !strings.Contains(d, "NO") {
		return 1
	}
	return 0
}

// parsearFecha parses MM/DD/YYYY with month in [1,12], day in [1,31] and
// year in [2000,2100].
func parsearFecha(raw string) (*time.Time, error) {
	partes := strings.Split(strings.TrimSpace(raw), "/")
	if len(partes) != 3 {
		return nil, fmt.Errorf("fecha %q: se esperaba MM/DD/YYYY", raw)
	}
	mes, err1 := strconv.Atoi(strings.TrimSpace(partes[0]))
	dia, err2 := strconv.Atoi(strings.TrimSpace(partes[1]))
	anio, err3 := strconv.Atoi(strings.TrimSpace(partes[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, fmt.Errorf("fecha %q: componentes no numéricos", raw)
	}
	if mes < 1 || mes > 12 || dia < 1 || dia > 31 || anio < 2000 || anio > 2100 {
		return nil, fmt.Errorf("fecha %q fuera de rango", raw)
	}
	f := time.Date(anio, time.Month(mes), dia, 0, 0, 0, 0, time.UTC)
	return &f, nil
}

// campo returns the i-th field or "" when the row is short.
func campo(campos []string, i int) string {
	if i < 0 || i >= len(campos) {
		return ""
	}
	return campos[i]
}

func (r *ParseResult) advertir(linea int, motivo string) {
	r.Advertencias = append(r.Advertencias, Advertencia{Linea: linea, Motivo: motivo})
}

// huellaLinea derives the stable trace id for a text-ingested record: a pure
// content fingerprint over the raw line plus its batch ordinal. The same line
// at the same position always yields the same id, in any run.
func huellaLinea(linea string, numero int) string {
	sum := sha256.Sum256([]byte(strconv.Itoa(numero) + "\t" + linea))
	return fmt.Sprintf("p%d-%s", numero, hex.EncodeToString(sum[:6]))
}

// huellaFormulario derives the trace id for a form submission from its sorted
// key=value pairs, so submission-map iteration order cannot change the id.
func huellaFormulario(valores map[string]string, numero int) string {
	claves := make([]string, 0, len(valores))
	for k := range valores {
		claves = append(claves, k)
	}
	sort.Strings(claves)

	var b strings.Builder
	for _, k := range claves {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(valores[k])
		b.WriteByte('\t')
	}
	sum := sha256.Sum256([]byte(strconv.Itoa(numero) + "\t" + b.String()))
	return fmt.Sprintf("p%d-%s", numero, hex.EncodeToString(sum[:6]))
}
