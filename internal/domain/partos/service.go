package partos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jcmo5969-netizen/libro-partos-sub000/pkg/pagination"
)

// Service orchestrates the pipeline around the authoritative store: parse,
// persist, and re-derive the relation-enriched collection. There is no
// incremental reindexing: every read of the collection re-runs the two-phase
// enrichment over the complete set, so edits and deletions stay consistent.
type Service struct {
	repo   Repository
	parser *Parser
	log    zerolog.Logger
}

func NewService(repo Repository, parser *Parser, log zerolog.Logger) *Service {
	return &Service{repo: repo, parser: parser, log: log}
}

// ResultadoImportacion reports the outcome of a bulk text import.
type ResultadoImportacion struct {
	Importados   int           `json:"importados"`
	Advertencias []Advertencia `json:"advertencias"`
}

// Importar parses a whole tab-delimited export and persists every record
// that could be built. Skipped lines come back as warnings, never as errors.
func (s *Service) Importar(ctx context.Context, texto string) (*ResultadoImportacion, error) {
	res := s.parser.ParseTexto(texto)

	regs := make([]*Registro, 0, len(res.Partos))
	for _, p := range res.Partos {
		regs = append(regs, &Registro{ID: uuid.New(), Parto: p})
	}
	if err := s.repo.CrearLote(ctx, regs); err != nil {
		return nil, fmt.Errorf("persistir lote: %w", err)
	}

	s.log.Info().
		Int("importados", len(regs)).
		Int("advertencias", len(res.Advertencias)).
		Msg("importación de partos completada")

	return &ResultadoImportacion{
		Importados:   len(regs),
		Advertencias: res.Advertencias,
	}, nil
}

// Crear builds one record from a named-field form submission and persists it.
func (s *Service) Crear(ctx context.Context, valores map[string]string) (*Registro, error) {
	total, err := s.repo.Contar(ctx)
	if err != nil {
		return nil, fmt.Errorf("contar registros: %w", err)
	}

	p := s.parser.DesdeFormulario(valores, total+1)
	reg := &Registro{ID: uuid.New(), Parto: p}
	if err := s.repo.Crear(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// Obtener returns one stored record without relation enrichment.
func (s *Service) Obtener(ctx context.Context, id uuid.UUID) (*Registro, error) {
	return s.repo.Obtener(ctx, id)
}

// Actualizar rebuilds the record from the submitted fields, keeping the row
// id and the stored ordinal. Relations are re-derived on the next collection
// read.
func (s *Service) Actualizar(ctx context.Context, id uuid.UUID, valores map[string]string) (*Registro, error) {
	reg, err := s.repo.Obtener(ctx, id)
	if err != nil {
		return nil, err
	}

	reg.Parto = s.parser.DesdeFormulario(valores, reg.Parto.Numero)
	if err := s.repo.Actualizar(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *Service) Eliminar(ctx context.Context, id uuid.UUID) error {
	return s.repo.Eliminar(ctx, id)
}

// Listar returns one page of stored records. The relation enrichment runs
// over the complete collection first, so the page carries correct relation
// lists no matter the slice.
func (s *Service) Listar(ctx context.Context, limit, offset int) ([]*Registro, int, error) {
	regs, err := s.repo.Todos(ctx)
	if err != nil {
		return nil, 0, err
	}
	Enriquecer(extraerPartos(regs))

	total := len(regs)
	inicio, fin := pagination.Params{Limit: limit, Offset: offset}.Slice(total)
	return regs[inicio:fin], total, nil
}

// Coleccion returns the full enriched record collection, in load order. This
// is the read surface the aggregate engine consumes.
func (s *Service) Coleccion(ctx context.Context) ([]*Parto, error) {
	regs, err := s.repo.Todos(ctx)
	if err != nil {
		return nil, err
	}
	coleccion := extraerPartos(regs)
	Enriquecer(coleccion)
	return coleccion, nil
}

// Madres returns the normalized-RUT to trace-ids map over the full
// collection.
func (s *Service) Madres(ctx context.Context) (map[string][]string, error) {
	regs, err := s.repo.Todos(ctx)
	if err != nil {
		return nil, err
	}
	return Enriquecer(extraerPartos(regs)), nil
}

func extraerPartos(regs []*Registro) []*Parto {
	coleccion := make([]*Parto, 0, len(regs))
	for _, reg := range regs {
		coleccion = append(coleccion, reg.Parto)
	}
	return coleccion
}
