package partos

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Registro is one stored row of the registry: a normalized record plus its
// store identity. The trace id identifies the record within a parsed batch;
// the UUID identifies the row in the authoritative store.
type Registro struct {
	ID            uuid.UUID `json:"registroId"`
	Parto         *Parto    `json:"parto"`
	CreadoEn      time.Time `json:"creadoEn"`
	ActualizadoEn time.Time `json:"actualizadoEn"`
}

// Repository is the authoritative store for birth records.
type Repository interface {
	Crear(ctx context.Context, r *Registro) error
	CrearLote(ctx context.Context, rs []*Registro) error
	Obtener(ctx context.Context, id uuid.UUID) (*Registro, error)
	Actualizar(ctx context.Context, r *Registro) error
	Eliminar(ctx context.Context, id uuid.UUID) error
	Todos(ctx context.Context) ([]*Registro, error)
	Contar(ctx context.Context) (int, error)
}
