package partos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// repoPG persists records as key columns plus a JSONB document, keeping the
// store schema stable while the record keeps its ~80 normalized fields.
type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const partoCols = `id, trace_id, numero, rut_normalizado, mes, anio, datos, creado_en, actualizado_en`

func (r *repoPG) Crear(ctx context.Context, reg *Registro) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	datos, err := json.Marshal(reg.Parto)
	if err != nil {
		return fmt.Errorf("serializar parto: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO parto (id, trace_id, numero, rut_normalizado, mes, anio, datos)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		reg.ID, reg.Parto.TraceID, reg.Parto.Numero, reg.Parto.RutNormalizado,
		reg.Parto.Mes, reg.Parto.Anio, datos)
	return err
}

func (r *repoPG) CrearLote(ctx context.Context, regs []*Registro) error {
	if len(regs) == 0 {
		return nil
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("abrir transacción: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, reg := range regs {
		if reg.ID == uuid.Nil {
			reg.ID = uuid.New()
		}
		datos, err := json.Marshal(reg.Parto)
		if err != nil {
			return fmt.Errorf("serializar parto %s: %w", reg.Parto.TraceID, err)
		}
		// El trace_id es determinista, así que reimportar el mismo archivo
		// actualiza en vez de duplicar.
		if _, err := tx.Exec(ctx, `
			INSERT INTO parto (id, trace_id, numero, rut_normalizado, mes, anio, datos)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (trace_id) DO UPDATE SET
				numero=EXCLUDED.numero, rut_normalizado=EXCLUDED.rut_normalizado,
				mes=EXCLUDED.mes, anio=EXCLUDED.anio, datos=EXCLUDED.datos,
				actualizado_en=NOW()`,
			reg.ID, reg.Parto.TraceID, reg.Parto.Numero, reg.Parto.RutNormalizado,
			reg.Parto.Mes, reg.Parto.Anio, datos); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *repoPG) Obtener(ctx context.Context, id uuid.UUID) (*Registro, error) {
	return scanRegistro(r.pool.QueryRow(ctx, `SELECT `+partoCols+` FROM parto WHERE id = $1`, id))
}

func (r *repoPG) Actualizar(ctx context.Context, reg *Registro) error {
	datos, err := json.Marshal(reg.Parto)
	if err != nil {
		return fmt.Errorf("serializar parto: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE parto SET trace_id=$2, numero=$3, rut_normalizado=$4, mes=$5, anio=$6,
			datos=$7, actualizado_en=NOW()
		WHERE id = $1`,
		reg.ID, reg.Parto.TraceID, reg.Parto.Numero, reg.Parto.RutNormalizado,
		reg.Parto.Mes, reg.Parto.Anio, datos)
	return err
}

func (r *repoPG) Eliminar(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM parto WHERE id = $1`, id)
	return err
}

func (r *repoPG) Todos(ctx context.Context) ([]*Registro, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+partoCols+` FROM parto ORDER BY numero, creado_en`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*Registro
	for rows.Next() {
		reg, err := scanRegistro(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *repoPG) Contar(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM parto`).Scan(&total)
	return total, err
}

func scanRegistro(row pgx.Row) (*Registro, error) {
	var (
		reg     Registro
		traceID string
		numero  int
		rut     *string
		mes     *int
		anio    *int
		datos   []byte
	)
	if err := row.Scan(&reg.ID, &traceID, &numero, &rut, &mes, &anio, &datos,
		&reg.CreadoEn, &reg.ActualizadoEn); err != nil {
		return nil, err
	}

	var p Parto
	if err := json.Unmarshal(datos, &p); err != nil {
		return nil, fmt.Errorf("deserializar parto %s: %w", traceID, err)
	}
	reg.Parto = &p
	return &reg, nil
}
