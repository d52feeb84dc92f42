package partos

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// -- Mock repository --

type mockRepo struct {
	registros map[uuid.UUID]*Registro
	orden     []uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{registros: make(map[uuid.UUID]*Registro)}
}

func (m *mockRepo) Crear(_ context.Context, r *Registro) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreadoEn = time.Now()
	r.ActualizadoEn = time.Now()
	m.registros[r.ID] = r
	m.orden = append(m.orden, r.ID)
	return nil
}

func (m *mockRepo) CrearLote(ctx context.Context, rs []*Registro) error {
	for _, r := range rs {
		if err := m.Crear(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockRepo) Obtener(_ context.Context, id uuid.UUID) (*Registro, error) {
	r, ok := m.registros[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockRepo) Actualizar(_ context.Context, r *Registro) error {
	if _, ok := m.registros[r.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.ActualizadoEn = time.Now()
	m.registros[r.ID] = r
	return nil
}

func (m *mockRepo) Eliminar(_ context.Context, id uuid.UUID) error {
	delete(m.registros, id)
	for i, o := range m.orden {
		if o == id {
			m.orden = append(m.orden[:i], m.orden[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockRepo) Todos(_ context.Context) ([]*Registro, error) {
	out := make([]*Registro, 0, len(m.orden))
	for _, id := range m.orden {
		out = append(out, m.registros[id])
	}
	return out, nil
}

func (m *mockRepo) Contar(_ context.Context) (int, error) {
	return len(m.registros), nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	log := zerolog.Nop()
	return NewService(repo, NewParser(log), log), repo
}

// -- Tests --

func TestService_Importar(t *testing.T) {
	svc, repo := newTestService()
	texto := strings.Join([]string{
		linea(map[int]string{colNombre: "MARIA", colRut: "12.345.678-9", colTipoParto: "VAGINAL", colFecha: "03/15/2024"}),
		"corta\tlinea",
		linea(map[int]string{colNombre: "ROSA", colRut: "11.111.111-1", colTipoParto: "CES URG", colFecha: "03/20/2024"}),
	}, "\n")

	res, err := svc.Importar(context.Background(), texto)
	if err != nil {
		t.Fatal(err)
	}
	if res.Importados != 2 {
		t.Errorf("importados = %d, want 2", res.Importados)
	}
	if len(res.Advertencias) != 1 {
		t.Errorf("advertencias = %d, want 1", len(res.Advertencias))
	}
	if n, _ := repo.Contar(context.Background()); n != 2 {
		t.Errorf("registros persistidos = %d, want 2", n)
	}
}

// Un registro sin RUT es válido: se importa con rut_normalizado nulo, igual
// que mes y anio cuando falta la fecha. La columna del esquema es nullable
// por lo mismo.
func TestService_Importar_SinRut(t *testing.T) {
	svc, repo := newTestService()
	texto := linea(map[int]string{colNombre: "NN", colTipoParto: "VAGINAL", colFecha: "03/15/2024"})

	res, err := svc.Importar(context.Background(), texto)
	if err != nil {
		t.Fatal(err)
	}
	if res.Importados != 1 {
		t.Fatalf("importados = %d, want 1", res.Importados)
	}

	regs, _ := repo.Todos(context.Background())
	if len(regs) != 1 {
		t.Fatalf("registros persistidos = %d, want 1", len(regs))
	}
	if regs[0].Parto.RutNormalizado != nil {
		t.Errorf("rutNormalizado = %v, want nil", *regs[0].Parto.RutNormalizado)
	}
}

func TestService_CrearYObtener(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Crear(ctx, map[string]string{
		"nombreMadre": "MARIA PEREZ",
		"rut":         "12.345.678-9",
		"tipoParto":   "VAGINAL",
	})
	if err != nil {
		t.Fatal(err)
	}
	if reg.Parto.Numero != 1 {
		t.Errorf("numero = %d, want 1", reg.Parto.Numero)
	}

	got, err := svc.Obtener(ctx, reg.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Parto.Nombre != "MARIA PEREZ" {
		t.Errorf("nombre = %q", got.Parto.Nombre)
	}

	// El siguiente registro recibe el ordinal siguiente.
	reg2, err := svc.Crear(ctx, map[string]string{"nombreMadre": "ROSA"})
	if err != nil {
		t.Fatal(err)
	}
	if reg2.Parto.Numero != 2 {
		t.Errorf("numero del segundo = %d, want 2", reg2.Parto.Numero)
	}
}

func TestService_Actualizar(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reg, err := svc.Crear(ctx, map[string]string{"nombreMadre": "MARIA", "tipoParto": "VAGINAL"})
	if err != nil {
		t.Fatal(err)
	}
	numeroOriginal := reg.Parto.Numero

	got, err := svc.Actualizar(ctx, reg.ID, map[string]string{
		"nombreMadre":          "MARIA",
		"tipoParto":            "CES URG",
		"causaCesareaOMedidas": "SUFRIMIENTO FETAL",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != reg.ID {
		t.Error("la actualización no debe cambiar el id de fila")
	}
	if got.Parto.Numero != numeroOriginal {
		t.Errorf("numero = %d, want %d", got.Parto.Numero, numeroOriginal)
	}
	if got.Parto.TipoParto.Valor != TipoCesareaUrgencia {
		t.Errorf("tipoParto = %q", got.Parto.TipoParto.Valor)
	}
	if got.Parto.CausaCesarea == nil {
		t.Error("causaCesarea debería poblarse tras cambiar a cesárea")
	}
}

func TestService_Actualizar_NoExiste(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Actualizar(context.Background(), uuid.New(), map[string]string{})
	if err == nil {
		t.Error("esperaba error para un id inexistente")
	}
}

// La colección devuelta trae las relaciones recalculadas sobre el conjunto
// completo; al eliminar un registro la relación desaparece en la siguiente
// lectura.
func TestService_ColeccionRecalculaRelaciones(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Crear(ctx, map[string]string{"nombreMadre": "MARIA", "rut": "12.345.678-9"})
	b, _ := svc.Crear(ctx, map[string]string{"nombreMadre": "MARIA", "rut": "123456789"})

	coleccion, err := svc.Coleccion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(coleccion) != 2 {
		t.Fatalf("colección = %d registros, want 2", len(coleccion))
	}
	if coleccion[0].Conteo.PartosMismaMadre != 1 {
		t.Errorf("los dos formatos del mismo RUT deberían relacionarse: %+v", coleccion[0].Conteo)
	}

	if err := svc.Eliminar(ctx, b.ID); err != nil {
		t.Fatal(err)
	}
	coleccion, err = svc.Coleccion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(coleccion) != 1 {
		t.Fatalf("colección tras borrado = %d, want 1", len(coleccion))
	}
	if coleccion[0].Conteo.PartosMismaMadre != 0 {
		t.Errorf("la relación con el borrado debería desaparecer: %+v", coleccion[0].Conteo)
	}
	_ = a
}

func TestService_Listar(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := svc.Crear(ctx, map[string]string{"nombreMadre": "M"}); err != nil {
			t.Fatal(err)
		}
	}

	regs, total, err := svc.Listar(ctx, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(regs) != 2 {
		t.Errorf("total=%d len=%d, want 5 y 2", total, len(regs))
	}

	regs, total, err = svc.Listar(ctx, 10, 4)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 || len(regs) != 1 {
		t.Errorf("total=%d len=%d, want 5 y 1", total, len(regs))
	}

	regs, _, err = svc.Listar(ctx, 10, 99)
	if err != nil {
		t.Fatal(err)
	}
	if len(regs) != 0 {
		t.Errorf("offset fuera de rango debería dar página vacía: %d", len(regs))
	}
}

func TestService_Madres(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	svc.Crear(ctx, map[string]string{"nombreMadre": "A", "rut": "12.345.678-9"})
	svc.Crear(ctx, map[string]string{"nombreMadre": "B", "rut": "12.345.678-9"})
	svc.Crear(ctx, map[string]string{"nombreMadre": "C", "rut": "1-9"})

	madres, err := svc.Madres(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(madres["123456789"]) != 2 {
		t.Errorf("madres[123456789] = %v", madres["123456789"])
	}
	if len(madres["19"]) != 1 {
		t.Errorf("madres[19] = %v", madres["19"])
	}
}
