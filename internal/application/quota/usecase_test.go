package quota_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdessi/pastificio-api/internal/application/quota"
	"github.com/mdessi/pastificio-api/internal/domain"
	"github.com/mdessi/pastificio-api/internal/domain/entity"
	"github.com/mdessi/pastificio-api/internal/infrastructure/memory"
)

func newAdmin() (*quota.AdminUseCase, *memory.QuotaRepo) {
	repo := memory.NewQuotaRepository(memory.NewStore())
	return quota.NewAdminUseCase(repo), repo
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreate_AltaBasica(t *testing.T) {
	uc, _ := newAdmin()

	q, err := uc.Create(quota.CreateInput{
		Date:      day("2026-09-12"),
		ProductID: "prod-1",
		Limit:     decimal.NewFromInt(60),
	})
	require.NoError(t, err)

	assert.Equal(t, "prod-1", q.ProductID)
	assert.True(t, q.Consumed.Equal(decimal.Zero))
	assert.Equal(t, entity.UnitKilogram, q.Unit, "sin unidad explícita se asume kg")
	assert.Equal(t, 80, q.AlertThresholdPercent, "umbral por defecto 80%")
}

func TestCreate_DuplicadoMismoDiaScope(t *testing.T) {
	uc, _ := newAdmin()
	in := quota.CreateInput{Date: day("2026-09-12"), ProductID: "prod-1", Limit: decimal.NewFromInt(60)}

	_, err := uc.Create(in)
	require.NoError(t, err)

	_, err = uc.Create(in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestCreate_ScopeInvalido(t *testing.T) {
	uc, _ := newAdmin()

	// ninguno de los dos
	_, err := uc.Create(quota.CreateInput{Date: day("2026-09-12"), Limit: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// ambos a la vez
	_, err = uc.Create(quota.CreateInput{
		Date: day("2026-09-12"), ProductID: "prod-1", CategoryID: "cat-1", Limit: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_LimiteNoPositivo(t *testing.T) {
	uc, _ := newAdmin()
	_, err := uc.Create(quota.CreateInput{Date: day("2026-09-12"), ProductID: "prod-1", Limit: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Alta masiva sobre un rango limpio: un cupo por día, extremos incluidos.
func TestBulkCreate_RangoLimpio(t *testing.T) {
	uc, _ := newAdmin()

	result, err := uc.BulkCreate(quota.BulkCreateInput{
		CreateInput: quota.CreateInput{ProductID: "prod-1", Limit: decimal.NewFromInt(60)},
		From:        day("2026-09-10"),
		To:          day("2026-09-14"),
	})
	require.NoError(t, err)

	assert.Len(t, result.Created, 5)
	assert.Empty(t, result.Overwritten)
	assert.Empty(t, result.Skipped)

	list, err := uc.ListByRange(day("2026-09-10"), day("2026-09-14"))
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

// Sin overwrite, los días ya configurados se reportan como omitidos y quedan intactos.
func TestBulkCreate_SinOverwriteOmiteExistentes(t *testing.T) {
	uc, _ := newAdmin()

	_, err := uc.Create(quota.CreateInput{
		Date: day("2026-09-12"), ProductID: "prod-1", Limit: decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	result, err := uc.BulkCreate(quota.BulkCreateInput{
		CreateInput: quota.CreateInput{ProductID: "prod-1", Limit: decimal.NewFromInt(60)},
		From:        day("2026-09-11"),
		To:          day("2026-09-13"),
	})
	require.NoError(t, err)

	assert.Len(t, result.Created, 2)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "2026-09-12", result.Skipped[0].Format("2006-01-02"))

	// el día omitido conserva su límite original
	list, err := uc.ListByDate(day("2026-09-12"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Limit.Equal(decimal.NewFromInt(30)))
}

// Con overwrite se reescribe el límite pero el consumo reservado se conserva:
// sobrescribir configuración nunca borra capacidad ya tomada por pedidos.
func TestBulkCreate_OverwriteConservaConsumo(t *testing.T) {
	uc, repo := newAdmin()

	created, err := uc.Create(quota.CreateInput{
		Date: day("2026-09-12"), ProductID: "prod-1", Limit: decimal.NewFromInt(30),
	})
	require.NoError(t, err)
	require.NoError(t, repo.AddConsumed(created.ID, decimal.NewFromInt(12)))

	result, err := uc.BulkCreate(quota.BulkCreateInput{
		CreateInput: quota.CreateInput{ProductID: "prod-1", Limit: decimal.NewFromInt(60)},
		From:        day("2026-09-12"),
		To:          day("2026-09-12"),
		Overwrite:   true,
	})
	require.NoError(t, err)
	require.Len(t, result.Overwritten, 1)

	list, err := uc.ListByDate(day("2026-09-12"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Limit.Equal(decimal.NewFromInt(60)), "el límite se reescribe")
	assert.True(t, list[0].Consumed.Equal(decimal.NewFromInt(12)), "el consumo se conserva")
}

func TestBulkCreate_RangoInvertidoFalla(t *testing.T) {
	uc, _ := newAdmin()
	_, err := uc.BulkCreate(quota.BulkCreateInput{
		CreateInput: quota.CreateInput{ProductID: "prod-1", Limit: decimal.NewFromInt(60)},
		From:        day("2026-09-14"),
		To:          day("2026-09-10"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete_CupoInexistente(t *testing.T) {
	uc, _ := newAdmin()
	assert.ErrorIs(t, uc.Delete("no-existe"), domain.ErrNotFound)
}
