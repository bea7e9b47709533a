package database

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadfunnel/internal/entity"
)

var planColumns = []string{"id", "name", "price_cents", "currency", "interval", "stripe_price_id"}

func TestPlanRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM plans WHERE id = $1")).
		WithArgs("growth").
		WillReturnRows(sqlmock.NewRows(planColumns).AddRow("growth", "Growth", 9900, "usd", "month", "price_growth"))

	p, err := repo.FindByID(context.Background(), "growth")
	require.NoError(t, err)
	assert.Equal(t, "price_growth", p.StripePriceID)
	assert.True(t, p.Recurring())

	mock.ExpectQuery(regexp.QuoteMeta("FROM plans WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrPlanNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM plans ORDER BY price_cents")).
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow("starter", "Starter", 4900, "usd", "month", "price_starter").
			AddRow("setup", "Setup", 29900, "usd", "", "price_setup"))

	plans, err := NewPlanRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.False(t, plans[1].Recurring())
}

func TestPlanRepository_Seed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
		WithArgs("starter", "Starter", 4900, "usd", "month", "price_starter").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO NOTHING")).
		WithArgs("setup", "Setup", 29900, "usd", "", "price_setup").
		WillReturnError(sql.ErrConnDone)

	err = NewPlanRepository(db).Seed(context.Background(), []*entity.Plan{
		{ID: "starter", Name: "Starter", PriceCents: 4900, Currency: "usd", Interval: "month", StripePriceID: "price_starter"},
		{ID: "setup", Name: "Setup", PriceCents: 29900, Currency: "usd", StripePriceID: "price_setup"},
	})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
