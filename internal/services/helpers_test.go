package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/feraben/crm-api/internal/config"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/feraben/crm-api/internal/storage"
	"github.com/feraben/crm-api/internal/testutil"
)

var fixedNow = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:               "services-test-secret",
		JWTExpirationHours:      2,
		DefaultSellerCommission: decimal.NewFromInt(10),
		Company: config.CompanyInfo{
			Name:    "Feraben SRL",
			RUT:     "211234560019",
			Address: "Montevideo",
		},
	}
}

// newTestServices wires every service over an in-memory database. Audit
// writes are synchronous because no worker is passed.
func newTestServices(t *testing.T) (*gorm.DB, *Services) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	svcs := NewServices(repository.NewRepositories(db), nil, store, testConfig(), db)
	now := func() time.Time { return fixedNow }
	svcs.Commission.now = now
	svcs.Adjustment.now = now
	svcs.Movement.now = now
	svcs.Report.now = now
	svcs.Export.now = now
	svcs.Auth.now = now
	return db, svcs
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(expected).Equal(actual), "expected %s, got %s %v", expected, actual.String(), msgAndArgs)
}
