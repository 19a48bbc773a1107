package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feraben/crm-api/internal/models"
	"github.com/feraben/crm-api/internal/repository"
	"github.com/feraben/crm-api/internal/testutil"
)

func TestCreateMovement_SignAndBalance(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	client := testutil.SeedClient(t, db, "Kiosco", vendor.ID)
	ctx := context.Background()

	steps := []struct {
		kind    string
		amount  string
		stored  string
		balance string
	}{
		{models.MovementKindSale, "-1000", "1000", "1000"},
		{models.MovementKindPayment, "300", "-300", "700"},
		{models.MovementKindCreditNote, "50", "-50", "650"},
		{models.MovementKindAdjustment, "-25.5", "-25.5", "624.5"},
		{models.MovementKindBalanceReset, "75.5", "75.5", "700"},
	}

	for _, step := range steps {
		result, err := svcs.Movement.Create(ctx, MovementInput{
			ClientID: client.ID,
			Kind:     step.kind,
			Amount:   dec(step.amount),
		}, 1)
		require.NoError(t, err, step.kind)
		assertDecimal(t, step.stored, result.Movement.Amount, step.kind)
		assertDecimal(t, step.balance, result.Balance, step.kind)
		assert.Equal(t, vendor.ID, result.Movement.VendorID)
		assert.Equal(t, testutil.Date(2024, time.March, 15), result.Movement.Date)
	}
}

func TestCreateMovement_ExplicitVendorAndDate(t *testing.T) {
	db, svcs := newTestServices(t)
	owner := testutil.SeedVendor(t, db, "ana")
	other := testutil.SeedVendor(t, db, "beto")
	client := testutil.SeedClient(t, db, "Kiosco", owner.ID)
	day := time.Date(2024, time.February, 3, 17, 45, 0, 0, time.UTC)

	result, err := svcs.Movement.Create(context.Background(), MovementInput{
		ClientID: client.ID,
		VendorID: &other.ID,
		Date:     &day,
		Kind:     models.MovementKindSale,
		Document: "A-0001",
		Amount:   dec("120"),
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, other.ID, result.Movement.VendorID)
	assert.Equal(t, testutil.Date(2024, time.February, 3), result.Movement.Date)
}

func TestCreateMovement_Errors(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	client := testutil.SeedClient(t, db, "Kiosco", vendor.ID)
	orphan := &models.Client{BusinessName: "Sin vendedor", Active: true}
	require.NoError(t, db.Create(orphan).Error)
	ctx := context.Background()

	tests := []struct {
		name  string
		input MovementInput
		err   error
	}{
		{"zero amount", MovementInput{ClientID: client.ID, Kind: models.MovementKindSale, Amount: dec("0")}, ErrInvalidAmount},
		{"unknown kind", MovementInput{ClientID: client.ID, Kind: "Recibo", Amount: dec("10")}, ErrInvalidInput},
		{"unknown client", MovementInput{ClientID: 999, Kind: models.MovementKindSale, Amount: dec("10")}, ErrNotFound},
		{"client without vendor", MovementInput{ClientID: orphan.ID, Kind: models.MovementKindSale, Amount: dec("10")}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svcs.Movement.Create(ctx, tt.input, 1)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Movement{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListMovements_Filters(t *testing.T) {
	db, svcs := newTestServices(t)
	ana := testutil.SeedVendor(t, db, "ana")
	beto := testutil.SeedVendor(t, db, "beto")
	c1 := testutil.SeedClient(t, db, "Uno", ana.ID)
	c2 := testutil.SeedClient(t, db, "Dos", beto.ID)
	day := testutil.Date(2024, time.March, 1)

	testutil.SeedMovement(t, db, ana.ID, c1.ID, day, models.MovementKindSale, "100")
	testutil.SeedMovement(t, db, ana.ID, c1.ID, day, models.MovementKindPayment, "-50")
	testutil.SeedMovement(t, db, beto.ID, c2.ID, day, models.MovementKindSale, "70")

	query := repository.NewListQuery()
	query.Filters["vendor_id"] = strconv.FormatUint(uint64(ana.ID), 10)
	movements, total, err := svcs.Movement.List(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, movements, 2)

	query = repository.NewListQuery()
	query.Filters["kind"] = models.MovementKindSale
	query.PerPage = 1
	movements, total, err = svcs.Movement.List(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, movements, 1)
}

func TestCreateClient(t *testing.T) {
	db, svcs := newTestServices(t)
	vendor := testutil.SeedVendor(t, db, "ana")
	ctx := context.Background()

	client, err := svcs.Client.Create(ctx, ClientInput{RUT: " 2100 ", BusinessName: " Almacén Sur ", VendorID: &vendor.ID}, 1)
	require.NoError(t, err)
	assert.Equal(t, "Almacén Sur", client.BusinessName)
	assert.Equal(t, "2100", client.RUT)
	assert.True(t, client.Active)

	_, err = svcs.Client.Create(ctx, ClientInput{BusinessName: ""}, 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := uint(999)
	_, err = svcs.Client.Create(ctx, ClientInput{BusinessName: "Otro", VendorID: &missing}, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	clients, err := svcs.Client.ByVendor(ctx, vendor.ID)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, client.ID, clients[0].ID)
}
