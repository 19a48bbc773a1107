package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/feraben/crm-api/internal/models"
)

func TestExportLiquidation_XLSX(t *testing.T) {
	f := newLiquidationFixture(t)
	liq := f.settle(t, models.LiquidationAdjustments{Advances: dec("500")})

	file, err := f.svcs.Export.ExportLiquidation(context.Background(), liq.ID, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, liq.ReceiptNumber()+".xlsx", file.Filename)

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Resumen", "Detalle"}, book.GetSheetList())

	vendor, err := book.GetCellValue("Resumen", "B4")
	require.NoError(t, err)
	assert.Equal(t, "ana", vendor)

	client, err := book.GetCellValue("Detalle", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Almacén Sur", client)

	rows, err := book.GetRows("Detalle")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportLiquidation_CSV(t *testing.T) {
	f := newLiquidationFixture(t)
	liq := f.settle(t, models.LiquidationAdjustments{OtherBonuses: dec("250")})

	file, err := f.svcs.Export.ExportLiquidation(context.Background(), liq.ID, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)

	reader := csv.NewReader(bytes.NewReader(file.Data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Liquidación", liq.ReceiptNumber()}, records[0])
	assert.Contains(t, records, []string{"Total neto a pagar", "7750.00"})
	assert.Contains(t, records, []string{"Bonificaciones", "250.00"})
	// detail lines come last in movement date order
	last := records[len(records)-1]
	assert.Equal(t, "Almacén Sur", last[1])
	assert.Equal(t, "4500.00", last[6])
}

func TestExportLiquidation_PDFIsArchived(t *testing.T) {
	f := newLiquidationFixture(t)
	liq := f.settle(t, models.LiquidationAdjustments{})

	file, err := f.svcs.Export.ExportLiquidation(context.Background(), liq.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))

	require.NotEmpty(t, file.ArchivePath)
	assert.True(t, strings.HasPrefix(file.ArchivePath, "liquidations/2024/03/REC-LIQ-"))

	stored, err := f.svcs.Export.store.Read(file.ArchivePath)
	require.NoError(t, err)
	assert.Equal(t, file.Data, stored)
}

func TestExportLiquidation_Errors(t *testing.T) {
	f := newLiquidationFixture(t)
	liq := f.settle(t, models.LiquidationAdjustments{})

	_, err := f.svcs.Export.ExportLiquidation(context.Background(), liq.ID, "docx")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svcs.Export.ExportLiquidation(context.Background(), 999, FormatPDF)
	assert.ErrorIs(t, err, ErrNotFound)
}
