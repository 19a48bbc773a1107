package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountInWords spells a peso amount the way receipts print it:
// 1500.50 -> "MIL QUINIENTOS PESOS URUGUAYOS CON 50/100"
func AmountInWords(amount decimal.Decimal) string {
	amount = amount.Round(2)
	prefix := ""
	if amount.IsNegative() {
		prefix = "MENOS "
		amount = amount.Neg()
	}

	integer := amount.IntPart()
	cents := amount.Sub(decimal.NewFromInt(integer)).Shift(2).IntPart()

	words := "CERO"
	if integer > 0 {
		words = apocope(spellInteger(integer))
	}
	return fmt.Sprintf("%s%s PESOS URUGUAYOS CON %02d/100", prefix, words, cents)
}

// spellInteger handles 1 <= n < 10^12
func spellInteger(n int64) string {
	var parts []string

	if millions := n / 1_000_000; millions > 0 {
		if millions == 1 {
			parts = append(parts, "UN MILLÓN")
		} else {
			parts = append(parts, apocope(spellInteger(millions))+" MILLONES")
		}
		n %= 1_000_000
	}

	if thousands := n / 1000; thousands > 0 {
		if thousands == 1 {
			parts = append(parts, "MIL")
		} else {
			parts = append(parts, apocope(spellHundreds(thousands))+" MIL")
		}
		n %= 1000
	}

	if n > 0 {
		parts = append(parts, spellHundreds(n))
	}
	return strings.Join(parts, " ")
}

// spellHundreds handles 1 <= n <= 999
func spellHundreds(n int64) string {
	var parts []string
	h, rest := n/100, n%100

	switch {
	case h == 1 && rest == 0:
		return "CIEN"
	case h == 1:
		parts = append(parts, "CIENTO")
	case h > 1:
		parts = append(parts, hundredWords[h])
	}

	switch {
	case rest == 0:
	case rest < 30:
		parts = append(parts, underThirty[rest])
	default:
		t, u := rest/10, rest%10
		if u == 0 {
			parts = append(parts, tenWords[t])
		} else {
			parts = append(parts, tenWords[t]+" Y "+underThirty[u])
		}
	}
	return strings.Join(parts, " ")
}

// apocope shortens a trailing UNO before a noun (VEINTIUNO MIL -> VEINTIÚN MIL)
func apocope(s string) string {
	switch {
	case strings.HasSuffix(s, "VEINTIUNO"):
		return strings.TrimSuffix(s, "VEINTIUNO") + "VEINTIÚN"
	case strings.HasSuffix(s, "UNO"):
		return strings.TrimSuffix(s, "UNO") + "UN"
	}
	return s
}

var underThirty = [30]string{
	"", "UNO", "DOS", "TRES", "CUATRO", "CINCO", "SEIS", "SIETE", "OCHO", "NUEVE",
	"DIEZ", "ONCE", "DOCE", "TRECE", "CATORCE", "QUINCE", "DIECISÉIS", "DIECISIETE", "DIECIOCHO", "DIECINUEVE",
	"VEINTE", "VEINTIUNO", "VEINTIDÓS", "VEINTITRÉS", "VEINTICUATRO", "VEINTICINCO", "VEINTISÉIS", "VEINTISIETE", "VEINTIOCHO", "VEINTINUEVE",
}

var tenWords = [10]string{
	"", "", "", "TREINTA", "CUARENTA", "CINCUENTA", "SESENTA", "SETENTA", "OCHENTA", "NOVENTA",
}

var hundredWords = [10]string{
	"", "CIENTO", "DOSCIENTOS", "TRESCIENTOS", "CUATROCIENTOS", "QUINIENTOS", "SEISCIENTOS", "SETECIENTOS", "OCHOCIENTOS", "NOVECIENTOS",
}
