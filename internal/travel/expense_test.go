package travel

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmountUnmarshal(t *testing.T) {
	cases := map[string]string{
		`300`:        "300",
		`"300.5"`:    "300.5",
		`"1.234,56"`: "1234.56",
		`"12,5"`:     "12.5",
	}
	for raw, want := range cases {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(raw), &a), raw)
		require.True(t, a.Set)
		require.True(t, a.Value.Equal(dec(want)), "%s => %s", raw, a.Value)
	}
	for _, raw := range []string{`null`, `""`, `"  "`} {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(raw), &a))
		require.False(t, a.Set, raw)
	}
	for _, raw := range []string{`"abc"`, `"1,234.56"`, `"12,50.0"`} {
		var a Amount
		require.Error(t, json.Unmarshal([]byte(raw), &a), raw)
	}
}

func TestAmountRejectsLostPrecision(t *testing.T) {
	for _, raw := range []string{`"1.234"`, `"1,234"`, `35.456`} {
		var a Amount
		require.NoError(t, json.Unmarshal([]byte(raw), &a), raw)
		_, err := PrepareLines([]ExpenseLine{{Description: "Hotel", Amount: a, Payer: "Cliente"}})
		require.ErrorIs(t, err, ErrValidation, raw)
	}

	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`"1.234,50"`), &a))
	lines, err := PrepareLines([]ExpenseLine{{Description: "Hotel", Amount: a, Payer: "Cliente"}})
	require.NoError(t, err)
	require.True(t, lines[0].Amount.Equal(dec("1234.5")))
}

func TestPrepareLinesDropsBlank(t *testing.T) {
	lines, err := PrepareLines([]ExpenseLine{
		{Category: "Combustível", Description: "Jet A1", Amount: NewAmount(dec("300")), Payer: "Tripulante"},
		{Category: "Hospedagem", Description: "", Amount: NewAmount(dec("200")), Payer: "Cliente"},
		{Category: "Hospedagem", Description: "Hotel", Payer: "Cliente"},
		{Description: "Táxi", Amount: NewAmount(dec("35.46")), Payer: "sharebrasil"},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, CategoryFuel, lines[0].Category)
	require.Equal(t, CategoryOther, lines[1].Category)
	require.Equal(t, PayerShareBrasil, lines[1].Payer)
	require.True(t, lines[1].Amount.Equal(dec("35.46")))
}

func TestPrepareLinesRejects(t *testing.T) {
	cases := map[string]ExpenseLine{
		"unknown payer":    {Category: "Outros", Description: "x", Amount: NewAmount(dec("1")), Payer: "Empresa"},
		"missing payer":    {Category: "Outros", Description: "x", Amount: NewAmount(dec("1"))},
		"unknown category": {Category: "Pedágio", Description: "x", Amount: NewAmount(dec("1")), Payer: "Cliente"},
		"zero amount":      {Category: "Outros", Description: "x", Amount: NewAmount(dec("0")), Payer: "Cliente"},
		"negative amount":  {Category: "Outros", Description: "x", Amount: NewAmount(dec("-5")), Payer: "Cliente"},
		"bad receipt":      {Category: "Outros", Description: "x", Amount: NewAmount(dec("1")), Payer: "Cliente", Receipt: &Receipt{Filename: "a.png", Data: "%%%"}},
	}
	for name, line := range cases {
		_, err := PrepareLines([]ExpenseLine{line})
		require.ErrorIs(t, err, ErrValidation, name)
	}
	_, err := PrepareLines([]ExpenseLine{{Description: " "}})
	require.ErrorIs(t, err, ErrValidation)
}

func TestReceiptDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 test"))
	lines, err := PrepareLines([]ExpenseLine{{
		Description: "Nota", Amount: NewAmount(dec("10")), Payer: "Tripulante",
		Receipt: &Receipt{Filename: "../../etc/nota fiscal.pdf", Data: "data:application/pdf;base64," + payload},
	}})
	require.NoError(t, err)
	require.NotNil(t, lines[0].Receipt)
	require.Equal(t, "nota_fiscal.pdf", lines[0].Receipt.Filename)
	require.Equal(t, "application/pdf", lines[0].Receipt.ContentType)
	require.Equal(t, "%PDF-1.4 test", string(lines[0].Receipt.Data))
}
