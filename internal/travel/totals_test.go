package travel

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sumCategories(t Totals) decimal.Decimal {
	total := decimal.Zero
	for _, v := range t.ByCategory {
		total = total.Add(v)
	}
	return total
}

func sumPayers(t Totals) decimal.Decimal {
	total := decimal.Zero
	for _, v := range t.ByPayer {
		total = total.Add(v)
	}
	return total
}

func TestComputeTotalsGroupingsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for run := 0; run < 200; run++ {
		n := rng.Intn(12)
		expenses := make([]Expense, 0, n)
		for i := 0; i < n; i++ {
			expenses = append(expenses, Expense{
				Category: Categories()[rng.Intn(5)],
				Payer:    Payers()[rng.Intn(3)],
				Amount:   decimal.New(rng.Int63n(1_000_000), -2),
			})
		}
		totals := ComputeTotals(expenses)
		require.True(t, sumCategories(totals).Equal(totals.Grand), "run %d", run)
		require.True(t, sumPayers(totals).Equal(totals.Grand), "run %d", run)
		require.True(t, totals.PayerTotal().Equal(totals.Grand))
		require.True(t, totals.Unattributed.IsZero())
	}
}

func TestComputeTotalsLegacyValues(t *testing.T) {
	totals := ComputeTotals([]Expense{
		{Category: "Pedágio", Payer: PayerCrew, Amount: dec("40")},
		{Category: CategoryFuel, Payer: "Empresa", Amount: dec("60")},
	})
	require.True(t, totals.ByCategory[CategoryOther].Equal(dec("40")))
	require.True(t, totals.ByCategory[CategoryFuel].Equal(dec("60")))
	require.True(t, totals.Grand.Equal(dec("100")))
	require.True(t, sumPayers(totals).Equal(dec("40")))
	require.True(t, totals.Unattributed.Equal(dec("60")))
	require.True(t, sumPayers(totals).Add(totals.Unattributed).Equal(totals.Grand))
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil)
	require.Len(t, totals.ByCategory, 5)
	require.Len(t, totals.ByPayer, 3)
	require.True(t, totals.Grand.IsZero())
}

func TestDeriveReconciliations(t *testing.T) {
	cases := []struct {
		name                 string
		crew, client, sb     string
		wantClient, wantCrew string
	}{
		{"crew and client", "100", "50", "0", "100", "100"},
		{"client only", "0", "200", "0", "", ""},
		{"company only", "0", "0", "75", "75", ""},
		{"everyone", "10", "20", "30", "40", "10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := ComputeTotals([]Expense{
				{Category: CategoryFuel, Payer: PayerCrew, Amount: dec(tc.crew)},
				{Category: CategoryFuel, Payer: PayerClient, Amount: dec(tc.client)},
				{Category: CategoryFuel, Payer: PayerShareBrasil, Amount: dec(tc.sb)},
			})
			d := DeriveReconciliations(totals)
			if tc.wantClient == "" {
				require.Nil(t, d.ClientAmount)
			} else {
				require.NotNil(t, d.ClientAmount)
				require.True(t, d.ClientAmount.Equal(dec(tc.wantClient)))
			}
			if tc.wantCrew == "" {
				require.Nil(t, d.CrewAmount)
			} else {
				require.NotNil(t, d.CrewAmount)
				require.True(t, d.CrewAmount.Equal(dec(tc.wantCrew)))
			}
		})
	}
}

func TestReportNumbering(t *testing.T) {
	at := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "REL 008/24 - PT-ABC - Acme Ltda", NextReportNumber("REL 007/24 - PT-ABC - Acme Ltda", at, "PT-ABC", "Acme Ltda"))
	require.Equal(t, "REL 008/24 - PT-ABC - Acme Ltda", NextReportNumber("REL 007/24", at, "PT-ABC", "Acme Ltda"))
	require.Equal(t, "REL 001/24 - PT-XYZ - Beta", NextReportNumber("", at, "PT-XYZ", "Beta"))
	require.Equal(t, "REL 1000/24 - PT-ABC - Acme", FormatReportNumber(1000, at, "PT-ABC", "Acme"))
	require.Equal(t, "REL 001/05 - A - B", FormatReportNumber(1, time.Date(2005, 1, 1, 0, 0, 0, 0, time.UTC), "A", "B"))

	n, ok := ParseReportSequence("REL012/23 - X")
	require.True(t, ok)
	require.Equal(t, 12, n)
	_, ok = ParseReportSequence("Relatório avulso")
	require.False(t, ok)
}
