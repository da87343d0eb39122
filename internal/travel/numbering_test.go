package travel

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestBelongsToClientIsLiteral(t *testing.T) {
	require.True(t, BelongsToClient("REL 003/23 - PT-ABC - ACME LTDA", "Acme Ltda"))
	require.True(t, BelongsToClient("REL 003/23 - PT-ABC - 100% Voo_Executivo", "100% Voo_Executivo"))
	require.False(t, BelongsToClient("REL 041/23 - PT-XYZ - 100X VooXExecutivo", "100% Voo_Executivo"))
	require.False(t, BelongsToClient("REL 041/23 - PT-XYZ - Outra", "%"))
	require.False(t, BelongsToClient("REL 041/23 - PT-XYZ - Outra", " "))
}

func TestNextSequenceQueryAvoidsPatternMatching(t *testing.T) {
	require.Contains(t, nextSequenceSQL, "strpos(lower(number), lower($2)) > 0")
	require.NotContains(t, strings.ToUpper(nextSequenceSQL), "LIKE")
}

func TestNumberSeedIgnoresWildcardLookalikes(t *testing.T) {
	f := newFixture()
	f.client = f.repo.addClient("100% Voo_Executivo")
	f.repo.reports = append(f.repo.reports,
		Report{ID: uuid.New(), ClientID: uuid.New(), Number: "REL 041/23 - PT-XYZ - 100X VooXExecutivo"},
		Report{ID: uuid.New(), ClientID: uuid.New(), Number: "REL 004/23 - PT-XYZ - 100% Voo_Executivo"},
	)
	res, err := f.svc.CreateReport(context.Background(), f.input(line("Outros", "10", "Cliente")))
	require.NoError(t, err)
	require.Equal(t, "REL 005/24 - PT-ABC - 100% Voo_Executivo", res.Report.Number)
}

func TestFormatAndParseReportNumber(t *testing.T) {
	n, ok := ParseReportSequence("REL 007/24 - PT-ABC - Acme Ltda")
	require.True(t, ok)
	require.Equal(t, 7, n)
	_, ok = ParseReportSequence("sem número")
	require.False(t, ok)
}
