package travel

import "github.com/shopspring/decimal"

// Totals groups expense amounts two ways.
type Totals struct {
	ByCategory map[Category]decimal.Decimal `json:"by_category"`
	ByPayer    map[Payer]decimal.Decimal    `json:"by_payer"`
	Grand      decimal.Decimal              `json:"grand"`
	// Unattributed sums amounts whose stored payer is not recognised.
	Unattributed decimal.Decimal `json:"unattributed"`
}

// Crew is the total fronted by the crew member.
func (t Totals) Crew() decimal.Decimal { return t.ByPayer[PayerCrew] }

// Client is the total paid directly by the client.
func (t Totals) Client() decimal.Decimal { return t.ByPayer[PayerClient] }

// ShareBrasil is the total paid by the company.
func (t Totals) ShareBrasil() decimal.Decimal { return t.ByPayer[PayerShareBrasil] }

// PayerTotal is crew + client + company.
func (t Totals) PayerTotal() decimal.Decimal {
	return t.Crew().Add(t.Client()).Add(t.ShareBrasil())
}

// ComputeTotals is shared by the builder and the renderer.
// Unknown categories count as Outros; unknown payers land in Unattributed.
func ComputeTotals(expenses []Expense) Totals {
	t := Totals{
		ByCategory: make(map[Category]decimal.Decimal, 5),
		ByPayer:    make(map[Payer]decimal.Decimal, 3),
	}
	for _, c := range Categories() {
		t.ByCategory[c] = decimal.Zero
	}
	for _, p := range Payers() {
		t.ByPayer[p] = decimal.Zero
	}
	for _, e := range expenses {
		category, err := ParseCategory(string(e.Category))
		if err != nil {
			category = CategoryOther
		}
		t.ByCategory[category] = t.ByCategory[category].Add(e.Amount)
		t.Grand = t.Grand.Add(e.Amount)

		payer, err := ParsePayer(string(e.Payer))
		if err != nil {
			t.Unattributed = t.Unattributed.Add(e.Amount)
			continue
		}
		t.ByPayer[payer] = t.ByPayer[payer].Add(e.Amount)
	}
	return t
}

// Derivation lists the reconciliation amounts a report owes. Nil means no row.
type Derivation struct {
	ClientAmount *decimal.Decimal
	CrewAmount   *decimal.Decimal
}

// DeriveReconciliations applies the ledger rules: the client is billed for
// crew + company spend, the crew member is reimbursed for crew spend.
func DeriveReconciliations(t Totals) Derivation {
	var d Derivation
	if billed := t.Crew().Add(t.ShareBrasil()); billed.IsPositive() {
		d.ClientAmount = &billed
	}
	if crew := t.Crew(); crew.IsPositive() {
		d.CrewAmount = &crew
	}
	return d
}
