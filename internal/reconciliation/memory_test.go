package reconciliation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryRepo struct {
	mu       sync.Mutex
	client   []ClientEntry
	crew     []CrewEntry
	bank     []BankEntry
	expenses map[uuid.UUID]CrewExpense
	calls    map[string]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{expenses: map[uuid.UUID]CrewExpense{}, calls: map[string]int{}}
}

func (m *memoryRepo) addClient(amount, status string) ClientEntry {
	e := ClientEntry{ID: uuid.New(), TravelReportID: uuid.New(), ReportNumber: "REL 001/24 - PT-ABC - Acme Ltda",
		ClientID: uuid.New(), ClientName: "Acme Ltda", AircraftRegistration: "PT-ABC",
		Amount: decimal.RequireFromString(amount), Status: status}
	m.client = append(m.client, e)
	return e
}

func (m *memoryRepo) addCrew(amount, status string) CrewEntry {
	e := CrewEntry{ID: uuid.New(), TravelReportID: uuid.New(), CrewMember: "João Silva",
		Amount: decimal.RequireFromString(amount), Status: status}
	m.crew = append(m.crew, e)
	return e
}

func (m *memoryRepo) addExpense(payer, amount string) uuid.UUID {
	id := uuid.New()
	m.expenses[id] = CrewExpense{ID: id, Payer: payer, Amount: decimal.RequireFromString(amount)}
	return id
}

func (m *memoryRepo) ListClient(ctx context.Context, status string) ([]ClientEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["client"]++
	var out []ClientEntry
	for _, e := range m.client {
		if status == "" || e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListCrew(ctx context.Context, status string) ([]CrewEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["crew"]++
	var out []CrewEntry
	for _, e := range m.crew {
		if status == "" || e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListBank(ctx context.Context, status string) ([]BankEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls["bank"]++
	var out []BankEntry
	for _, e := range m.bank {
		if status == "" || e.Status == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) UpdateClientStatus(ctx context.Context, id uuid.UUID, status string, stamps Stamps) (ClientEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.client {
		if m.client[i].ID == id {
			m.client[i].Status = status
			if stamps.SentDate != nil {
				m.client[i].SentDate = stamps.SentDate
			}
			if stamps.PaidDate != nil {
				m.client[i].PaidDate = stamps.PaidDate
			}
			return m.client[i], nil
		}
	}
	return ClientEntry{}, ErrNotFound
}

func (m *memoryRepo) UpdateCrewStatus(ctx context.Context, id uuid.UUID, status string, stamps Stamps) (CrewEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.crew {
		if m.crew[i].ID == id {
			m.crew[i].Status = status
			if stamps.PaidDate != nil {
				m.crew[i].PaidDate = stamps.PaidDate
			}
			return m.crew[i], nil
		}
	}
	return CrewEntry{}, ErrNotFound
}

func (m *memoryRepo) UpdateBankStatus(ctx context.Context, id uuid.UUID, status string, stamps Stamps) (BankEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bank {
		if m.bank[i].ID == id {
			m.bank[i].Status = status
			if stamps.PaidDate != nil {
				m.bank[i].PaidDate = stamps.PaidDate
			}
			return m.bank[i], nil
		}
	}
	return BankEntry{}, ErrNotFound
}

func (m *memoryRepo) GetExpense(ctx context.Context, expenseID uuid.UUID) (CrewExpense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[expenseID]
	if !ok {
		return CrewExpense{}, ErrNotFound
	}
	return e, nil
}

func (m *memoryRepo) InsertBank(ctx context.Context, expense CrewExpense) (BankEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bank {
		if b.TravelExpenseID == expense.ID {
			return BankEntry{}, ErrAlreadyRegistered
		}
	}
	e := BankEntry{ID: uuid.New(), TravelExpenseID: expense.ID, CrewMember: "João Silva",
		Category: "Combustível", Amount: expense.Amount, Status: StatusPending}
	m.bank = append(m.bank, e)
	return e, nil
}

type recordingNotifier struct {
	mu          sync.Mutex
	transitions []Transition
}

func (n *recordingNotifier) EnqueueReconciliationNotify(ctx context.Context, t Transition) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transitions = append(n.transitions, t)
	return nil
}
