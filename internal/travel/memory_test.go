package travel

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sharebrasil/portal/internal/shared"
)

// memoryRepo mimics the PostgreSQL repository. WithTx stages writes and only
// publishes them when fn succeeds.
type memoryRepo struct {
	mu        sync.Mutex
	clients   map[uuid.UUID]string
	reports   []Report
	expenses  []Expense
	clientRec []ClientReconciliation
	crewRec   []CrewReconciliation
	counters  map[uuid.UUID]int

	failClientRec error
	failCrewRec   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{clients: map[uuid.UUID]string{}, counters: map[uuid.UUID]int{}}
}

func (m *memoryRepo) addClient(name string) uuid.UUID {
	id := uuid.New()
	m.clients[id] = name
	return id
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memoryTx{repo: m, counters: map[uuid.UUID]int{}}
	for k, v := range m.counters {
		tx.counters[k] = v
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.reports = append(m.reports, tx.reports...)
	m.expenses = append(m.expenses, tx.expenses...)
	m.clientRec = append(m.clientRec, tx.clientRec...)
	m.crewRec = append(m.crewRec, tx.crewRec...)
	m.counters = tx.counters
	return nil
}

func (m *memoryRepo) GetReport(ctx context.Context, id uuid.UUID) (Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id {
			r.ClientName = m.clients[r.ClientID]
			return r, nil
		}
	}
	return Report{}, ErrReportNotFound
}

func (m *memoryRepo) ClientName(ctx context.Context, id uuid.UUID) (string, error) {
	name, ok := m.clients[id]
	if !ok {
		return "", ErrValidation
	}
	return name, nil
}

func (m *memoryRepo) ListExpenses(ctx context.Context, reportID uuid.UUID) ([]Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Expense
	for _, e := range m.expenses {
		if e.TravelReportID == reportID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListReports(ctx context.Context, f ReportFilter) ([]Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Report
	for i := len(m.reports) - 1; i >= 0; i-- {
		r := m.reports[i]
		if f.ClientID != nil && r.ClientID != *f.ClientID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRepo) SetPDFURL(ctx context.Context, id uuid.UUID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reports {
		if m.reports[i].ID == id {
			m.reports[i].PDFURL = url
			return nil
		}
	}
	return ErrReportNotFound
}

type memoryTx struct {
	repo      *memoryRepo
	reports   []Report
	expenses  []Expense
	clientRec []ClientReconciliation
	crewRec   []CrewReconciliation
	counters  map[uuid.UUID]int
}

func (t *memoryTx) ClientName(ctx context.Context, id uuid.UUID) (string, error) {
	name, ok := t.repo.clients[id]
	if !ok {
		return "", ErrValidation
	}
	return name, nil
}

func (t *memoryTx) NextSequence(ctx context.Context, clientID uuid.UUID, name string) (int, error) {
	if last, ok := t.counters[clientID]; ok {
		t.counters[clientID] = last + 1
		return last + 1, nil
	}
	seed := 0
	for _, r := range t.repo.reports {
		if !BelongsToClient(r.Number, name) {
			continue
		}
		if n, ok := ParseReportSequence(r.Number); ok && n > seed {
			seed = n
		}
	}
	t.counters[clientID] = seed + 1
	return seed + 1, nil
}

func (t *memoryTx) InsertReport(ctx context.Context, r Report) (Report, error) {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	t.reports = append(t.reports, r)
	return r, nil
}

func (t *memoryTx) InsertExpense(ctx context.Context, e Expense) (Expense, error) {
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	t.expenses = append(t.expenses, e)
	return e, nil
}

func (t *memoryTx) InsertClientReconciliation(ctx context.Context, rec ClientReconciliation) (uuid.UUID, error) {
	if t.repo.failClientRec != nil {
		return uuid.Nil, t.repo.failClientRec
	}
	rec.ID = uuid.New()
	t.clientRec = append(t.clientRec, rec)
	return rec.ID, nil
}

func (t *memoryTx) InsertCrewReconciliation(ctx context.Context, rec CrewReconciliation) (uuid.UUID, error) {
	if t.repo.failCrewRec != nil {
		return uuid.Nil, t.repo.failCrewRec
	}
	rec.ID = uuid.New()
	t.crewRec = append(t.crewRec, rec)
	return rec.ID, nil
}

type memoryIdempotency struct {
	keys map[string]bool
}

func (m *memoryIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[module+":"+key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[module+":"+key] = true
	return nil
}

func (m *memoryIdempotency) Delete(ctx context.Context, key string) error {
	for k := range m.keys {
		if strings.HasSuffix(k, ":"+key) {
			delete(m.keys, k)
		}
	}
	return nil
}
