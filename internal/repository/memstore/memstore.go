// Package memstore provides in-memory implementations of the repository
// interfaces. Suitable for dev/testing.
package memstore

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"carecircle-server/internal/models"
	"carecircle-server/internal/repository"
	"carecircle-server/internal/triage"
)

// Store holds every table in memory behind one lock.
type Store struct {
	txMu       sync.Mutex
	mu         sync.RWMutex
	now        func() time.Time
	users      map[string]models.User
	tokens     map[string]models.RefreshToken // token string -> row
	patients   map[string]models.Patient
	caregivers map[string]map[string]bool // patient -> user ids
	symptoms   map[string]models.SymptomLog
	medicines  map[string]models.Medicine
	medLogs    map[string]models.MedicineLog
	reminders  map[string]models.Reminder
	tasks      map[string]models.CareTask
	facilities map[string]models.HealthcareFacility
}

// New initializes an empty Store.
func New() *Store {
	return &Store{
		now:        time.Now,
		users:      map[string]models.User{},
		tokens:     map[string]models.RefreshToken{},
		patients:   map[string]models.Patient{},
		caregivers: map[string]map[string]bool{},
		symptoms:   map[string]models.SymptomLog{},
		medicines:  map[string]models.Medicine{},
		medLogs:    map[string]models.MedicineLog{},
		reminders:  map[string]models.Reminder{},
		tasks:      map[string]models.CareTask{},
		facilities: map[string]models.HealthcareFacility{},
	}
}

// Repositories exposes s through the repository interfaces.
func (s *Store) Repositories() *repository.Store {
	return &repository.Store{
		Users:      users{s},
		Tokens:     tokens{s},
		Patients:   patients{s},
		Symptoms:   symptoms{s},
		Medicines:  medicines{s},
		Reminders:  reminders{s},
		Tasks:      tasks{s},
		Facilities: facilities{s},
		Tx:         s,
	}
}

// Transaction runs fn and restores every table if it fails. Transactions
// are serialized; a rollback also discards writes made outside a
// transaction while fn ran.
func (s *Store) Transaction(_ context.Context, fn func(tx *repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(s.Repositories()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type tables struct {
	users      map[string]models.User
	tokens     map[string]models.RefreshToken
	patients   map[string]models.Patient
	caregivers map[string]map[string]bool
	symptoms   map[string]models.SymptomLog
	medicines  map[string]models.Medicine
	medLogs    map[string]models.MedicineLog
	reminders  map[string]models.Reminder
	tasks      map[string]models.CareTask
	facilities map[string]models.HealthcareFacility
}

func (s *Store) snapshot() tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cg := make(map[string]map[string]bool, len(s.caregivers))
	for p, ids := range s.caregivers {
		cg[p] = maps.Clone(ids)
	}
	return tables{
		users:      maps.Clone(s.users),
		tokens:     maps.Clone(s.tokens),
		patients:   maps.Clone(s.patients),
		caregivers: cg,
		symptoms:   maps.Clone(s.symptoms),
		medicines:  maps.Clone(s.medicines),
		medLogs:    maps.Clone(s.medLogs),
		reminders:  maps.Clone(s.reminders),
		tasks:      maps.Clone(s.tasks),
		facilities: maps.Clone(s.facilities),
	}
}

func (s *Store) restore(t tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.tokens, s.patients, s.caregivers = t.users, t.tokens, t.patients, t.caregivers
	s.symptoms, s.medicines, s.medLogs = t.symptoms, t.medicines, t.medLogs
	s.reminders, s.tasks, s.facilities = t.reminders, t.tasks, t.facilities
}

func (s *Store) stamp(b *models.BaseModel) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := s.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	r.s.stamp(&u.BaseModel)
	r.s.users[u.ID] = *u
	return nil
}

func (r users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r users) Update(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.stamp(&u.BaseModel)
	r.s.users[u.ID] = *u
	return nil
}

type tokens struct{ s *Store }

func (r tokens) Create(_ context.Context, t *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&t.BaseModel)
	r.s.tokens[t.Token] = *t
	return nil
}

func (r tokens) FindUsable(_ context.Context, token, userID string, now time.Time) (*models.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tokens[token]
	if !ok || t.UserID != userID || !t.Usable(now) {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r tokens) Revoke(_ context.Context, token string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok || t.IsRevoked {
		return repository.ErrNotFound
	}
	t.IsRevoked = true
	t.ExpiresAt = now
	r.s.tokens[token] = t
	return nil
}

type patients struct{ s *Store }

func (r patients) Create(_ context.Context, p *models.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&p.BaseModel)
	cp := *p
	cp.Caregivers = nil
	r.s.patients[p.ID] = cp
	for _, c := range p.Caregivers {
		r.s.link(p.ID, c.ID)
	}
	return nil
}

func (s *Store) link(patientID, userID string) {
	if s.caregivers[patientID] == nil {
		s.caregivers[patientID] = map[string]bool{}
	}
	s.caregivers[patientID][userID] = true
}

// withCaregivers must be called with the lock held.
func (s *Store) withCaregivers(p models.Patient) models.Patient {
	ids := make([]string, 0, len(s.caregivers[p.ID]))
	for id := range s.caregivers[p.ID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	p.Caregivers = nil
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			p.Caregivers = append(p.Caregivers, u)
		}
	}
	return p
}

func (r patients) Get(_ context.Context, id string) (*models.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = r.s.withCaregivers(p)
	return &p, nil
}

func (r patients) ListForUser(_ context.Context, userID string) ([]models.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Patient
	for _, p := range r.s.patients {
		if p.CreatedByID == userID || r.s.caregivers[p.ID][userID] {
			out = append(out, r.s.withCaregivers(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r patients) AddCaregiver(_ context.Context, patientID string, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.patients[patientID]; !ok {
		return repository.ErrNotFound
	}
	r.s.link(patientID, u.ID)
	return nil
}

type symptoms struct{ s *Store }

func (r symptoms) Create(_ context.Context, l *models.SymptomLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&l.BaseModel)
	if l.RecordedAt.IsZero() {
		l.RecordedAt = l.CreatedAt
	}
	cp := *l
	cp.Reasons = append([]string(nil), l.Reasons...)
	r.s.symptoms[l.ID] = cp
	return nil
}

func (r symptoms) Get(_ context.Context, id string) (*models.SymptomLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.symptoms[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r symptoms) ListByPatient(_ context.Context, patientID string, limit int) ([]models.SymptomLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.SymptomLog
	for _, l := range r.s.symptoms {
		if l.PatientID == patientID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r symptoms) Recent(ctx context.Context, patientID string, n int) ([]triage.Vitals, error) {
	if n <= 0 {
		return nil, nil
	}
	logs, err := r.ListByPatient(ctx, patientID, n)
	if err != nil {
		return nil, err
	}
	return models.HistoryVitals(logs), nil
}

type medicines struct{ s *Store }

func (r medicines) Create(_ context.Context, m *models.Medicine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&m.BaseModel)
	cp := *m
	cp.Schedule = append([]string(nil), m.Schedule...)
	r.s.medicines[m.ID] = cp
	return nil
}

func (r medicines) Get(_ context.Context, id string) (*models.Medicine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.medicines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r medicines) ListByPatient(_ context.Context, patientID string) ([]models.Medicine, error) {
	return r.filter(patientID, func(models.Medicine) bool { return true }), nil
}

func (r medicines) ActiveOn(_ context.Context, patientID string, day time.Time) ([]models.Medicine, error) {
	return r.filter(patientID, func(m models.Medicine) bool { return m.ActiveOn(day) }), nil
}

func (r medicines) filter(patientID string, keep func(models.Medicine) bool) []models.Medicine {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Medicine
	for _, m := range r.s.medicines {
		if m.PatientID == patientID && keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (r medicines) CreateLog(_ context.Context, l *models.MedicineLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&l.BaseModel)
	cp := *l
	cp.Medicine = nil
	r.s.medLogs[l.ID] = cp
	return nil
}

func (r medicines) LogsBetween(_ context.Context, patientID string, from, to time.Time) ([]models.MedicineLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.MedicineLog
	for _, l := range r.s.medLogs {
		if l.PatientID != patientID || l.Date.Before(from) || !l.Date.Before(to) {
			continue
		}
		if m, ok := r.s.medicines[l.MedicineID]; ok {
			l.Medicine = &m
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type reminders struct{ s *Store }

func (r reminders) Create(_ context.Context, rem *models.Reminder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&rem.BaseModel)
	cp := *rem
	cp.Medicine = nil
	cp.ReminderTimes = append([]string(nil), rem.ReminderTimes...)
	r.s.reminders[rem.ID] = cp
	return nil
}

func (r reminders) Get(_ context.Context, id string) (*models.Reminder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rem, ok := r.s.reminders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if m, ok := r.s.medicines[rem.MedicineID]; ok {
		rem.Medicine = &m
	}
	return &rem, nil
}

func (r reminders) ListByPatient(_ context.Context, patientID string) ([]models.Reminder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Reminder
	for _, rem := range r.s.reminders {
		if rem.PatientID != patientID {
			continue
		}
		if m, ok := r.s.medicines[rem.MedicineID]; ok {
			rem.Medicine = &m
		}
		out = append(out, rem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r reminders) SetActive(_ context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rem, ok := r.s.reminders[id]
	if !ok {
		return repository.ErrNotFound
	}
	rem.Active = active
	r.s.stamp(&rem.BaseModel)
	r.s.reminders[id] = rem
	return nil
}

type tasks struct{ s *Store }

func (r tasks) Create(_ context.Context, t *models.CareTask) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stamp(&t.BaseModel)
	r.s.tasks[t.ID] = *t
	return nil
}

func (r tasks) Get(_ context.Context, id string) (*models.CareTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r tasks) ListByPatient(_ context.Context, patientID string) ([]models.CareTask, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.CareTask
	for _, t := range r.s.tasks {
		if t.PatientID == patientID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

func (r tasks) Complete(_ context.Context, id string, at time.Time) (*models.CareTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if t.CompletedAt != nil {
		return nil, nil
	}
	t.CompletedAt = &at
	r.s.tasks[id] = t

	next := t.Next()
	if next == nil {
		return nil, nil
	}
	r.s.stamp(&next.BaseModel)
	r.s.tasks[next.ID] = *next
	return next, nil
}

type facilities struct{ s *Store }

func (r facilities) ListByType(_ context.Context, t triage.FacilityType) ([]models.HealthcareFacility, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.HealthcareFacility
	for _, f := range r.s.facilities {
		if f.Type == t {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r facilities) Seed(_ context.Context, list []models.HealthcareFacility) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inserted := 0
	for _, f := range list {
		exists := false
		for _, existing := range r.s.facilities {
			if existing.Name == f.Name {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		r.s.stamp(&f.BaseModel)
		r.s.facilities[f.ID] = f
		inserted++
	}
	return inserted, nil
}
