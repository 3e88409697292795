// Package memory is a process-local implementation of the repository
// interfaces. Each call to New returns an isolated store, so tests can run
// side by side without sharing state. Nothing is persisted.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/skillswap/internal/model"
	"github.com/iliyamo/skillswap/internal/repository"
)

type skillRow struct {
	model.Skill
	seq int64
}

type swapRow struct {
	model.SwapRequest
	seq int64
}

// state is shared by the four repositories of one store so joins can see
// every table under one lock.
type state struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]model.User
	emails   map[string]string
	skills   map[model.SkillKind]map[string]skillRow
	swaps    map[string]swapRow
	sessions map[string]model.RefreshToken
	now      func() time.Time
}

// New returns an empty in-memory Store.
func New() repository.Store {
	s := &state{
		users:  map[string]model.User{},
		emails: map[string]string{},
		skills: map[model.SkillKind]map[string]skillRow{
			model.SkillOffered: {},
			model.SkillWanted:  {},
		},
		swaps:    map[string]swapRow{},
		sessions: map[string]model.RefreshToken{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	return repository.Store{
		Users:    &userRepo{s},
		Skills:   &skillRepo{s},
		Swaps:    &swapRepo{s},
		Sessions: &sessionRepo{s},
	}
}

func (s *state) next() int64 {
	s.seq++
	return s.seq
}

// ---- users ----

type userRepo struct{ s *state }

func (r *userRepo) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if _, ok := r.s.emails[u.Email]; ok {
		return repository.ErrEmailExists
	}
	r.s.users[u.ID] = *u
	r.s.emails[u.Email] = u.ID
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u := r.s.users[id]
	return &u, nil
}

func (r *userRepo) Update(_ context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if !upd.Empty() {
		u.Apply(upd)
		u.UpdatedAt = r.s.now()
		r.s.users[id] = u
	}
	return &u, nil
}

func (r *userRepo) ListPublic(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []model.User{}
	for _, u := range r.s.users {
		if u.Privacy == model.PrivacyPublic {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ---- skills ----

type skillRepo struct{ s *state }

func (r *skillRepo) Create(_ context.Context, kind model.SkillKind, sk *model.Skill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.skills[kind][sk.ID] = skillRow{Skill: *sk, seq: r.s.next()}
	return nil
}

func (r *skillRepo) ListByUser(_ context.Context, kind model.SkillKind, userID string) ([]model.Skill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.s.sortedSkills(kind, func(sk model.Skill) bool { return sk.UserID == userID })
	out := make([]model.Skill, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Skill)
	}
	return out, nil
}

func (r *skillRepo) ListAll(_ context.Context, kind model.SkillKind) ([]model.SkillWithOwner, error) {
	return r.joined(kind, func(model.Skill) bool { return true }), nil
}

func (r *skillRepo) Search(_ context.Context, kind model.SkillKind, term string) ([]model.SkillWithOwner, error) {
	return r.joined(kind, func(sk model.Skill) bool { return sk.Matches(term) }), nil
}

func (r *skillRepo) ListByCategory(_ context.Context, kind model.SkillKind, category string) ([]model.SkillWithOwner, error) {
	return r.joined(kind, func(sk model.Skill) bool {
		return strings.ToLower(sk.Category) == strings.ToLower(strings.TrimSpace(category))
	}), nil
}

func (r *skillRepo) Delete(_ context.Context, kind model.SkillKind, id, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.skills[kind][id]
	if !ok || row.UserID != userID {
		return false, nil
	}
	delete(r.s.skills[kind], id)
	return true, nil
}

// joined filters skills of public owners, newest first.
func (r *skillRepo) joined(kind model.SkillKind, keep func(model.Skill) bool) []model.SkillWithOwner {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []model.SkillWithOwner{}
	for _, row := range r.s.sortedSkills(kind, keep) {
		owner, ok := r.s.users[row.UserID]
		if !ok || owner.Privacy != model.PrivacyPublic {
			continue
		}
		out = append(out, model.SkillWithOwner{Skill: row.Skill, User: model.OwnerOf(owner)})
	}
	return out
}

// sortedSkills must be called with the lock held.
func (s *state) sortedSkills(kind model.SkillKind, keep func(model.Skill) bool) []skillRow {
	rows := []skillRow{}
	for _, row := range s.skills[kind] {
		if keep(row.Skill) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	return rows
}

// ---- swaps ----

type swapRepo struct{ s *state }

func (r *swapRepo) Create(_ context.Context, w *model.SwapRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.swaps[w.ID] = swapRow{SwapRequest: *w, seq: r.s.next()}
	return nil
}

func (r *swapRepo) GetByID(_ context.Context, id string) (*model.SwapRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.swaps[id]
	if !ok {
		return nil, repository.ErrSwapNotFound
	}
	w := row.SwapRequest
	return &w, nil
}

func (r *swapRepo) ListByUser(_ context.Context, userID string) ([]model.SwapDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := []swapRow{}
	for _, row := range r.s.swaps {
		if row.RequesterID == userID || row.ReceiverID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]model.SwapDetail, 0, len(rows))
	for _, row := range rows {
		d := model.SwapDetail{SwapRequest: row.SwapRequest}
		if u, ok := r.s.users[row.RequesterID]; ok {
			d.Requester = model.SummaryOf(u)
		}
		if u, ok := r.s.users[row.ReceiverID]; ok {
			d.Receiver = model.SummaryOf(u)
		}
		if sk, ok := r.s.skills[model.SkillOffered][row.OfferedSkillID]; ok {
			d.OfferedSkill = model.SkillSummaryOf(sk.Skill)
		}
		if sk, ok := r.s.skills[model.SkillWanted][row.WantedSkillID]; ok {
			d.WantedSkill = model.SkillSummaryOf(sk.Skill)
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *swapRepo) UpdateStatus(_ context.Context, id string, status model.SwapStatus, receiverID string) (*model.SwapRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.swaps[id]
	if !ok || row.ReceiverID != receiverID {
		return nil, repository.ErrSwapNotFound
	}
	row.Status = status
	row.UpdatedAt = r.s.now()
	r.s.swaps[id] = row
	w := row.SwapRequest
	return &w, nil
}

// ---- sessions ----

type sessionRepo struct{ s *state }

func (r *sessionRepo) StoreRefresh(_ context.Context, t model.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.sessions[t.TokenHash] = t
	return nil
}

func (r *sessionRepo) ValidateRefresh(_ context.Context, tokenHash string) (string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.sessions[tokenHash]
	if !ok || !t.Active(r.s.now()) {
		return "", repository.ErrSessionInvalid
	}
	return t.UserID, nil
}

func (r *sessionRepo) ConsumeRefresh(_ context.Context, tokenHash string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.sessions[tokenHash]
	now := r.s.now()
	if !ok || !t.Active(now) {
		return "", repository.ErrSessionInvalid
	}
	t.RevokedAt = &now
	r.s.sessions[tokenHash] = t
	return t.UserID, nil
}

func (r *sessionRepo) RevokeByHash(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if t, ok := r.s.sessions[tokenHash]; ok && t.RevokedAt == nil {
		now := r.s.now()
		t.RevokedAt = &now
		r.s.sessions[tokenHash] = t
	}
	return nil
}

func (r *sessionRepo) RevokeAllForUser(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	for hash, t := range r.s.sessions {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt = &now
			r.s.sessions[hash] = t
		}
	}
	return nil
}
