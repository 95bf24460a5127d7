package memory

import (
	"context"
	"sort"
	"time"

	"github.com/erp/kernel/internal/domain/asset"
	"github.com/erp/kernel/internal/domain/shared"
	"github.com/google/uuid"
)

// AssetRepository implements asset.AssetRepository
type AssetRepository struct{ s *Store }

// Assets returns the store's asset repository
func (s *Store) Assets() *AssetRepository { return &AssetRepository{s} }

// FindByID returns a copy of the asset
func (r *AssetRepository) FindByID(_ context.Context, tenantID, id uuid.UUID) (*asset.Asset, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.assets[id]
	if !ok || a.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// Save inserts the asset
func (r *AssetRepository) Save(_ context.Context, a *asset.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.assets[a.ID]; ok {
		return shared.ErrAlreadyExists
	}
	cp := *a
	r.s.assets[a.ID] = &cp
	return nil
}

// ScheduleRepository implements asset.ScheduleRepository
type ScheduleRepository struct{ s *Store }

// Schedules returns the store's schedule repository
func (s *Store) Schedules() *ScheduleRepository { return &ScheduleRepository{s} }

// FindByAsset returns a copy of the asset's schedule
func (r *ScheduleRepository) FindByAsset(_ context.Context, tenantID, assetID uuid.UUID) ([]asset.ScheduleLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]asset.ScheduleLine, 0)
	for _, l := range r.s.schedules[assetID] {
		if l.TenantID == tenantID {
			out = append(out, l)
		}
	}
	return out, nil
}

// SaveLines appends lines to their asset's schedule
func (r *ScheduleRepository) SaveLines(_ context.Context, lines []asset.ScheduleLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range lines {
		r.s.schedules[l.AssetID] = append(r.s.schedules[l.AssetID], l)
	}
	for id := range r.s.schedules {
		sched := r.s.schedules[id]
		sort.SliceStable(sched, func(i, j int) bool { return sched[i].PeriodNumber < sched[j].PeriodNumber })
	}
	return nil
}

// FindUnpostedDue returns unposted lines of the entity's assets with period end in [from, to]
func (r *ScheduleRepository) FindUnpostedDue(_ context.Context, tenantID, entityID uuid.UUID, from, to time.Time) ([]asset.ScheduleLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lo, hi := shared.DateOf(from), shared.DateOf(to)
	out := make([]asset.ScheduleLine, 0)
	for assetID, lines := range r.s.schedules {
		a, ok := r.s.assets[assetID]
		if !ok || a.TenantID != tenantID || a.EntityID != entityID {
			continue
		}
		for _, l := range lines {
			end := shared.DateOf(l.PeriodEnd)
			if l.IsPosted() || end.Before(lo) || end.After(hi) {
				continue
			}
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AssetID != out[j].AssetID {
			return out[i].AssetID.String() < out[j].AssetID.String()
		}
		return out[i].PeriodNumber < out[j].PeriodNumber
	})
	return out, nil
}

// MarkPosted records the journal on a line
func (r *ScheduleRepository) MarkPosted(_ context.Context, tenantID, lineID, journalID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, lines := range r.s.schedules {
		for i := range lines {
			if lines[i].ID == lineID && lines[i].TenantID == tenantID {
				return lines[i].MarkPosted(journalID)
			}
		}
	}
	return shared.ErrNotFound
}
