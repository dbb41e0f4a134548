// store/memory.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"assetmgt/models"
)

// memoryData is a process-local database. One mutex guards every table so an
// asset mutation and its history entry are visible together or not at all.
type memoryData struct {
	mu            sync.RWMutex
	assets        map[string]models.Asset
	history       []models.AssetHistory
	historySeq    int64
	users         map[string]models.User
	departments   map[string]models.Department
	assetTypes    map[string]models.AssetType
	roles         map[string]models.Role
	notifications map[string]models.Notification
}

// NewMemory builds a Store backed by in-process maps, seeded with the
// built-in Admin role. Useful for tests and for running without Mongo.
func NewMemory() *Store {
	d := &memoryData{
		assets:        make(map[string]models.Asset),
		users:         make(map[string]models.User),
		departments:   make(map[string]models.Department),
		assetTypes:    make(map[string]models.AssetType),
		roles:         make(map[string]models.Role),
		notifications: make(map[string]models.Notification),
	}
	admin := models.DefaultAdminRole()
	d.roles[admin.ID] = admin

	return &Store{
		Assets:        &memoryAssets{d},
		History:       &memoryHistory{d},
		Users:         &memoryUsers{d},
		Departments:   &memoryDepartments{d},
		AssetTypes:    &memoryAssetTypes{d},
		Roles:         &memoryRoles{d},
		Notifications: &memoryNotifications{d},
	}
}

func newID() string { return uuid.NewString() }

type memoryAssets struct{ d *memoryData }

func (m *memoryAssets) Insert(ctx context.Context, asset *models.Asset, entry *models.AssetHistory) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()

	for _, a := range m.d.assets {
		if a.Code == asset.Code {
			return ErrDuplicate
		}
	}
	if asset.ID == "" {
		asset.ID = newID()
	}
	m.d.assets[asset.ID] = *asset
	m.appendHistoryLocked(asset.ID, entry)
	return nil
}

func (m *memoryAssets) Update(ctx context.Context, asset *models.Asset, entry *models.AssetHistory) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()

	prev, ok := m.d.assets[asset.ID]
	if !ok {
		return ErrNotFound
	}
	// Code is immutable after creation.
	asset.Code = prev.Code
	m.d.assets[asset.ID] = *asset
	if entry != nil {
		m.appendHistoryLocked(asset.ID, entry)
	}
	return nil
}

func (m *memoryAssets) appendHistoryLocked(assetID string, entry *models.AssetHistory) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = newID()
	}
	entry.AssetID = assetID
	m.d.historySeq++
	entry.Seq = m.d.historySeq
	m.d.history = append(m.d.history, *entry)
}

func (m *memoryAssets) Delete(ctx context.Context, id string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.assets[id]; !ok {
		return ErrNotFound
	}
	// History rows outlive the asset: the audit trail is append-only.
	delete(m.d.assets, id)
	return nil
}

func (m *memoryAssets) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	a, ok := m.d.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *memoryAssets) FindByCode(ctx context.Context, code string) (*models.Asset, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	for _, a := range m.d.assets {
		if a.Code == code {
			out := a
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryAssets) List(ctx context.Context) ([]models.Asset, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	out := make([]models.Asset, 0, len(m.d.assets))
	for _, a := range m.d.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryAssets) CountByType(ctx context.Context, typeID string) (int64, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	var n int64
	for _, a := range m.d.assets {
		if a.TypeID == typeID {
			n++
		}
	}
	return n, nil
}

func (m *memoryAssets) CountInUseByUser(ctx context.Context, userID string) (int64, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	var n int64
	for _, a := range m.d.assets {
		if a.Status == models.StatusInUse && a.AssignedTo == userID {
			n++
		}
	}
	return n, nil
}

func (m *memoryAssets) CountInUseByDepartment(ctx context.Context, departmentID string) (int64, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	var n int64
	for _, a := range m.d.assets {
		if a.Status == models.StatusInUse && a.DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

type memoryHistory struct{ d *memoryData }

func (m *memoryHistory) ListByAsset(ctx context.Context, assetID string) ([]models.AssetHistory, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	var out []models.AssetHistory
	for _, h := range m.d.history {
		if h.AssetID == assetID {
			out = append(out, h)
		}
	}
	sortHistory(out)
	return out, nil
}

func (m *memoryHistory) List(ctx context.Context, limit int64) ([]models.AssetHistory, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	out := make([]models.AssetHistory, len(m.d.history))
	copy(out, m.d.history)
	sortHistory(out)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sortHistory orders entries most-recent-first; equal timestamps keep
// insertion order (later seq first, matching "newest on top").
func sortHistory(entries []models.AssetHistory) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].PerformedAt.Equal(entries[j].PerformedAt) {
			return entries[i].PerformedAt.After(entries[j].PerformedAt)
		}
		return entries[i].Seq > entries[j].Seq
	})
}

type memoryUsers struct{ d *memoryData }

func (m *memoryUsers) Insert(ctx context.Context, user *models.User) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, u := range m.d.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = newID()
	}
	m.d.users[user.ID] = *user
	return nil
}

func (m *memoryUsers) Update(ctx context.Context, user *models.User) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.users[user.ID]; !ok {
		return ErrNotFound
	}
	for id, u := range m.d.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	m.d.users[user.ID] = *user
	return nil
}

func (m *memoryUsers) Delete(ctx context.Context, id string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.d.users, id)
	return nil
}

func (m *memoryUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	u, ok := m.d.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	for _, u := range m.d.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) List(ctx context.Context) ([]models.User, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	out := make([]models.User, 0, len(m.d.users))
	for _, u := range m.d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryUsers) CountActiveByDepartment(ctx context.Context, departmentID string) (int64, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	var n int64
	for _, u := range m.d.users {
		if u.IsActive && u.DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

type memoryDepartments struct{ d *memoryData }

func (m *memoryDepartments) Insert(ctx context.Context, dept *models.Department) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if dept.ID == "" {
		dept.ID = newID()
	}
	m.d.departments[dept.ID] = *dept
	return nil
}

func (m *memoryDepartments) Update(ctx context.Context, dept *models.Department) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.departments[dept.ID]; !ok {
		return ErrNotFound
	}
	m.d.departments[dept.ID] = *dept
	return nil
}

func (m *memoryDepartments) Delete(ctx context.Context, id string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.departments[id]; !ok {
		return ErrNotFound
	}
	delete(m.d.departments, id)
	return nil
}

func (m *memoryDepartments) FindByID(ctx context.Context, id string) (*models.Department, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	dept, ok := m.d.departments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &dept, nil
}

func (m *memoryDepartments) List(ctx context.Context) ([]models.Department, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	out := make([]models.Department, 0, len(m.d.departments))
	for _, dept := range m.d.departments {
		out = append(out, dept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memoryAssetTypes struct{ d *memoryData }

func (m *memoryAssetTypes) Insert(ctx context.Context, t *models.AssetType) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, existing := range m.d.assetTypes {
		if strings.EqualFold(existing.Name, t.Name) {
			return ErrDuplicate
		}
	}
	if t.ID == "" {
		t.ID = newID()
	}
	m.d.assetTypes[t.ID] = *t
	return nil
}

func (m *memoryAssetTypes) Update(ctx context.Context, t *models.AssetType) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.assetTypes[t.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range m.d.assetTypes {
		if id != t.ID && strings.EqualFold(existing.Name, t.Name) {
			return ErrDuplicate
		}
	}
	m.d.assetTypes[t.ID] = *t
	return nil
}

func (m *memoryAssetTypes) Delete(ctx context.Context, id string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.assetTypes[id]; !ok {
		return ErrNotFound
	}
	delete(m.d.assetTypes, id)
	return nil
}

func (m *memoryAssetTypes) FindByID(ctx context.Context, id string) (*models.AssetType, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	t, ok := m.d.assetTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *memoryAssetTypes) FindByName(ctx context.Context, name string) (*models.AssetType, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	for _, t := range m.d.assetTypes {
		if strings.EqualFold(t.Name, name) {
			out := t
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryAssetTypes) List(ctx context.Context) ([]models.AssetType, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	out := make([]models.AssetType, 0, len(m.d.assetTypes))
	for _, t := range m.d.assetTypes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memoryRoles struct{ d *memoryData }

func (m *memoryRoles) Insert(ctx context.Context, role *models.Role) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for _, existing := range m.d.roles {
		if strings.EqualFold(existing.Name, role.Name) {
			return ErrDuplicate
		}
	}
	if role.ID == "" {
		role.ID = newID()
	}
	m.d.roles[role.ID] = *role
	return nil
}

func (m *memoryRoles) Update(ctx context.Context, role *models.Role) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.roles[role.ID]; !ok {
		return ErrNotFound
	}
	m.d.roles[role.ID] = *role
	return nil
}

func (m *memoryRoles) Delete(ctx context.Context, id string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if _, ok := m.d.roles[id]; !ok {
		return ErrNotFound
	}
	delete(m.d.roles, id)
	return nil
}

func (m *memoryRoles) FindByID(ctx context.Context, id string) (*models.Role, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	role, ok := m.d.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &role, nil
}

func (m *memoryRoles) List(ctx context.Context) ([]models.Role, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	out := make([]models.Role, 0, len(m.d.roles))
	for _, role := range m.d.roles {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memoryNotifications struct{ d *memoryData }

func (m *memoryNotifications) Insert(ctx context.Context, n *models.Notification) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if n.ID == "" {
		n.ID = newID()
	}
	m.d.notifications[n.ID] = *n
	return nil
}

func (m *memoryNotifications) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	m.d.mu.RLock()
	defer m.d.mu.RUnlock()
	var out []models.Notification
	for _, n := range m.d.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryNotifications) MarkRead(ctx context.Context, id, userID string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	n, ok := m.d.notifications[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.IsRead = true
	m.d.notifications[id] = n
	return nil
}

func (m *memoryNotifications) MarkAllRead(ctx context.Context, userID string) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for id, n := range m.d.notifications {
		if n.UserID == userID {
			n.IsRead = true
			m.d.notifications[id] = n
		}
	}
	return nil
}
