// store/store.go
package store

import (
	"context"
	"errors"

	"assetmgt/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// AssetRepository persists assets and their audit trail. Insert and Update
// take the history entry produced by the transition so both writes happen as
// one atomic operation: either the asset and the entry land together or
// neither does.
type AssetRepository interface {
	Insert(ctx context.Context, asset *models.Asset, entry *models.AssetHistory) error
	Update(ctx context.Context, asset *models.Asset, entry *models.AssetHistory) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Asset, error)
	FindByCode(ctx context.Context, code string) (*models.Asset, error)
	List(ctx context.Context) ([]models.Asset, error)
	CountByType(ctx context.Context, typeID string) (int64, error)
	CountInUseByUser(ctx context.Context, userID string) (int64, error)
	CountInUseByDepartment(ctx context.Context, departmentID string) (int64, error)
}

// HistoryRepository reads the audit trail. The trail is append-only and only
// ever written through AssetRepository mutations.
type HistoryRepository interface {
	// ListByAsset returns entries most-recent-first by performedAt, ties
	// broken by insertion order.
	ListByAsset(ctx context.Context, assetID string) ([]models.AssetHistory, error)
	List(ctx context.Context, limit int64) ([]models.AssetHistory, error)
}

type UserRepository interface {
	Insert(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	CountActiveByDepartment(ctx context.Context, departmentID string) (int64, error)
}

type DepartmentRepository interface {
	Insert(ctx context.Context, dept *models.Department) error
	Update(ctx context.Context, dept *models.Department) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Department, error)
	List(ctx context.Context) ([]models.Department, error)
}

type AssetTypeRepository interface {
	Insert(ctx context.Context, t *models.AssetType) error
	Update(ctx context.Context, t *models.AssetType) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.AssetType, error)
	FindByName(ctx context.Context, name string) (*models.AssetType, error)
	List(ctx context.Context) ([]models.AssetType, error)
}

type RoleRepository interface {
	Insert(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
}

type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// Store bundles every repository behind one injection point.
type Store struct {
	Assets        AssetRepository
	History       HistoryRepository
	Users         UserRepository
	Departments   DepartmentRepository
	AssetTypes    AssetTypeRepository
	Roles         RoleRepository
	Notifications NotificationRepository
}
