// lifecycle/engine.go
//
// The asset state machine. Transitions are checked here, at the API
// boundary, not by hiding buttons: an invalid transition is rejected with a
// typed error no matter how it was requested.
//
//	IN_STOCK --assign--> IN_USE --reclaim--> IN_STOCK
//	                     IN_USE --evaluate--> IN_USE (condition updated)
//
// MAINTENANCE and RETIRED are reserved states: representable, never produced
// by any transition here.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"assetmgt/models"
	"assetmgt/policy"
	"assetmgt/store"
	"assetmgt/validators"
)

// Recorder receives every appended history entry after commit, e.g. for the
// websocket feed. May be nil.
type Recorder func(entry *models.AssetHistory)

type Engine struct {
	store    *store.Store
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time
}

func NewEngine(s *store.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{store: s, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// SetRecorder registers the post-commit history hook.
func (e *Engine) SetRecorder(r Recorder) { e.recorder = r }

type CreateCommand struct {
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	TypeID       string    `json:"typeId"`
	DepartmentID string    `json:"departmentId,omitempty"`
	PurchaseDate time.Time `json:"purchaseDate"`
	Value        float64   `json:"value"`
	Description  string    `json:"description,omitempty"`
}

type AssignCommand struct {
	AssetID      string    `json:"assetId"`
	DepartmentID string    `json:"departmentId"`
	UserID       string    `json:"userId"`
	AssignDate   time.Time `json:"assignDate"`
}

type EvaluateCommand struct {
	AssetID   string                `json:"assetId"`
	Condition models.AssetCondition `json:"condition"`
	Notes     string                `json:"notes,omitempty"`
}

type EditCommand struct {
	AssetID      string    `json:"assetId"`
	Name         string    `json:"name"`
	TypeID       string    `json:"typeId"`
	PurchaseDate time.Time `json:"purchaseDate"`
	Value        float64   `json:"value"`
	Description  string    `json:"description,omitempty"`
}

// Create validates the command and inserts a new asset in IN_STOCK with no
// condition, appending the CREATED history row in the same write.
func (e *Engine) Create(ctx context.Context, actor models.User, cmd CreateCommand) (*models.Asset, error) {
	if !policy.CanCreateAssets(actor.Role) {
		return nil, models.NewPolicyError("role %s cannot create assets", actor.Role)
	}
	if err := validators.AssetInput(cmd.Code, cmd.Name, cmd.TypeID, cmd.PurchaseDate, cmd.Value); err != nil {
		return nil, err
	}
	if _, err := e.store.Assets.FindByCode(ctx, cmd.Code); err == nil {
		return nil, models.NewValidationError("code", "asset code already exists")
	} else if err != store.ErrNotFound {
		return nil, err
	}

	assetType, err := e.store.AssetTypes.FindByID(ctx, cmd.TypeID)
	if err == store.ErrNotFound {
		return nil, models.NewValidationError("typeId", "asset type not found")
	}
	if err != nil {
		return nil, err
	}
	if !assetType.IsActive {
		return nil, models.NewValidationError("typeId", "asset type is inactive")
	}
	if cmd.DepartmentID != "" {
		if _, err := e.store.Departments.FindByID(ctx, cmd.DepartmentID); err == store.ErrNotFound {
			return nil, models.NewValidationError("departmentId", "department not found")
		} else if err != nil {
			return nil, err
		}
	}

	now := e.now()
	asset := &models.Asset{
		Code:         cmd.Code,
		Name:         cmd.Name,
		TypeID:       cmd.TypeID,
		DepartmentID: cmd.DepartmentID,
		PurchaseDate: cmd.PurchaseDate,
		Value:        cmd.Value,
		Status:       models.StatusInStock,
		Description:  cmd.Description,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
	}
	entry := &models.AssetHistory{
		ActionType:  models.ActionCreated,
		PerformedBy: actor.ID,
		PerformedAt: now,
		Details:     fmt.Sprintf("Asset %s created", asset.Code),
		NewStatus:   models.StatusInStock,
	}

	if err := e.store.Assets.Insert(ctx, asset, entry); err != nil {
		if err == store.ErrDuplicate {
			return nil, models.NewValidationError("code", "asset code already exists")
		}
		return nil, err
	}

	e.logger.Info("asset created",
		zap.String("assetId", asset.ID),
		zap.String("code", asset.Code),
		zap.String("actor", actor.ID))
	e.record(entry)
	return asset, nil
}

// Assign moves an IN_STOCK asset to IN_USE for an active STAFF member of the
// target department. MANAGER actors may only assign within their own
// department, both the asset's and the target's.
func (e *Engine) Assign(ctx context.Context, actor models.User, cmd AssignCommand) (*models.Asset, error) {
	if !policy.CanAccess(actor.Role, policy.ResourceAssets, policy.ActionAssign) {
		return nil, models.NewPolicyError("role %s cannot assign assets", actor.Role)
	}
	if cmd.DepartmentID == "" {
		return nil, models.NewValidationError("departmentId", "department is required")
	}
	if cmd.UserID == "" {
		return nil, models.NewValidationError("userId", "user is required")
	}
	if cmd.AssignDate.IsZero() {
		return nil, models.NewValidationError("assignDate", "assign date is required")
	}
	if !policy.CanAssignWithin(actor, cmd.DepartmentID) {
		return nil, models.NewPolicyError("managers may only assign within their own department")
	}

	asset, err := e.store.Assets.FindByID(ctx, cmd.AssetID)
	if err != nil {
		return nil, err
	}
	// Unowned assets may be pulled into the manager's own department.
	if actor.Role == models.RoleManager && asset.DepartmentID != "" && asset.DepartmentID != actor.DepartmentID {
		return nil, models.NewPolicyError("asset %s is outside your department", asset.Code)
	}
	if asset.Status != models.StatusInStock {
		return nil, models.NewStateError("asset %s is %s, only IN_STOCK assets can be assigned", asset.Code, asset.Status)
	}

	dept, err := e.store.Departments.FindByID(ctx, cmd.DepartmentID)
	if err == store.ErrNotFound {
		return nil, models.NewPolicyError("department not found")
	}
	if err != nil {
		return nil, err
	}
	if !dept.IsActive {
		return nil, models.NewPolicyError("department %s is inactive", dept.Name)
	}

	target, err := e.store.Users.FindByID(ctx, cmd.UserID)
	if err == store.ErrNotFound {
		return nil, models.NewPolicyError("target user not found")
	}
	if err != nil {
		return nil, err
	}
	if target.Role != models.RoleStaff {
		return nil, models.NewPolicyError("assets can only be assigned to staff members")
	}
	if !target.IsActive {
		return nil, models.NewPolicyError("target user is inactive")
	}
	if target.DepartmentID != cmd.DepartmentID {
		return nil, models.NewPolicyError("user %s does not belong to department %s", target.Name, dept.Name)
	}

	now := e.now()
	asset.Status = models.StatusInUse
	asset.AssignedTo = target.ID
	asset.DepartmentID = cmd.DepartmentID
	asset.UpdatedAt = now
	entry := &models.AssetHistory{
		AssetID:        asset.ID,
		ActionType:     models.ActionAssigned,
		PerformedBy:    actor.ID,
		PerformedAt:    now,
		Details:        fmt.Sprintf("Assigned to %s (%s)", target.Name, dept.Name),
		PreviousStatus: models.StatusInStock,
		NewStatus:      models.StatusInUse,
	}

	if err := e.store.Assets.Update(ctx, asset, entry); err != nil {
		return nil, err
	}

	e.notify(ctx, target.ID, "Asset assigned",
		fmt.Sprintf("Asset %s (%s) has been assigned to you", asset.Name, asset.Code),
		models.NotificationInfo, asset.ID)
	e.logger.Info("asset assigned",
		zap.String("assetId", asset.ID),
		zap.String("userId", target.ID),
		zap.String("actor", actor.ID))
	e.record(entry)
	return asset, nil
}

// Evaluate records the condition of an IN_USE asset without changing its
// status. Notes are mandatory for any condition other than GOOD.
func (e *Engine) Evaluate(ctx context.Context, actor models.User, cmd EvaluateCommand) (*models.Asset, error) {
	if !policy.CanAccess(actor.Role, policy.ResourceAssets, policy.ActionEvaluate) {
		return nil, models.NewPolicyError("role %s cannot evaluate assets", actor.Role)
	}
	if !cmd.Condition.Valid() {
		return nil, models.NewValidationError("condition", "invalid condition")
	}
	if err := validators.EvaluationNotes(cmd.Condition, cmd.Notes); err != nil {
		return nil, err
	}

	asset, err := e.store.Assets.FindByID(ctx, cmd.AssetID)
	if err != nil {
		return nil, err
	}
	if err := e.checkScope(actor, asset); err != nil {
		return nil, err
	}
	if asset.Status != models.StatusInUse {
		return nil, models.NewStateError("asset %s is %s, only IN_USE assets can be evaluated", asset.Code, asset.Status)
	}

	now := e.now()
	asset.Condition = cmd.Condition
	asset.UpdatedAt = now
	entry := &models.AssetHistory{
		AssetID:        asset.ID,
		ActionType:     models.ActionEvaluated,
		PerformedBy:    actor.ID,
		PerformedAt:    now,
		Details:        fmt.Sprintf("Condition evaluated as %s", cmd.Condition),
		Notes:          cmd.Notes,
		PreviousStatus: models.StatusInUse,
		NewStatus:      models.StatusInUse,
	}

	if err := e.store.Assets.Update(ctx, asset, entry); err != nil {
		return nil, err
	}

	if cmd.Condition != models.ConditionGood && asset.AssignedTo != "" {
		e.notify(ctx, asset.AssignedTo, "Asset needs attention",
			fmt.Sprintf("Asset %s (%s) was evaluated as %s", asset.Name, asset.Code, cmd.Condition),
			models.NotificationWarning, asset.ID)
	}
	e.logger.Info("asset evaluated",
		zap.String("assetId", asset.ID),
		zap.String("condition", string(cmd.Condition)),
		zap.String("actor", actor.ID))
	e.record(entry)
	return asset, nil
}

// Reclaim returns an IN_USE asset to stock, clearing the assignee.
func (e *Engine) Reclaim(ctx context.Context, actor models.User, assetID string) (*models.Asset, error) {
	if !policy.CanAccess(actor.Role, policy.ResourceAssets, policy.ActionReclaim) {
		return nil, models.NewPolicyError("role %s cannot reclaim assets", actor.Role)
	}

	asset, err := e.store.Assets.FindByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if err := e.checkScope(actor, asset); err != nil {
		return nil, err
	}
	if asset.Status != models.StatusInUse {
		return nil, models.NewStateError("asset %s is %s, only IN_USE assets can be reclaimed", asset.Code, asset.Status)
	}

	previousHolder := asset.AssignedTo
	now := e.now()
	asset.Status = models.StatusInStock
	asset.AssignedTo = ""
	asset.UpdatedAt = now
	entry := &models.AssetHistory{
		AssetID:        asset.ID,
		ActionType:     models.ActionReclaimed,
		PerformedBy:    actor.ID,
		PerformedAt:    now,
		Details:        fmt.Sprintf("Asset %s reclaimed to stock", asset.Code),
		PreviousStatus: models.StatusInUse,
		NewStatus:      models.StatusInStock,
	}

	if err := e.store.Assets.Update(ctx, asset, entry); err != nil {
		return nil, err
	}

	if previousHolder != "" {
		e.notify(ctx, previousHolder, "Asset reclaimed",
			fmt.Sprintf("Asset %s (%s) has been reclaimed", asset.Name, asset.Code),
			models.NotificationInfo, asset.ID)
	}
	e.logger.Info("asset reclaimed",
		zap.String("assetId", asset.ID),
		zap.String("actor", actor.ID))
	e.record(entry)
	return asset, nil
}

// Edit updates the mutable fields of an asset. The code cannot change; the
// command has no field for it and the stores refuse to write it.
func (e *Engine) Edit(ctx context.Context, actor models.User, cmd EditCommand) (*models.Asset, error) {
	if !policy.CanAccess(actor.Role, policy.ResourceAssets, policy.ActionEdit) {
		return nil, models.NewPolicyError("role %s cannot edit assets", actor.Role)
	}

	asset, err := e.store.Assets.FindByID(ctx, cmd.AssetID)
	if err != nil {
		return nil, err
	}
	if err := e.checkScope(actor, asset); err != nil {
		return nil, err
	}
	if err := validators.AssetInput(asset.Code, cmd.Name, cmd.TypeID, cmd.PurchaseDate, cmd.Value); err != nil {
		return nil, err
	}
	if cmd.TypeID != asset.TypeID {
		if _, err := e.store.AssetTypes.FindByID(ctx, cmd.TypeID); err == store.ErrNotFound {
			return nil, models.NewValidationError("typeId", "asset type not found")
		} else if err != nil {
			return nil, err
		}
	}

	now := e.now()
	asset.Name = cmd.Name
	asset.TypeID = cmd.TypeID
	asset.PurchaseDate = cmd.PurchaseDate
	asset.Value = cmd.Value
	asset.Description = cmd.Description
	asset.UpdatedAt = now
	entry := &models.AssetHistory{
		AssetID:        asset.ID,
		ActionType:     models.ActionUpdated,
		PerformedBy:    actor.ID,
		PerformedAt:    now,
		Details:        fmt.Sprintf("Asset %s updated", asset.Code),
		PreviousStatus: asset.Status,
		NewStatus:      asset.Status,
	}

	if err := e.store.Assets.Update(ctx, asset, entry); err != nil {
		return nil, err
	}
	e.record(entry)
	return asset, nil
}

// Delete removes an asset that is not in use. IN_USE assets must be
// reclaimed first. History rows are kept.
func (e *Engine) Delete(ctx context.Context, actor models.User, assetID string) error {
	if !policy.CanAccess(actor.Role, policy.ResourceAssets, policy.ActionDelete) {
		return models.NewPolicyError("role %s cannot delete assets", actor.Role)
	}

	asset, err := e.store.Assets.FindByID(ctx, assetID)
	if err != nil {
		return err
	}
	if err := e.checkScope(actor, asset); err != nil {
		return err
	}
	if asset.Status == models.StatusInUse {
		return models.NewStateError("asset %s is in use, reclaim it before deleting", asset.Code)
	}

	if err := e.store.Assets.Delete(ctx, assetID); err != nil {
		return err
	}
	e.logger.Info("asset deleted",
		zap.String("assetId", assetID),
		zap.String("actor", actor.ID))
	return nil
}

// checkScope restricts MANAGER actors to assets of their own department.
func (e *Engine) checkScope(actor models.User, asset *models.Asset) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleManager:
		if asset.DepartmentID != actor.DepartmentID {
			return models.NewPolicyError("asset %s is outside your department", asset.Code)
		}
		return nil
	}
	return models.NewPolicyError("role %s cannot modify assets", actor.Role)
}

// notify inserts a notification best-effort; a failure never fails the
// transition that triggered it.
func (e *Engine) notify(ctx context.Context, userID, title, message string, kind models.NotificationType, assetID string) {
	n := &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		AssetID:   assetID,
		CreatedAt: e.now(),
	}
	if err := e.store.Notifications.Insert(ctx, n); err != nil {
		e.logger.Warn("notification insert failed", zap.Error(err))
	}
}

func (e *Engine) record(entry *models.AssetHistory) {
	if e.recorder != nil {
		e.recorder(entry)
	}
}
