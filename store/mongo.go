// store/mongo.go
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"assetmgt/models"
)

// NewMongo builds a Store over the given database. Asset mutations and their
// history entries are written inside one session transaction so the audit
// trail can never drift from asset state.
func NewMongo(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		Assets: &mongoAssets{
			client:   client,
			assets:   db.Collection("assets"),
			history:  db.Collection("asset_history"),
			counters: db.Collection("counters"),
		},
		History:       &mongoHistory{history: db.Collection("asset_history")},
		Users:         &mongoUsers{users: db.Collection("users")},
		Departments:   &mongoDepartments{departments: db.Collection("departments")},
		AssetTypes:    &mongoAssetTypes{types: db.Collection("asset_types")},
		Roles:         &mongoRoles{roles: db.Collection("roles")},
		Notifications: &mongoNotifications{notifications: db.Collection("notifications")},
	}
}

// EnsureDefaults seeds the built-in Admin role if it is missing.
func EnsureDefaults(ctx context.Context, s *Store) error {
	admin := models.DefaultAdminRole()
	if _, err := s.Roles.FindByID(ctx, admin.ID); err == ErrNotFound {
		admin.CreatedAt = time.Now().UTC()
		return s.Roles.Insert(ctx, &admin)
	} else if err != nil {
		return err
	}
	return nil
}

func mongoID() string { return primitive.NewObjectID().Hex() }

type mongoAssets struct {
	client   *mongo.Client
	assets   *mongo.Collection
	history  *mongo.Collection
	counters *mongo.Collection
}

// nextSeq increments the history sequence counter. Runs inside the same
// session as the history insert when called from a transaction.
func (m *mongoAssets) nextSeq(ctx context.Context) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "asset_history_seq"},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}

func (m *mongoAssets) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (m *mongoAssets) Insert(ctx context.Context, asset *models.Asset, entry *models.AssetHistory) error {
	count, err := m.assets.CountDocuments(ctx, bson.M{"code": asset.Code})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	if asset.ID == "" {
		asset.ID = mongoID()
	}
	return m.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if _, err := m.assets.InsertOne(sc, asset); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrDuplicate
			}
			return err
		}
		return m.insertHistory(sc, asset.ID, entry)
	})
}

func (m *mongoAssets) Update(ctx context.Context, asset *models.Asset, entry *models.AssetHistory) error {
	return m.withTransaction(ctx, func(sc mongo.SessionContext) error {
		// $set everything except _id and code: the code can never change.
		update := bson.M{
			"name":         asset.Name,
			"typeId":       asset.TypeID,
			"departmentId": asset.DepartmentID,
			"assignedTo":   asset.AssignedTo,
			"purchaseDate": asset.PurchaseDate,
			"value":        asset.Value,
			"status":       asset.Status,
			"condition":    asset.Condition,
			"image":        asset.Image,
			"description":  asset.Description,
			"updatedAt":    asset.UpdatedAt,
		}
		result, err := m.assets.UpdateOne(sc, bson.M{"_id": asset.ID}, bson.M{"$set": update})
		if err != nil {
			return err
		}
		if result.MatchedCount == 0 {
			return ErrNotFound
		}
		if entry != nil {
			return m.insertHistory(sc, asset.ID, entry)
		}
		return nil
	})
}

func (m *mongoAssets) insertHistory(ctx context.Context, assetID string, entry *models.AssetHistory) error {
	if entry == nil {
		return nil
	}
	seq, err := m.nextSeq(ctx)
	if err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = mongoID()
	}
	entry.AssetID = assetID
	entry.Seq = seq
	_, err = m.history.InsertOne(ctx, entry)
	return err
}

func (m *mongoAssets) Delete(ctx context.Context, id string) error {
	result, err := m.assets.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoAssets) FindByID(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	err := m.assets.FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (m *mongoAssets) FindByCode(ctx context.Context, code string) (*models.Asset, error) {
	var asset models.Asset
	err := m.assets.FindOne(ctx, bson.M{"code": code}).Decode(&asset)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (m *mongoAssets) List(ctx context.Context) ([]models.Asset, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.assets.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assets []models.Asset
	if err = cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	return assets, nil
}

func (m *mongoAssets) CountByType(ctx context.Context, typeID string) (int64, error) {
	return m.assets.CountDocuments(ctx, bson.M{"typeId": typeID})
}

func (m *mongoAssets) CountInUseByUser(ctx context.Context, userID string) (int64, error) {
	return m.assets.CountDocuments(ctx, bson.M{"status": models.StatusInUse, "assignedTo": userID})
}

func (m *mongoAssets) CountInUseByDepartment(ctx context.Context, departmentID string) (int64, error) {
	return m.assets.CountDocuments(ctx, bson.M{"status": models.StatusInUse, "departmentId": departmentID})
}

type mongoHistory struct {
	history *mongo.Collection
}

func (m *mongoHistory) ListByAsset(ctx context.Context, assetID string) ([]models.AssetHistory, error) {
	return m.find(ctx, bson.M{"assetId": assetID}, 0)
}

func (m *mongoHistory) List(ctx context.Context, limit int64) ([]models.AssetHistory, error) {
	return m.find(ctx, bson.M{}, limit)
}

func (m *mongoHistory) find(ctx context.Context, filter bson.M, limit int64) ([]models.AssetHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "performedAt", Value: -1}, {Key: "seq", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := m.history.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.AssetHistory
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.AssetHistory{}
	}
	return entries, nil
}

type mongoUsers struct {
	users *mongo.Collection
}

func (m *mongoUsers) Insert(ctx context.Context, user *models.User) error {
	count, err := m.users.CountDocuments(ctx, bson.M{"email": normalizeEmail(user.Email)})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	if user.ID == "" {
		user.ID = mongoID()
	}
	user.Email = normalizeEmail(user.Email)
	_, err = m.users.InsertOne(ctx, user)
	return err
}

func (m *mongoUsers) Update(ctx context.Context, user *models.User) error {
	user.Email = normalizeEmail(user.Email)
	count, err := m.users.CountDocuments(ctx, bson.M{"_id": bson.M{"$ne": user.ID}, "email": user.Email})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	result, err := m.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoUsers) Delete(ctx context.Context, id string) error {
	result, err := m.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := m.users.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *mongoUsers) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (m *mongoUsers) CountActiveByDepartment(ctx context.Context, departmentID string) (int64, error) {
	return m.users.CountDocuments(ctx, bson.M{"isActive": true, "departmentId": departmentID})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type mongoDepartments struct {
	departments *mongo.Collection
}

func (m *mongoDepartments) Insert(ctx context.Context, dept *models.Department) error {
	if dept.ID == "" {
		dept.ID = mongoID()
	}
	_, err := m.departments.InsertOne(ctx, dept)
	return err
}

func (m *mongoDepartments) Update(ctx context.Context, dept *models.Department) error {
	result, err := m.departments.ReplaceOne(ctx, bson.M{"_id": dept.ID}, dept)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoDepartments) Delete(ctx context.Context, id string) error {
	result, err := m.departments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoDepartments) FindByID(ctx context.Context, id string) (*models.Department, error) {
	var dept models.Department
	err := m.departments.FindOne(ctx, bson.M{"_id": id}).Decode(&dept)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

func (m *mongoDepartments) List(ctx context.Context) ([]models.Department, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.departments.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var departments []models.Department
	if err = cursor.All(ctx, &departments); err != nil {
		return nil, err
	}
	if departments == nil {
		departments = []models.Department{}
	}
	return departments, nil
}

type mongoAssetTypes struct {
	types *mongo.Collection
}

func (m *mongoAssetTypes) Insert(ctx context.Context, t *models.AssetType) error {
	count, err := m.types.CountDocuments(ctx, bson.M{"name": t.Name})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	if t.ID == "" {
		t.ID = mongoID()
	}
	_, err = m.types.InsertOne(ctx, t)
	return err
}

func (m *mongoAssetTypes) Update(ctx context.Context, t *models.AssetType) error {
	count, err := m.types.CountDocuments(ctx, bson.M{"_id": bson.M{"$ne": t.ID}, "name": t.Name})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	result, err := m.types.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoAssetTypes) Delete(ctx context.Context, id string) error {
	result, err := m.types.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoAssetTypes) FindByID(ctx context.Context, id string) (*models.AssetType, error) {
	var t models.AssetType
	err := m.types.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (m *mongoAssetTypes) FindByName(ctx context.Context, name string) (*models.AssetType, error) {
	var t models.AssetType
	err := m.types.FindOne(ctx, bson.M{"name": name}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (m *mongoAssetTypes) List(ctx context.Context) ([]models.AssetType, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.types.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var types []models.AssetType
	if err = cursor.All(ctx, &types); err != nil {
		return nil, err
	}
	if types == nil {
		types = []models.AssetType{}
	}
	return types, nil
}

type mongoRoles struct {
	roles *mongo.Collection
}

func (m *mongoRoles) Insert(ctx context.Context, role *models.Role) error {
	count, err := m.roles.CountDocuments(ctx, bson.M{"name": role.Name})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicate
	}
	if role.ID == "" {
		role.ID = mongoID()
	}
	_, err = m.roles.InsertOne(ctx, role)
	return err
}

func (m *mongoRoles) Update(ctx context.Context, role *models.Role) error {
	result, err := m.roles.ReplaceOne(ctx, bson.M{"_id": role.ID}, role)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoRoles) Delete(ctx context.Context, id string) error {
	result, err := m.roles.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoRoles) FindByID(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	err := m.roles.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (m *mongoRoles) List(ctx context.Context) ([]models.Role, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := m.roles.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []models.Role
	if err = cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []models.Role{}
	}
	return roles, nil
}

type mongoNotifications struct {
	notifications *mongo.Collection
}

func (m *mongoNotifications) Insert(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = mongoID()
	}
	_, err := m.notifications.InsertOne(ctx, n)
	return err
}

func (m *mongoNotifications) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := m.notifications.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Notification
	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Notification{}
	}
	return out, nil
}

func (m *mongoNotifications) MarkRead(ctx context.Context, id, userID string) error {
	result, err := m.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoNotifications) MarkAllRead(ctx context.Context, userID string) error {
	_, err := m.notifications.UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	return err
}
