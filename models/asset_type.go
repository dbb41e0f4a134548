package models

type AssetType struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	IsActive    bool   `bson:"isActive" json:"isActive"`
}
