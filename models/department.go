// models/department.go
package models

type Department struct {
	ID          string `bson:"_id,omitempty" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	ManagerID   string `bson:"managerId,omitempty" json:"managerId,omitempty"`
	IsActive    bool   `bson:"isActive" json:"isActive"`
	// EmployeeCount is a cached count maintained by the user handlers, not
	// recalculated on read.
	EmployeeCount int `bson:"employeeCount" json:"employeeCount"`
}
