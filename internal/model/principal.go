package model

import "github.com/google/uuid"

type Role string

const (
	RoleEstimator Role = "ESTIMATOR"
	RoleManager   Role = "MANAGER"
	RoleViewer    Role = "VIEWER"
)

type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   Role
}

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	switch r {
	case RoleEstimator, RoleManager, RoleViewer:
		return true
	}
	return false
}

// CanModify — право создавать и сохранять сметы.
func (p Principal) CanModify() bool {
	return p.Role == RoleEstimator || p.Role == RoleManager
}
