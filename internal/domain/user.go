package domain

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleStaff      Role = "STAFF"
	RoleSpecialist Role = "SPECIALIST"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleSpecialist, RoleAdmin:
		return true
	}
	return false
}

// Actor is the caller of an operation. ID is interpreted by role: a
// customer id for CUSTOMER, a specialist id for SPECIALIST, a user id for
// STAFF and ADMIN.
type Actor struct {
	ID   int64 `json:"id"`
	Role Role  `json:"role"`
}

func (a Actor) IsStaff() bool {
	return a.Role == RoleStaff || a.Role == RoleAdmin
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsCustomer(customerID int64) bool {
	return a.Role == RoleCustomer && a.ID == customerID
}

func (a Actor) IsSpecialist(specialistID int64) bool {
	return a.Role == RoleSpecialist && a.ID == specialistID
}
