package user

import (
	"encoding/json"
	"net/mail"
	"strings"
	"time"

	"github.com/trezcool/bursar/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Employee (school staff)
	RoleEmployee       = "employee:"
	RoleEmployeeBursar = "employee:bursar"

	// Student
	RoleStudent = "student:"
)

var (
	AdminRoles    = []string{RoleAdmin, RoleAdminOwner}
	EmployeeRoles = []string{RoleEmployee, RoleEmployeeBursar}
	StudentRoles  = []string{RoleStudent}
	AllRoles      = getAllRoles()

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Employee", Value: RoleEmployee},
		{Name: "Employee Bursar", Value: RoleEmployeeBursar},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 5)
	all = append(all, AdminRoles...)
	all = append(all, EmployeeRoles...)
	all = append(all, StudentRoles...)
	return all
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type User struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Roles     []string        `json:"roles"`
	Meta      json.RawMessage `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"` // UTC
	UpdatedAt time.Time       `json:"updated_at"` // UTC
}

func (u User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool {
	return u.RoleStartsWith(RoleAdmin)
}

func (u User) IsEmployee() bool {
	return u.RoleStartsWith(RoleEmployee)
}

func (u User) IsStudent() bool {
	return u.RoleStartsWith(RoleStudent)
}

func (u User) Address() mail.Address {
	return mail.Address{Name: u.Name, Address: u.Email}
}

// Capabilities is the set of role flags of one user, computed in a single directory lookup.
type Capabilities struct {
	UserID     string `json:"-"`
	IsAdmin    bool   `json:"is_admin"`
	IsStudent  bool   `json:"is_student"`
	IsEmployee bool   `json:"is_employee"`
}

func (u User) Capabilities() Capabilities {
	return Capabilities{
		UserID:     u.ID,
		IsAdmin:    u.IsAdmin(),
		IsStudent:  u.IsStudent(),
		IsEmployee: u.IsEmployee(),
	}
}

// CanReview reports whether the user may review (approve) fee submissions.
func (c Capabilities) CanReview() bool {
	return c.IsAdmin || c.IsEmployee
}

// CanActFor reports whether the user may submit or read billing data of studentID:
// students for themselves, reviewers for anyone.
func (c Capabilities) CanActFor(studentID string) bool {
	if c.CanReview() {
		return true
	}
	return c.IsStudent && c.UserID != "" && c.UserID == studentID
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Name  string   `json:"name" validate:"required"`
	Email string   `json:"email" validate:"required,email"`
	Roles []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Validate(v *core.Validator) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	return v.Struct(nu)
}

type GetFilter struct {
	ID    string
	Email string
}

type QueryFilter struct {
	// Roles matches users having any role starting with any of the given roles.
	Roles []string
}
