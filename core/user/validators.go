package user

import (
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/bursar/core"
)

var (
	allRolesTag  = "allroles"
	allRolesText = "invalid roles"
)

// InitValidators registers the user validation tags.
func InitValidators(v *core.Validator) {
	v.RegisterValidation(allRolesTag, allRolesText, allRolesValidation)
}

// Custom Validators

// allRolesValidation checks that provided user roles are all in AllRoles
func allRolesValidation(fl validator.FieldLevel) bool {
	roles, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	known := make([]string, len(AllRoles))
	copy(known, AllRoles)
	sort.Strings(known)
	for _, role := range roles {
		idx := sort.SearchStrings(known, role)
		if idx >= len(known) || known[idx] != role {
			return false
		}
	}
	return true
}
