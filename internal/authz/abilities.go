package authz

import "taskboard/internal/models"

// Operation tags checked at the route boundary. The role table below is the
// single source of truth for what each role may do.
const (
	TaskIndex            = "task:index"
	TaskShow             = "task:show"
	TaskCreate           = "task:create"
	TaskUpdate           = "task:update"
	TaskDelete           = "task:delete"
	TaskAssign           = "task:assign"
	TaskUpdateStatus     = "task:update-status"
	TaskAddDependencies  = "task:add-dependencies"
	TaskRemoveDependency = "task:remove-dependency"
	UserIndex            = "user:index"
	UserCreate           = "user:create"
	ReportsView          = "reports:view"
)

var roleAbilities = map[models.UserRole]map[string]struct{}{
	models.RoleManager: toSet(
		TaskIndex, TaskShow, TaskCreate, TaskUpdate, TaskDelete,
		TaskAssign, TaskAddDependencies, TaskRemoveDependency,
		UserIndex, UserCreate, ReportsView,
	),
	models.RoleUser: toSet(
		TaskIndex, TaskShow, TaskUpdateStatus,
	),
}

// Can reports whether role is permitted to perform the tagged operation.
func Can(role models.UserRole, ability string) bool {
	set, ok := roleAbilities[role]
	if !ok {
		return false
	}
	_, ok = set[ability]
	return ok
}

// Abilities returns the operation tags granted to role.
func Abilities(role models.UserRole) []string {
	set := roleAbilities[role]
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	return out
}

func toSet(abilities ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(abilities))
	for _, a := range abilities {
		set[a] = struct{}{}
	}
	return set
}
