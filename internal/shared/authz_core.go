package shared

// Portal roles stored in user_roles.role.
const (
	RoleAdmin       = "admin"
	RoleGestor      = "gestor"
	RoleFinanceiro  = "financeiro"
	RoleOperacional = "operacional"
	RoleTripulante  = "tripulante"
)

// AllRoles lists every assignable role.
func AllRoles() []string {
	return []string{RoleAdmin, RoleGestor, RoleFinanceiro, RoleOperacional, RoleTripulante}
}

// IsKnownRole reports whether role is assignable.
func IsKnownRole(role string) bool {
	for _, r := range AllRoles() {
		if r == role {
			return true
		}
	}
	return false
}

// UserManagerRoles may call the create/update/delete user functions.
func UserManagerRoles() []string {
	return []string{RoleAdmin, RoleGestor}
}

// FinanceRoles may read and transition reconciliation ledgers.
func FinanceRoles() []string {
	return []string{RoleAdmin, RoleGestor, RoleFinanceiro}
}

// TravelRoles may build and read travel reports.
func TravelRoles() []string {
	return []string{RoleAdmin, RoleGestor, RoleFinanceiro, RoleOperacional, RoleTripulante}
}

// OperationsRoles may read registries and logbooks.
func OperationsRoles() []string {
	return []string{RoleAdmin, RoleGestor, RoleOperacional, RoleFinanceiro, RoleTripulante}
}
