package model

import "strings"

// Role is stored in users.role and carried in the access token.
type Role string

const (
	RoleTable      Role = "TABLE"
	RoleWaiter     Role = "WAITER"
	RoleCook       Role = "COOK"
	RoleCashier    Role = "CASHIER"
	RoleAccountant Role = "ACCOUNTANT"
	RoleAdmin      Role = "ADMIN"
)

var roles = []Role{RoleTable, RoleWaiter, RoleCook, RoleCashier, RoleAccountant, RoleAdmin}

// Roles returns every known role.
func Roles() []Role {
	return append([]Role(nil), roles...)
}

// ParseRole accepts any casing.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Capability is a permission checked once per request.
type Capability string

const (
	CapPlaceTableOrders  Capability = "place_table_orders"
	CapTakeOrders        Capability = "take_orders"
	CapViewOrders        Capability = "view_orders"
	CapUpdateOrderStatus Capability = "update_order_status"
	CapCollectPayments   Capability = "collect_payments"
	CapManageExpenses    Capability = "manage_expenses"
	CapManageCash        Capability = "manage_cash"
	CapViewReports       Capability = "view_reports"
	CapManageCatalog     Capability = "manage_catalog"
	CapManageUsers       Capability = "manage_users"
	CapResetCash         Capability = "reset_cash"
	CapRunDailyBalance   Capability = "run_daily_balance"
)

// grants lists capabilities per role. ADMIN is not listed; Can grants it
// every capability.
var grants = map[Role][]Capability{
	RoleTable:      {CapPlaceTableOrders},
	RoleWaiter:     {CapPlaceTableOrders, CapTakeOrders, CapViewOrders, CapUpdateOrderStatus, CapCollectPayments},
	RoleCook:       {CapViewOrders, CapUpdateOrderStatus, CapManageCatalog},
	RoleCashier:    {CapViewOrders, CapCollectPayments, CapManageCash, CapViewReports},
	RoleAccountant: {CapViewOrders, CapCollectPayments, CapManageExpenses, CapManageCash, CapViewReports},
}

// Can reports whether r holds c.
func (r Role) Can(c Capability) bool {
	if r == RoleAdmin {
		return true
	}
	for _, g := range grants[r] {
		if g == c {
			return true
		}
	}
	return false
}

// MayAuthorExpenses reports whether r can be recorded as an expense author.
func (r Role) MayAuthorExpenses() bool {
	return r == RoleAdmin || r == RoleAccountant
}
