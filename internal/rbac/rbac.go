package rbac

import (
	"time"
)

// PermissionName is a typed permission identifier. Checks always compare the
// full name for exact equality; there is no wildcard or prefix matching.
type PermissionName string

const (
	PermCreateOrder          PermissionName = "CREATE_ORDER"
	PermViewAssignedOrders   PermissionName = "VIEW_ASSIGNED_ORDERS"
	PermViewAllOrders        PermissionName = "VIEW_ALL_ORDERS"
	PermUpdateOwnOrderStatus PermissionName = "UPDATE_OWN_ORDER_STATUS"
	PermCompleteOwnOrder     PermissionName = "COMPLETE_OWN_ORDER"
	PermReviewOrders         PermissionName = "REVIEW_ORDERS"
	PermExportOrdersCSV      PermissionName = "EXPORT_ORDERS_CSV"
	PermViewOrderStats       PermissionName = "VIEW_ORDER_STATS"
	PermEditFuelOrder        PermissionName = "EDIT_FUEL_ORDER"
	PermDeleteFuelOrder      PermissionName = "DELETE_FUEL_ORDER"
	PermViewUsers            PermissionName = "VIEW_USERS"
	PermManageUsers          PermissionName = "MANAGE_USERS"
	PermViewTrucks           PermissionName = "VIEW_TRUCKS"
	PermManageTrucks         PermissionName = "MANAGE_TRUCKS"
	PermViewAircraft         PermissionName = "VIEW_AIRCRAFT"
	PermManageAircraft       PermissionName = "MANAGE_AIRCRAFT"
	PermViewCustomers        PermissionName = "VIEW_CUSTOMERS"
	PermManageCustomers      PermissionName = "MANAGE_CUSTOMERS"
	PermManageRoles          PermissionName = "MANAGE_ROLES"
	PermViewPermissions      PermissionName = "VIEW_PERMISSIONS"
	PermManageSettings       PermissionName = "MANAGE_SETTINGS"
)

// Built-in role names seeded at bootstrap. Role assignment stays data-driven;
// these names only matter to the seeder and to technician qualification.
const (
	RoleSystemAdministrator = "System Administrator"
	RoleCSR                 = "Customer Service Representative"
	RoleLST                 = "Line Service Technician"
)

// Catalog lists every permission the system knows about, with the
// human-readable description stored alongside the name. Seeding and the
// admin permission listing both derive from this table.
var Catalog = []Permission{
	{Name: string(PermCreateOrder), Description: "Allows creating new fuel orders"},
	{Name: string(PermViewAssignedOrders), Description: "Allows viewing orders assigned to self"},
	{Name: string(PermViewAllOrders), Description: "Allows viewing all fuel orders"},
	{Name: string(PermUpdateOwnOrderStatus), Description: "Allows a technician to update status of own orders"},
	{Name: string(PermCompleteOwnOrder), Description: "Allows a technician to complete own orders"},
	{Name: string(PermReviewOrders), Description: "Allows marking completed orders as reviewed"},
	{Name: string(PermExportOrdersCSV), Description: "Allows exporting order data to CSV"},
	{Name: string(PermViewOrderStats), Description: "Allows viewing order status counts"},
	{Name: string(PermEditFuelOrder), Description: "Allows editing fuel order details"},
	{Name: string(PermDeleteFuelOrder), Description: "Allows cancelling fuel orders"},
	{Name: string(PermViewUsers), Description: "Allows viewing user list"},
	{Name: string(PermManageUsers), Description: "Allows creating, updating, deleting users and assigning roles"},
	{Name: string(PermViewTrucks), Description: "Allows viewing fuel truck list"},
	{Name: string(PermManageTrucks), Description: "Allows creating, updating, deleting fuel trucks"},
	{Name: string(PermViewAircraft), Description: "Allows viewing aircraft list"},
	{Name: string(PermManageAircraft), Description: "Allows creating, updating, deleting aircraft"},
	{Name: string(PermViewCustomers), Description: "Allows viewing customer list"},
	{Name: string(PermManageCustomers), Description: "Allows creating, updating, deleting customers"},
	{Name: string(PermManageRoles), Description: "Allows managing roles and their permissions"},
	{Name: string(PermViewPermissions), Description: "Allows viewing available system permissions"},
	{Name: string(PermManageSettings), Description: "Allows managing global application settings"},
}

// Permission is a leaf capability. Permissions are never composed of other
// permissions; roles aggregate them.
type Permission struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

// Role is a named set of permissions, many-to-many with users. There is no
// inheritance between roles.
type Role struct {
	ID          int64        `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"uniqueIndex;not null"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions"`
	CreatedAt   time.Time    `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"column:updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

// Principal is the minimal identity slice permission checks need. Handlers
// build it from the authenticated user so rbac stays free of the auth types.
type Principal struct {
	ID       int64
	IsActive bool
}
