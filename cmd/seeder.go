package cmd

import (
	"fmt"
	"log"

	"github.com/fbo-launchpad/fuel-ops/internal/aircraft"
	"github.com/fbo-launchpad/fuel-ops/internal/customer"
	"github.com/fbo-launchpad/fuel-ops/internal/rbac"
	"github.com/fbo-launchpad/fuel-ops/internal/truck"
	"github.com/fbo-launchpad/fuel-ops/internal/user"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the permission catalog, roles and sample data",
	Long:  `Seeds the permission catalog, the built-in roles with their permission grants, and sample users, trucks, aircraft and customers for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		if clearData {
			clearTables(db)
		}

		seedPermissions(db)
		roles := seedRoles(db)
		seedUsers(db, roles, cfg.Security.BCryptCost)
		seedMasterData(db)

		fmt.Println("Seeding complete")
	},
}

// rolePermissions is the built-in role grant matrix. The administrator role
// receives the full catalog and is handled separately.
var rolePermissions = map[string][]rbac.PermissionName{
	rbac.RoleCSR: {
		rbac.PermCreateOrder,
		rbac.PermViewAllOrders,
		rbac.PermReviewOrders,
		rbac.PermExportOrdersCSV,
		rbac.PermViewOrderStats,
		rbac.PermEditFuelOrder,
		rbac.PermDeleteFuelOrder,
		rbac.PermViewUsers,
		rbac.PermViewTrucks,
		rbac.PermViewAircraft,
		rbac.PermManageAircraft,
		rbac.PermViewCustomers,
		rbac.PermManageCustomers,
	},
	rbac.RoleLST: {
		rbac.PermViewAssignedOrders,
		rbac.PermUpdateOwnOrderStatus,
		rbac.PermCompleteOwnOrder,
		rbac.PermViewTrucks,
		rbac.PermViewAircraft,
	},
}

func clearTables(db *gorm.DB) {
	tables := []string{
		"fuel_orders", "user_roles", "role_permissions",
		"users", "roles", "permissions",
		"aircraft", "fuel_trucks", "customers",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("failed to clear table %s: %v", table, err)
		}
	}
	fmt.Println("Cleared existing data")
}

func seedPermissions(db *gorm.DB) {
	for _, perm := range rbac.Catalog {
		p := perm
		err := db.Where(rbac.Permission{Name: p.Name}).
			Assign(rbac.Permission{Description: p.Description}).
			FirstOrCreate(&p).Error
		if err != nil {
			log.Fatalf("failed to seed permission %s: %v", p.Name, err)
		}
	}
	fmt.Printf("Seeded %d permissions\n", len(rbac.Catalog))
}

func seedRoles(db *gorm.DB) map[string]rbac.Role {
	descriptions := map[string]string{
		rbac.RoleSystemAdministrator: "Full access to all system functions",
		rbac.RoleCSR:                 "Dispatches, reviews and exports fuel orders",
		rbac.RoleLST:                 "Executes fueling and advances order status",
	}

	roles := make(map[string]rbac.Role, len(descriptions))
	for name, description := range descriptions {
		role := rbac.Role{Name: name}
		err := db.Where(rbac.Role{Name: name}).
			Assign(rbac.Role{Description: description}).
			FirstOrCreate(&role).Error
		if err != nil {
			log.Fatalf("failed to seed role %s: %v", name, err)
		}
		roles[name] = role
	}

	var allPermissions []rbac.Permission
	if err := db.Find(&allPermissions).Error; err != nil {
		log.Fatalf("failed to load permissions: %v", err)
	}
	byName := make(map[string]rbac.Permission, len(allPermissions))
	for _, p := range allPermissions {
		byName[p.Name] = p
	}

	grant := func(role rbac.Role, perm rbac.Permission) {
		err := db.Exec(
			"INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			role.ID, perm.ID).Error
		if err != nil {
			log.Fatalf("failed to grant %s to %s: %v", perm.Name, role.Name, err)
		}
	}

	for _, p := range allPermissions {
		grant(roles[rbac.RoleSystemAdministrator], p)
	}
	for roleName, perms := range rolePermissions {
		for _, permName := range perms {
			grant(roles[roleName], byName[string(permName)])
		}
	}

	fmt.Printf("Seeded %d roles\n", len(roles))
	return roles
}

func seedUsers(db *gorm.DB, roles map[string]rbac.Role, bcryptCost int) {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	seeds := []struct {
		email string
		name  string
		role  string
	}{
		{"admin@fbolaunchpad.com", "System Admin", rbac.RoleSystemAdministrator},
		{"csr@fbolaunchpad.com", "Carol Dispatcher", rbac.RoleCSR},
		{"lst1@fbolaunchpad.com", "Lee Technician", rbac.RoleLST},
		{"lst2@fbolaunchpad.com", "Lena Technician", rbac.RoleLST},
	}

	for _, seed := range seeds {
		u := user.User{Email: seed.email}
		err := db.Where(user.User{Email: seed.email}).
			Assign(user.User{Name: seed.name, PasswordHash: string(hash), IsActive: true}).
			FirstOrCreate(&u).Error
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", seed.email, err)
		}

		role := roles[seed.role]
		err = db.Exec(
			"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			u.ID, role.ID).Error
		if err != nil {
			log.Fatalf("failed to assign role to %s: %v", seed.email, err)
		}
		fmt.Printf("Seeded user %s (%s)\n", seed.email, seed.role)
	}
}

func seedMasterData(db *gorm.DB) {
	trucks := []truck.Truck{
		{TruckNumber: "T-01", FuelType: "JET_A", IsActive: true},
		{TruckNumber: "T-02", FuelType: "AVGAS_100LL", IsActive: true},
	}
	for _, t := range trucks {
		seed := t
		err := db.Where(truck.Truck{TruckNumber: seed.TruckNumber}).
			Assign(truck.Truck{FuelType: seed.FuelType, IsActive: seed.IsActive}).
			FirstOrCreate(&seed).Error
		if err != nil {
			log.Fatalf("failed to seed truck %s: %v", seed.TruckNumber, err)
		}
	}

	customers := []customer.Customer{
		{Name: "Skyline Charters", ContactEmail: "ops@skylinecharters.example"},
		{Name: "Meridian Air", ContactEmail: "dispatch@meridianair.example"},
	}
	for _, c := range customers {
		seed := c
		err := db.Where(customer.Customer{Name: seed.Name}).
			Assign(customer.Customer{ContactEmail: seed.ContactEmail}).
			FirstOrCreate(&seed).Error
		if err != nil {
			log.Fatalf("failed to seed customer %s: %v", seed.Name, err)
		}
	}

	fleet := []aircraft.Aircraft{
		{TailNumber: "N123AB", AircraftType: "Citation CJ3", FuelType: "JET_A"},
		{TailNumber: "N456CD", AircraftType: "Cessna 172", FuelType: "AVGAS_100LL"},
	}
	for _, a := range fleet {
		seed := a
		err := db.Where(aircraft.Aircraft{TailNumber: seed.TailNumber}).
			Assign(aircraft.Aircraft{AircraftType: seed.AircraftType, FuelType: seed.FuelType}).
			FirstOrCreate(&seed).Error
		if err != nil {
			log.Fatalf("failed to seed aircraft %s: %v", seed.TailNumber, err)
		}
	}

	fmt.Println("Seeded trucks, customers and aircraft")
}
