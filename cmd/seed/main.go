package main

import (
	"context"
	"log"

	policy "github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/application/commands"
	"github.com/jayandra06/euroasainn-ERP-sub000/contexts/identity-access/policy-engine/domain/entities"
	"github.com/jayandra06/euroasainn-ERP-sub000/internal/app/bootstrap"
)

// Seed creates a demo tenant per portal with its default roles and one
// admin user each, for local development against a fresh database.
func main() {
	log.Println("policy-engine seed starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("seed shutdown close failed: %v", err)
		}
	}()

	ctx := context.Background()
	module := app.Module()
	if _, err := module.MigratePolicies.Execute(ctx); err != nil {
		log.Fatalf("legacy policy migration failed: %v", err)
	}

	seeds := []struct {
		org     entities.Organization
		userID  string
		roleKey string
	}{
		{
			org: entities.Organization{
				ID: "org-platform", Type: entities.OrgTypeAdmin,
				Portal: entities.PortalAdmin, IsActive: true,
			},
			userID:  "user-platform-admin",
			roleKey: "platform_admin",
		},
		{
			org: entities.Organization{
				ID: "org-acme", Type: entities.OrgTypeCustomer,
				Portal: entities.PortalCustomer, IsActive: true,
			},
			userID:  "user-acme-admin",
			roleKey: "customer_admin",
		},
		{
			org: entities.Organization{
				ID: "org-supplies-co", Type: entities.OrgTypeVendor,
				Portal: entities.PortalVendor, IsActive: true,
			},
			userID:  "user-supplies-admin",
			roleKey: "vendor_admin",
		},
	}

	for _, seed := range seeds {
		if err := seedOrganization(ctx, module, seed.org, seed.userID, seed.roleKey); err != nil {
			log.Fatalf("seed organization %s failed: %v", seed.org.ID, err)
		}
		log.Printf("seeded organization %s with user %s (%s)", seed.org.ID, seed.userID, seed.roleKey)
	}
	log.Println("seed completed")
}

func seedOrganization(ctx context.Context, module policy.Module, org entities.Organization, userID, roleKey string) error {
	if err := module.SyncOrgScope.Execute(ctx, commands.SyncOrganizationScopeCommand{Organization: org}); err != nil {
		return err
	}
	return module.SyncUserGrant.Execute(ctx, commands.SyncUserGrantCommand{
		UserID:         userID,
		RoleKey:        roleKey,
		OrganizationID: org.ID,
	})
}
