package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solardesk/solar-crm-backend/internal/complaints"
	"github.com/solardesk/solar-crm-backend/internal/inventory"
	"github.com/solardesk/solar-crm-backend/internal/invoices"
	"github.com/solardesk/solar-crm-backend/internal/leads"
	"github.com/solardesk/solar-crm-backend/internal/pipeline"
	"github.com/solardesk/solar-crm-backend/internal/users"
)

// Stores bundles every demo-mode store so the bootstrap layer can wire them
// in one shot.
type Stores struct {
	Users      *UserStore
	Projects   *ProjectStore
	Inventory  *InventoryStore
	Leads      *LeadStore
	Complaints *ComplaintStore
	Invoices   *InvoiceStore
}

func NewStores(client *redis.Client) *Stores {
	return &Stores{
		Users:      NewUserStore(client),
		Projects:   NewProjectStore(client),
		Inventory:  NewInventoryStore(client),
		Leads:      NewLeadStore(client),
		Complaints: NewComplaintStore(client),
		Invoices:   NewInvoiceStore(client),
	}
}

// Seed fills the embedded redis with fixture data so every dashboard screen
// has something to show. The "demo-user" identity the header middleware
// falls back to is registered as an approved admin.
func (s *Stores) Seed(ctx context.Context) error {
	admin, err := s.seedUser(ctx, "demo-user", "admin@solardesk.example", "Demo Admin", pipeline.RoleCompany)
	if err != nil {
		return err
	}
	agent, err := s.seedUser(ctx, "demo-agent", "agent@solardesk.example", "Kasun Perera", pipeline.RoleAgent)
	if err != nil {
		return err
	}
	freelancer, err := s.seedUser(ctx, "demo-freelancer", "freelancer@solardesk.example", "Nadeesha Silva", pipeline.RoleFreelancer)
	if err != nil {
		return err
	}
	installer, err := s.seedUser(ctx, "demo-installer", "installer@solardesk.example", "Ruwan Fernando", pipeline.RoleInstaller)
	if err != nil {
		return err
	}
	technician, err := s.seedUser(ctx, "demo-technician", "tech@solardesk.example", "Sampath Jayasuriya", pipeline.RoleTechnician)
	if err != nil {
		return err
	}

	adminActor := pipeline.Actor{ID: admin.ID, Name: admin.DisplayName, Role: pipeline.RoleCompany}
	agentActor := pipeline.Actor{ID: agent.ID, Name: agent.DisplayName, Role: pipeline.RoleAgent}
	freelancerActor := pipeline.Actor{ID: freelancer.ID, Name: freelancer.DisplayName, Role: pipeline.RoleFreelancer}
	installerActor := pipeline.Actor{ID: installer.ID, Name: installer.DisplayName, Role: pipeline.RoleInstaller}
	installerRef := pipeline.ActorRef{ID: installer.ID, Name: installer.DisplayName}

	// A fresh agent-sourced lead still at the top of the funnel.
	early := pipeline.NewProject(agentActor, pipeline.Draft{
		Title:    "5kW rooftop system - Dehiwala residence",
		Location: "Dehiwala",
		Value:    1250000,
	})
	early, err = pipeline.AttemptTransition(early, agentActor, pipeline.StageLeadGenerated, "site visit booked")
	if err != nil {
		return fmt.Errorf("seed early project: %w", err)
	}
	if _, err := s.Projects.Create(ctx, early); err != nil {
		return err
	}

	// An admin-created project mid-pipeline with the advance paid and an
	// installer on the way.
	mid := pipeline.NewProject(adminActor, pipeline.Draft{
		Title:       "10kW commercial array - Negombo warehouse",
		Description: "Flat roof, three-phase supply",
		Location:    "Negombo",
		Value:       3400000,
	})
	for _, step := range []pipeline.Stage{
		pipeline.StageLeadGenerated,
		pipeline.StageQuotationGenerated,
		pipeline.StageBankProcess,
		pipeline.StagePayment70Done,
		pipeline.StageReadyForInstallation,
	} {
		mid, err = pipeline.AttemptTransition(mid, adminActor, step, "")
		if err != nil {
			return fmt.Errorf("seed mid project: %w", err)
		}
	}
	mid = pipeline.AssignInstaller(mid, adminActor, installerRef)
	if _, err := s.Projects.Create(ctx, mid); err != nil {
		return err
	}

	// A finished installation, billed and activated.
	done := pipeline.NewProject(adminActor, pipeline.Draft{
		Title:    "3kW system - Kandy residence",
		Location: "Kandy",
		Value:    780000,
	})
	for _, step := range []pipeline.Stage{
		pipeline.StageLeadGenerated,
		pipeline.StageQuotationGenerated,
		pipeline.StagePayment70Done,
		pipeline.StageReadyForInstallation,
	} {
		done, err = pipeline.AttemptTransition(done, adminActor, step, "")
		if err != nil {
			return fmt.Errorf("seed completed project: %w", err)
		}
	}
	done = pipeline.AssignInstaller(done, adminActor, installerRef)
	done = pipeline.CompleteInstallation(done, installerActor, "commissioned and grid-connected")
	done, err = pipeline.AttemptTransition(done, adminActor, pipeline.StageActivated, "CEB meter activated")
	if err != nil {
		return fmt.Errorf("seed completed project: %w", err)
	}
	if _, err := s.Projects.Create(ctx, done); err != nil {
		return err
	}

	// A freelancer submission waiting in the agent review queue.
	review := pipeline.NewProject(freelancerActor, pipeline.Draft{
		Title:    "6kW system - Galle guesthouse",
		Location: "Galle",
		Value:    1600000,
	})
	if _, err := s.Projects.Create(ctx, review); err != nil {
		return err
	}

	serials := []inventory.Item{
		{SerialNumber: "PNL-2026-0001", ItemType: inventory.TypePanel, Status: inventory.StatusAvailable},
		{SerialNumber: "PNL-2026-0002", ItemType: inventory.TypePanel, Status: inventory.StatusAvailable},
		{SerialNumber: "INV-GT-5500", ItemType: inventory.TypeInverter, Status: inventory.StatusAssigned, ProjectID: mid.ID},
		{SerialNumber: "BAT-LFP-0042", ItemType: inventory.TypeBattery, Status: inventory.StatusAvailable},
		{SerialNumber: "MTR-EXP-0107", ItemType: inventory.TypeMeter, Status: inventory.StatusInstalled, ProjectID: done.ID},
	}
	for _, it := range serials {
		if _, err := s.Inventory.Create(ctx, it); err != nil {
			return err
		}
	}

	leadFixtures := []leads.Lead{
		{
			Name:           "W. Gunasekara",
			Phone:          "+94 77 123 4567",
			Location:       "Moratuwa",
			EstimatedValue: 950000,
			Status:         leads.StatusNew,
		},
		{
			Name:           "Lanka Textiles (Pvt) Ltd",
			Email:          "facilities@lankatextiles.example",
			Location:       "Katunayake",
			EstimatedValue: 5200000,
			Status:         leads.StatusQualified,
			AssignedToID:   agent.ID,
			AssignedToName: agent.DisplayName,
			Notes:          "wants quotation before fiscal year end",
		},
	}
	for _, l := range leadFixtures {
		if _, err := s.Leads.Create(ctx, l); err != nil {
			return err
		}
	}

	if _, err := s.Complaints.Create(ctx, complaints.Complaint{
		ProjectID:      done.ID,
		CustomerName:   "Kandy residence",
		Title:          "Inverter display shows grid fault at dusk",
		Status:         complaints.StatusInProgress,
		Priority:       complaints.PriorityMedium,
		TechnicianID:   technician.ID,
		TechnicianName: technician.DisplayName,
	}); err != nil {
		return err
	}

	due := time.Now().UTC().AddDate(0, 0, 14)
	overdue := time.Now().UTC().AddDate(0, 0, -7)
	invoiceFixtures := []invoices.Invoice{
		{
			ProjectID: done.ID,
			Milestone: invoices.MilestoneFinal30,
			Amount:    invoices.AmountFor(invoices.MilestoneFinal30, done.Value),
			Status:    invoices.StatusSent,
			DueDate:   &due,
		},
		{
			ProjectID: mid.ID,
			Milestone: invoices.MilestoneAdvance70,
			Amount:    invoices.AmountFor(invoices.MilestoneAdvance70, mid.Value),
			Status:    invoices.StatusSent,
			DueDate:   &overdue,
		},
	}
	for _, inv := range invoiceFixtures {
		if _, err := s.Invoices.Create(ctx, inv); err != nil {
			return err
		}
	}

	return nil
}

func (s *Stores) seedUser(ctx context.Context, fuid, email, name string, role pipeline.Role) (*UserSeedResult, error) {
	u, err := s.Users.EnsureUser(ctx, users.UpsertUser{FirebaseUID: fuid, Email: email, DisplayName: name})
	if err != nil {
		return nil, fmt.Errorf("seed user %s: %w", fuid, err)
	}
	if _, err := s.Users.SetRole(ctx, u.ID, string(role)); err != nil {
		return nil, err
	}
	if _, err := s.Users.SetApproval(ctx, u.ID, users.ApprovalApproved); err != nil {
		return nil, err
	}
	return &UserSeedResult{ID: u.ID, DisplayName: name}, nil
}

// UserSeedResult carries the identifiers the project fixtures need.
type UserSeedResult struct {
	ID          string
	DisplayName string
}
