package main

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/solardesk/solar-crm-backend/config"
	"github.com/solardesk/solar-crm-backend/internal/auth"
	"github.com/solardesk/solar-crm-backend/internal/bootstrap"
	"github.com/solardesk/solar-crm-backend/internal/complaints"
	"github.com/solardesk/solar-crm-backend/internal/demo"
	"github.com/solardesk/solar-crm-backend/internal/inventory"
	"github.com/solardesk/solar-crm-backend/internal/invoices"
	"github.com/solardesk/solar-crm-backend/internal/jobs"
	"github.com/solardesk/solar-crm-backend/internal/leads"
	"github.com/solardesk/solar-crm-backend/internal/migrate"
	"github.com/solardesk/solar-crm-backend/internal/projects"
	"github.com/solardesk/solar-crm-backend/internal/users"
)

const serviceName = "solar-crm-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	dep := bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		Mode:        cfg.App.Mode,
	}

	var rdb *redis.Client

	switch cfg.App.Mode {
	case config.ModeDemo:
		mr, client, err := demo.Start()
		if err != nil {
			log.Fatalf("demo mode: %v", err)
		}
		defer mr.Close()
		defer client.Close()

		stores := demo.NewStores(client)
		if err := stores.Seed(ctx); err != nil {
			log.Fatalf("demo seed: %v", err)
		}
		log.Println("Demo mode: embedded store seeded, header identity enabled")

		rdb = client
		dep.Stores = bootstrap.Stores{
			Users:      stores.Users,
			Projects:   stores.Projects,
			Inventory:  stores.Inventory,
			Leads:      stores.Leads,
			Complaints: stores.Complaints,
			Invoices:   stores.Invoices,
		}

	case config.ModeProduction:
		if cfg.App.Migrate {
			if err := migrate.Run(ctx, cfg.Database.DSN()); err != nil {
				log.Fatalf("migrate: %v", err)
			}
		}

		pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
			DSN:      cfg.Database.DSN(),
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()

		authClient, err := auth.InitializeFirebase(ctx, cfg.Firebase)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}

		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: redis unavailable (%v), dashboard counters disabled", err)
			rdb = nil
		}

		dep.DB = pool
		dep.AuthClient = authClient
		dep.Stores = bootstrap.Stores{
			Users:      users.NewRepo(pool),
			Projects:   projects.NewRepo(pool),
			Inventory:  inventory.NewRepo(pool),
			Leads:      leads.NewRepo(pool),
			Complaints: complaints.NewRepo(pool),
			Invoices:   invoices.NewRepo(pool),
		}
	}

	scheduler := jobs.NewScheduler(dep.Stores.Invoices, dep.Stores.Projects, rdb)
	scheduler.Start()
	defer scheduler.Stop()

	r := bootstrap.BuildRouter(dep)
	log.Printf("%s listening on :%s (mode=%s)", serviceName, cfg.Server.Port, cfg.App.Mode)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
