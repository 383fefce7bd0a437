package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"cineseat/internal/inventory"
	"cineseat/internal/layout"
	"cineseat/internal/sessions"
	"cineseat/internal/shared/config"
	"cineseat/internal/shared/database"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Cineseat Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedSessions(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Order matters due to foreign key constraints
	// Delete in reverse dependency order
	tables := []string{
		"tickets",
		"orders",
		"payment_intents",
		"cart_items",
		"carts",
		"seats",
		"sessions",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedSessions creates demo sessions with their expanded seat inventory.
func (s *Seeder) SeedSessions() error {
	ctx := context.Background()

	sessionRepo := sessions.NewRepository(s.db.GetPostgreSQL())
	seatRepo := inventory.NewRepository(s.db.GetPostgreSQL())

	demos := []sessions.Session{
		{
			MovieTitle: "Blade Runner 2049",
			Auditorium: "Auditorium 1",
			StartsAt:   time.Now().Add(24 * time.Hour).Truncate(time.Hour),
			BasePrice:  12.50,
			VIPPrice:   19.00,
			Layout: layout.Layout{
				RowsConfig: []layout.RowConfig{
					{Row: "A", SeatCount: 10},
					{Row: "B", SeatCount: 10},
					{Row: "C", SeatCount: 12},
					{Row: "D", SeatCount: 12},
					{Row: "E", SeatCount: 14},
				},
				VIPZones: []layout.VIPZone{
					{Rows: []string{"C", "D"}, From: 0.25, To: 0.75},
				},
				Accessible: map[string][]int{
					"A": {1, 2},
					"E": {13, 14},
				},
			},
		},
		{
			MovieTitle: "Paris, Texas",
			Auditorium: "Auditorium 2",
			StartsAt:   time.Now().Add(48 * time.Hour).Truncate(time.Hour),
			BasePrice:  10.00,
			VIPPrice:   10.00,
			Layout: layout.Layout{
				Rows: []layout.SeatSpec{
					{Row: "A", Number: 1},
					{Row: "A", Number: 2},
					{Row: "A", Number: 3, Type: layout.SeatTypeGap},
					{Row: "A", Number: 4},
					{Row: "B", Number: 1, Type: layout.SeatTypeWheelchair},
					{Row: "B", Number: 2},
					{Row: "B", Number: 3},
					{Row: "B", Number: 4},
				},
			},
		},
	}

	for i := range demos {
		sess := &demos[i]

		plans, err := layout.Expand(sess.Layout, sess.Prices())
		if err != nil {
			return fmt.Errorf("invalid layout for %q: %w", sess.MovieTitle, err)
		}

		if err := sessionRepo.Create(ctx, sess); err != nil {
			return fmt.Errorf("failed to create session %q: %w", sess.MovieTitle, err)
		}

		seats := make([]inventory.Seat, len(plans))
		for j, p := range plans {
			seats[j] = inventory.Seat{
				SessionID: sess.ID,
				Row:       p.Row,
				Number:    p.Number,
				SeatCode:  p.SeatCode,
				Type:      p.Type,
				Price:     p.Price,
				Status:    inventory.SeatAvailable,
			}
		}
		if err := seatRepo.CreateSeats(ctx, seats); err != nil {
			return fmt.Errorf("failed to create seats for %q: %w", sess.MovieTitle, err)
		}
		if err := sessionRepo.MarkSeatsGenerated(ctx, sess.ID); err != nil {
			return fmt.Errorf("failed to mark seats generated for %q: %w", sess.MovieTitle, err)
		}

		fmt.Printf("  Seeded session %q (%s) with %d seats\n", sess.MovieTitle, sess.ID, len(seats))
	}

	return nil
}
