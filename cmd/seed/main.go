// Package main provides a tool to seed the database with sample data.
//
// This creates users, tags, certificates, and a batch of orders so filter,
// sort, and most-used-tag queries have something to chew on.
//
// Usage:
//
//	go run ./cmd/seed -db-path ~/giftcert/giftcert.db
//	go run ./cmd/seed -db-path ~/giftcert/giftcert.db -backend orm
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	"github.com/Vyacheslaf/giftcert-server/internal/store"
	"github.com/Vyacheslaf/giftcert-server/internal/store/gormstore"
	"github.com/Vyacheslaf/giftcert-server/internal/store/sqlite"
)

var (
	dbPath  = flag.String("db-path", "", "Path to the SQLite database file")
	backend = flag.String("backend", "sql", "Persistence backend (sql, orm)")
	users   = flag.Int("users", 5, "Number of users to create")
	certs   = flag.Int("certs", 20, "Number of certificates to create")
	orders  = flag.Int("orders", 40, "Number of orders to create")
)

var tagNames = []string{
	"spa", "adventure", "dining", "wellness", "travel",
	"family", "romantic", "outdoor", "luxury", "weekend",
}

var certThemes = []string{
	"Spa Day", "River Cruise", "Wine Tasting", "Hot Air Balloon Ride",
	"Cooking Class", "Weekend Getaway", "Theater Night", "Scuba Lesson",
	"Photography Workshop", "Mountain Hike",
}

func main() {
	flag.Parse()

	path := *dbPath
	if path == "" {
		path = os.ExpandEnv("$HOME/giftcert/giftcert.db")
	}

	fmt.Printf("Opening %s database at: %s\n", *backend, path)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var (
		s   store.Store
		err error
	)
	switch *backend {
	case "sql":
		s, err = sqlite.Open(path, logger)
	case "orm":
		s, err = gormstore.Open(path, logger)
	default:
		log.Fatalf("Unknown backend %q (must be sql or orm)", *backend)
	}
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	seededUsers := seedUsers(ctx, s, *users)
	fmt.Printf("Created %d users\n", len(seededUsers))

	seededCerts := seedCertificates(ctx, s, rng, *certs)
	fmt.Printf("Created %d certificates\n", len(seededCerts))

	created := seedOrders(ctx, s, rng, seededUsers, seededCerts, *orders)
	fmt.Printf("Created %d orders\n", created)

	fmt.Println("Done")
}

func seedUsers(ctx context.Context, s store.Store, n int) []*domain.User {
	out := make([]*domain.User, 0, n)
	for i := 1; i <= n; i++ {
		u := &domain.User{
			Username: fmt.Sprintf("user%d", i),
			Email:    fmt.Sprintf("user%d@example.com", i),
		}
		if err := s.CreateUser(ctx, u); err != nil {
			log.Printf("Skipping user %s: %v", u.Username, err)
			continue
		}
		out = append(out, u)
	}
	return out
}

func seedCertificates(ctx context.Context, s store.Store, rng *rand.Rand, n int) []*domain.Certificate {
	out := make([]*domain.Certificate, 0, n)
	for i := 1; i <= n; i++ {
		theme := certThemes[rng.Intn(len(certThemes))]

		// Pick 1-3 distinct tags.
		numTags := 1 + rng.Intn(3)
		picked := rng.Perm(len(tagNames))[:numTags]
		tags := make([]domain.Tag, 0, numTags)
		for _, idx := range picked {
			tags = append(tags, domain.Tag{Name: tagNames[idx]})
		}

		c := &domain.Certificate{
			Name:        fmt.Sprintf("%s #%d", theme, i),
			Description: fmt.Sprintf("Gift certificate for a %s experience", theme),
			Price:       int64(1000 + rng.Intn(20)*500),
			Duration:    int64(30 + rng.Intn(6)*30),
			Tags:        tags,
		}
		if err := s.CreateCertificate(ctx, c); err != nil {
			log.Printf("Skipping certificate %s: %v", c.Name, err)
			continue
		}
		out = append(out, c)
	}
	return out
}

func seedOrders(ctx context.Context, s store.Store, rng *rand.Rand, users []*domain.User, certs []*domain.Certificate, n int) int {
	if len(users) == 0 || len(certs) == 0 {
		return 0
	}

	created := 0
	for i := 0; i < n; i++ {
		o := &domain.Order{
			UserID:        users[rng.Intn(len(users))].ID,
			CertificateID: certs[rng.Intn(len(certs))].ID,
		}
		if err := s.CreateOrder(ctx, o); err != nil {
			log.Printf("Skipping order: %v", err)
			continue
		}
		created++
	}
	return created
}
