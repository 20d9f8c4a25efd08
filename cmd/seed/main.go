// Command seed assigns randomized credibility scores, ranks and expertise
// domains to existing users. Development tooling only: it rewrites live
// scores and is therefore gated behind an explicit flag.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"

	"github.com/crediforum/crediforum-go/internal/config"
	"github.com/crediforum/crediforum-go/internal/db"
	"github.com/crediforum/crediforum-go/internal/repository"
)

var researchDomains = []string{
	"Computer Science",
	"Biology",
	"Physics",
	"Mathematics",
	"Chemistry",
	"Psychology",
	"Economics",
	"Engineering",
	"Medicine",
	"Philosophy",
}

func main() {
	apply := flag.Bool("apply", false, "actually rewrite user credibility scores")
	flag.Parse()

	if !*apply {
		log.Fatal("refusing to overwrite live credibility scores without -apply")
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, `SELECT id FROM users`)
	if err != nil {
		log.Fatalf("list users: %v", err)
	}
	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			log.Fatalf("scan user: %v", err)
		}
		userIDs = append(userIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		log.Fatalf("list users: %v", err)
	}

	log.Printf("found %d users to update", len(userIDs))

	for _, id := range userIDs {
		// Random credibility score between 1 and 50
		score := 1 + rand.Float64()*49

		// Assign 1-3 random research domains
		n := rand.Intn(3) + 1
		expertise := make([]string, 0, n)
		for _, i := range rand.Perm(len(researchDomains))[:n] {
			expertise = append(expertise, researchDomains[i])
		}

		_, err := pool.Exec(ctx, `
			UPDATE users
			SET credibility_score = $2, expertise = $3, last_score_update = NOW()
			WHERE id = $1`,
			id, score, expertise)
		if err != nil {
			log.Fatalf("update user %s: %v", id, err)
		}
	}

	users := repository.NewUserRepo()
	updated, err := users.RecomputeRanks(ctx, pool)
	if err != nil {
		log.Fatalf("recompute ranks: %v", err)
	}

	log.Printf("seeded %d users, %d ranks updated", len(userIDs), updated)
}
