package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// CLI flags
var (
	dsn       = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	promote   = flag.String("promote-admin", "", "Email of a profile to promote to admin")
	seedFacts = flag.Bool("seed-facts", false, "Seed the curated food_facts table")
	dryRun    = flag.Bool("dry-run", false, "Print the plan; no DB writes")
)

type foodFact struct {
	Name     string
	Benefits []string
	FunFact  string
}

// Curated copy shown alongside nutrition search results.
var facts = []foodFact{
	{"apple", []string{"Rich in antioxidants & flavonoids", "Supports heart health", "Aids digestion with soluble fiber"},
		"There are over 7,500 varieties of apples grown worldwide!"},
	{"banana", []string{"Great source of potassium", "Natural energy booster", "Supports muscle recovery"},
		"Bananas are technically berries, while strawberries are not!"},
	{"orange", []string{"Excellent source of Vitamin C", "Boosts immune system", "Promotes healthy skin"},
		"A single orange tree can produce up to 60,000 flowers!"},
	{"kiwi", []string{"Packed with Vitamin C & K", "Supports digestive health", "Rich in antioxidants"},
		"Kiwis contain more Vitamin C per ounce than most other fruits!"},
	{"grapes", []string{"Rich in resveratrol antioxidant", "Supports cardiovascular health", "Anti-inflammatory properties"},
		"It takes about 2.5 pounds of grapes to make one bottle of wine!"},
	{"strawberry", []string{"High in Vitamin C & manganese", "Supports brain health", "May help regulate blood sugar"},
		"Strawberries are the only fruit with seeds on the outside!"},
	{"mango", []string{"Rich in Vitamin A & C", "Boosts immunity", "Supports eye health"},
		"Mangoes are related to cashews and pistachios!"},
	{"peach", []string{"Good source of Vitamins A & C", "Supports skin health", "Aids digestion"},
		"Peaches are a member of the rose family!"},
	{"pineapple", []string{"Contains bromelain enzyme", "Anti-inflammatory benefits", "Supports immune function"},
		"A pineapple plant can take 2-3 years to produce a single fruit!"},
	{"blueberry", []string{"One of the highest antioxidant foods", "Supports brain health", "May lower blood pressure"},
		"Blueberries are one of the only natural foods that are truly blue!"},
	{"cherry", []string{"Rich in anti-inflammatory compounds", "Supports sleep quality", "Aids post-exercise recovery"},
		"The average cherry tree produces about 7,000 cherries per year!"},
	{"lemon", []string{"High in Vitamin C", "Aids digestion", "Natural detoxifier"},
		"Lemons contain more sugar than strawberries!"},
	{"tomato", []string{"Rich in lycopene", "Supports heart health", "Good source of Vitamin C"}, ""},
	{"carrot", []string{"Excellent source of beta-carotene", "Supports eye health", "Boosts immune system"}, ""},
	{"onion", []string{"Contains quercetin antioxidant", "Anti-inflammatory properties", "Supports heart health"}, ""},
}

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()

	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}
	if !*seedFacts && *promote == "" {
		fatalf("Nothing to do; pass --seed-facts and/or --promote-admin")
	}

	if *dryRun {
		if *seedFacts {
			fmt.Printf("Would upsert %d food facts\n", len(facts))
		}
		if *promote != "" {
			fmt.Printf("Would promote %s to admin\n", *promote)
		}
		fmt.Println("Dry run complete. No changes made.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	if *seedFacts {
		for _, f := range facts {
			_, err := db.ExecContext(ctx, `
				INSERT INTO tracking.food_facts (name, benefits, fun_fact)
				VALUES ($1, $2, $3)
				ON CONFLICT (name) DO UPDATE SET benefits = $2, fun_fact = $3`,
				f.Name, pq.Array(f.Benefits), f.FunFact)
			if err != nil {
				fatalf("upsert %s: %v", f.Name, err)
			}
		}
		fmt.Printf("Seeded %d food facts\n", len(facts))
	}

	if *promote != "" {
		res, err := db.ExecContext(ctx,
			`UPDATE accounts.profiles SET role = 'admin' WHERE email = $1`, *promote)
		if err != nil {
			fatalf("promote: %v", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			fatalf("no profile found for %s", *promote)
		}
		fmt.Printf("Promoted %s to admin\n", *promote)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
