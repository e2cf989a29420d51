package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/AchilleasB/campus-library/library-service/internal/adapters/repository"
	"github.com/AchilleasB/campus-library/library-service/internal/adapters/scheduler"
	"github.com/AchilleasB/campus-library/library-service/internal/config"
	"github.com/AchilleasB/campus-library/library-service/internal/core/domain"
	"github.com/AchilleasB/campus-library/library-service/internal/core/services"
)

const usage = "expected 'migrate', 'add-user' or 'sweep-reservations' subcommand"

func main() {
	addUserCmd := flag.NewFlagSet("add-user", flag.ExitOnError)
	username := addUserCmd.String("username", "", "Username for the new user")
	email := addUserCmd.String("email", "", "Email address")
	name := addUserCmd.String("name", "", "Display name")
	password := addUserCmd.String("password", "", "Password for the new user")
	role := addUserCmd.String("role", string(domain.RoleAdmin), "Role: student, teacher, staff or admin")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "migrate":
		db := openDB()
		defer db.Close()
		if err := repository.Migrate(ctx, db); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
		fmt.Println("Database is up to date.")

	case "add-user":
		addUserCmd.Parse(os.Args[2:])
		if *username == "" || *password == "" || *email == "" {
			fmt.Println("username, email and password are required")
			addUserCmd.PrintDefaults()
			os.Exit(1)
		}
		if *name == "" {
			*name = *username
		}
		db := openDB()
		defer db.Close()
		createUser(ctx, db, domain.NewUser{
			Username: *username,
			Email:    *email,
			Name:     *name,
			Password: *password,
			Role:     domain.Role(*role),
		})

	case "sweep-reservations":
		db := openDB()
		defer db.Close()
		reservations := services.NewReservationService(repository.NewSQLRepository(db), config.LoadRules())
		n, err := scheduler.NewReservationSweeper(reservations, 0).Sweep(ctx)
		if err != nil {
			log.Fatalf("Sweep failed after %d reservations: %v", n, err)
		}
		fmt.Printf("Expired %d reservations.\n", n)

	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

func openDB() *sql.DB {
	dbURL := os.Getenv("DB_CONNECTION_STRING")
	if dbURL == "" {
		log.Fatal("DB_CONNECTION_STRING environment variable is required")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return db
}

func createUser(ctx context.Context, db *sql.DB, input domain.NewUser) {
	users := services.NewUserService(repository.NewSQLRepository(db), nil)
	user, err := users.CreateUser(ctx, input)
	if err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}
	fmt.Printf("User '%s' (%s) created with id %s.\n", user.Username, user.Role, user.ID)
}
