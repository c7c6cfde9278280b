package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/locvowork/employee_graphql_sample/internal/bootstrap"
	"github.com/locvowork/employee_graphql_sample/internal/config"
	"github.com/locvowork/employee_graphql_sample/internal/database"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
)

func main() {
	// Define flags
	file := flag.String("file", "", "YAML seed file (overrides preset)")
	preset := flag.String("preset", "small", "Data preset: small, medium, large")
	departments := flag.Int("departments", 0, "Number of departments (overrides preset)")
	employees := flag.Int("employees", 0, "Number of employees per department (overrides preset)")
	workers := flag.Int("workers", 4, "Concurrent employee writers")

	flag.Parse()

	ctx := context.Background()

	fmt.Println("Employee Data Seeder")
	fmt.Println(strings.Repeat("=", 50))

	if err := config.LoadEnvConfig(); err != nil {
		log.Fatal(err)
	}
	logger.InitLogging(config.DefaultEnvConfig.LOG_FILE_PATH, config.DefaultEnvConfig.LOG_LEVEL)

	gateway, err := bootstrap.NewGateway(ctx, config.DefaultEnvConfig)
	if err != nil {
		logger.ErrorLog(ctx, "Failed to connect gateway: %v", err)
		log.Fatal(err)
	}
	defer gateway.Close()

	seed, err := buildSeed(*file, *preset, *departments, *employees)
	if err != nil {
		log.Fatal(err)
	}

	seeder := database.NewDataSeeder(gateway.Employees, gateway.Departments, *workers)
	count, err := seeder.SeedData(ctx, seed)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Printf("\nDone! %d employees in %d departments\n", count, len(seed.Departments))
}

func buildSeed(file, preset string, departments, employees int) (*database.SeedFile, error) {
	if file != "" {
		fmt.Printf("Using seed file: %s\n", file)
		return database.LoadSeedFile(file)
	}
	d, e := database.GetPresetConfig(database.SeedPreset(preset))
	if departments > 0 {
		d = departments
	}
	if employees > 0 {
		e = employees
	}
	fmt.Printf("Using preset %s: %d departments, %d employees each\n", preset, d, e)
	return database.GenerateSeed(d, e), nil
}
