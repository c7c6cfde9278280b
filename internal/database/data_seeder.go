package database

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/locvowork/employee_graphql_sample/internal/domain"
	"github.com/locvowork/employee_graphql_sample/internal/logger"
	"github.com/locvowork/employee_graphql_sample/pkg/dataflow"
)

// SeedFile is the YAML layout read by the seeder.
type SeedFile struct {
	Departments []SeedDepartment `yaml:"departments"`
}

type SeedDepartment struct {
	Name      string         `yaml:"name"`
	Employees []SeedEmployee `yaml:"employees"`
}

type SeedEmployee struct {
	Name   string `yaml:"name"`
	Salary string `yaml:"salary"`
}

type SeedPreset string

const (
	PresetSmall  SeedPreset = "small"
	PresetMedium SeedPreset = "medium"
	PresetLarge  SeedPreset = "large"
)

var (
	departmentNames = []string{"Engineering", "Operations", "Finance", "Sales", "Marketing", "Legal", "Support", "Research", "People", "Security"}
	firstNames      = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi", "Ivan", "Judy"}
)

// GetPresetConfig returns the department count and employees per department of a preset.
func GetPresetConfig(preset SeedPreset) (numDepartments, numEmployees int) {
	switch preset {
	case PresetSmall:
		return 3, 5
	case PresetMedium:
		return 5, 50
	case PresetLarge:
		return 10, 500
	default:
		return 3, 5
	}
}

// LoadSeedFile decodes a YAML seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	var seed SeedFile
	if err := yaml.NewDecoder(f).Decode(&seed); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &seed, nil
}

// GenerateSeed builds a synthetic seed with random salaries.
func GenerateSeed(numDepartments, numEmployees int) *SeedFile {
	if numDepartments > len(departmentNames) {
		numDepartments = len(departmentNames)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	seed := &SeedFile{}
	for d := 0; d < numDepartments; d++ {
		dept := SeedDepartment{Name: departmentNames[d]}
		for e := 1; e <= numEmployees; e++ {
			dept.Employees = append(dept.Employees, SeedEmployee{
				Name:   fmt.Sprintf("%s %d", firstNames[rng.Intn(len(firstNames))], e),
				Salary: strconv.Itoa(3000 + rng.Intn(7000)),
			})
		}
		seed.Departments = append(seed.Departments, dept)
	}
	return seed
}

type DataSeeder struct {
	employees   domain.EmployeeRepository
	departments domain.DepartmentRepository
	workers     int
}

func NewDataSeeder(employees domain.EmployeeRepository, departments domain.DepartmentRepository, workers int) *DataSeeder {
	if workers <= 0 {
		workers = 1
	}
	return &DataSeeder{employees: employees, departments: departments, workers: workers}
}

// SeedData saves the departments of seed, then their employees through a worker pipeline.
// It returns the number of employees saved; blank entries and failed saves are logged and skipped.
func (ds *DataSeeder) SeedData(ctx context.Context, seed *SeedFile) (int, error) {
	start := time.Now()

	var pending []domain.Employee
	for _, sd := range seed.Departments {
		dept, err := ds.departments.Save(ctx, &domain.Department{Name: sd.Name})
		if err != nil {
			return 0, fmt.Errorf("save department %q: %w", sd.Name, err)
		}
		for _, se := range sd.Employees {
			departmentID := dept.ID
			pending = append(pending, domain.Employee{Name: se.Name, Salary: se.Salary, DepartmentID: &departmentID})
		}
	}
	logger.InfoLog(ctx, "Seeded %d departments, saving %d employees", len(seed.Departments), len(pending))

	var skipped, failed int32
	complete := dataflow.Filter(ctx, dataflow.From(ctx, pending...), func(e domain.Employee) bool {
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Salary) == "" {
			atomic.AddInt32(&skipped, 1)
			logger.WarnLog(ctx, "Skipping seed employee %q with salary %q", e.Name, e.Salary)
			return false
		}
		return true
	})

	saved := dataflow.Map(ctx, complete, func(e domain.Employee) (*domain.Employee, error) {
		return ds.employees.Save(ctx, &e)
	},
		dataflow.WithWorkers(ds.workers),
		dataflow.WithBufferSize(ds.workers),
		dataflow.WithRetry(3, func(attempt int) time.Duration { return time.Duration(attempt) * 100 * time.Millisecond }),
		dataflow.WithErrorHandler(func(err error) bool {
			atomic.AddInt32(&failed, 1)
			logger.WarnLog(ctx, "Failed to save employee: %v", err)
			return true
		}),
	)

	count := 0
	err := dataflow.ForEach(ctx, saved, func(*domain.Employee) error {
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	logger.InfoLog(ctx, "Saved %d employees (%d skipped, %d failed) in %s",
		count, atomic.LoadInt32(&skipped), atomic.LoadInt32(&failed), time.Since(start))
	return count, nil
}
