package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shenikar/city_alert/internal/models"
)

//go:embed departments.yaml
var departmentsYAML []byte

type departmentsFile struct {
	Version     int `yaml:"version"`
	Departments []struct {
		Name     string `yaml:"name"`
		LoginKey string `yaml:"login_key"`
	} `yaml:"departments"`
}

// Departments возвращает список департаментов по умолчанию
func Departments() ([]models.Department, error) {
	return parseDepartments(departmentsYAML)
}

func parseDepartments(raw []byte) ([]models.Department, error) {
	var file departmentsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse department seed: %w", err)
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("unsupported department seed version %d", file.Version)
	}

	names := make(map[string]struct{}, len(file.Departments))
	keys := make(map[string]struct{}, len(file.Departments))
	departments := make([]models.Department, 0, len(file.Departments))
	for _, d := range file.Departments {
		name := strings.ToUpper(strings.TrimSpace(d.Name))
		if name == "" || d.LoginKey == "" {
			return nil, fmt.Errorf("department seed entry %q is incomplete", d.Name)
		}
		if _, dup := names[name]; dup {
			return nil, fmt.Errorf("duplicate department name %q in seed", name)
		}
		if _, dup := keys[d.LoginKey]; dup {
			return nil, fmt.Errorf("duplicate login key for %q in seed", name)
		}
		names[name] = struct{}{}
		keys[d.LoginKey] = struct{}{}
		departments = append(departments, models.Department{Name: name, LoginKey: d.LoginKey})
	}
	return departments, nil
}
