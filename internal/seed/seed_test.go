package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepartments_Embedded(t *testing.T) {
	departments, err := Departments()
	require.NoError(t, err)
	require.Len(t, departments, 11)

	names := make([]string, 0, len(departments))
	for _, d := range departments {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.LoginKey)
	}
	assert.Contains(t, names, "POLICE")
	assert.Contains(t, names, "PUBLIC_WORKS")
	assert.Contains(t, names, "GENERAL")
}

func TestParseDepartments_Validation(t *testing.T) {
	cases := map[string]string{
		"bad version":   "version: 2\ndepartments: []\n",
		"missing key":   "version: 1\ndepartments:\n  - name: POLICE\n",
		"dup name":      "version: 1\ndepartments:\n  - {name: POLICE, login_key: a}\n  - {name: police, login_key: b}\n",
		"dup login key": "version: 1\ndepartments:\n  - {name: POLICE, login_key: a}\n  - {name: FIRE, login_key: a}\n",
		"not yaml":      "version: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseDepartments([]byte(raw))
			assert.Error(t, err)
		})
	}
}
