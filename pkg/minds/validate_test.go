package minds

import (
	"errors"
	"testing"

	"github.com/mindsdb/minds-go/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("name", "testds"))

	for _, name := range []string{"", "   "} {
		err := ValidateName("name", name)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Contains(t, err.Error(), "name")
	}
}

func TestValidateNonEmptyList(t *testing.T) {
	assert.NoError(t, ValidateNonEmptyList([]string{"ds1"}, "datasources"))

	err := ValidateNonEmptyList([]string(nil), "datasources")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "datasources")

	err = ValidateNonEmptyList([]string{}, "datasources")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateDatabaseConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*DatabaseConfig)
		invalid []string
	}{
		{"valid", func(*DatabaseConfig) {}, nil},
		{"tables are optional", func(c *DatabaseConfig) { c.Tables = nil }, nil},
		{"missing name", func(c *DatabaseConfig) { c.Name = "" }, []string{"name"}},
		{"missing engine", func(c *DatabaseConfig) { c.Engine = "" }, []string{"engine"}},
		{"missing description", func(c *DatabaseConfig) { c.Description = "" }, []string{"description"}},
		{"nil connection data", func(c *DatabaseConfig) { c.ConnectionData = nil }, []string{"connection_data"}},
		{"empty connection data", func(c *DatabaseConfig) { c.ConnectionData = map[string]any{} }, []string{"connection_data"}},
		{
			"everything but the name missing",
			func(c *DatabaseConfig) { *c = DatabaseConfig{Name: c.Name} },
			[]string{"engine", "description", "connection_data"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testDatabaseConfig("testds")
			tt.mutate(&cfg)
			err := ValidateDatabaseConfig(cfg)
			if tt.invalid == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			for _, field := range tt.invalid {
				assert.Contains(t, err.Error(), field)
			}
		})
	}
}

func TestValidateDatabaseConfigReportsFields(t *testing.T) {
	err := ValidateDatabaseConfig(DatabaseConfig{Name: "testds", Engine: "postgres"})
	var ves apperrors.ValidationErrors
	require.True(t, errors.As(err, &ves))
	assert.Equal(t, []string{"description", "connection_data"}, ves.Fields())
}
