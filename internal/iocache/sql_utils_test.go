package iocache

import (
	"testing"
	"time"

	"github.com/huangsam/branchspot/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name      string
		tableName string
		wantErr   bool
	}{
		{"simple", "branch_cache", false},
		{"leading underscore", "_tmp", false},
		{"digits", "runs_2024", false},
		{"empty", "", true},
		{"leading digit", "1table", true},
		{"hyphen", "branch-cache", true},
		{"space", "branch cache", true},
		{"injection", "x; DROP TABLE y", true},
		{"quote", `x"y`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.tableName)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`branch_cache`", quoteTableName("branch_cache", schema.MySQLBackend))
	assert.Equal(t, `"branch_cache"`, quoteTableName("branch_cache", schema.PostgreSQLBackend))
	assert.Equal(t, `"branch_cache"`, quoteTableName("branch_cache", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "?, ?, ?", placeholders(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3", placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, "$4", placeholder(schema.PostgreSQLBackend, 4))
}

func TestDriverFor(t *testing.T) {
	for backend, want := range map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	} {
		got, err := driverFor(backend)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := driverFor(schema.NoneBackend)
	assert.Error(t, err)
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 500, time.UTC)
	assert.Equal(t, "2024-06-01T12:00:00.0000005Z", formatTime(ts, schema.SQLiteBackend))
	assert.Equal(t, ts, formatTime(ts, schema.PostgreSQLBackend))
	assert.Nil(t, formatOptionalTime(nil, schema.SQLiteBackend))
}

func TestTimeScanner(t *testing.T) {
	want := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		src   any
		valid bool
	}{
		{"nil", nil, false},
		{"time", want, true},
		{"rfc3339 string", "2024-06-01T12:00:00Z", true},
		{"mysql bytes", []byte("2024-06-01 12:00:00.000000"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts timeScanner
			require.NoError(t, ts.Scan(tt.src))
			assert.Equal(t, tt.valid, ts.Valid)
			if tt.valid {
				assert.True(t, want.Equal(ts.Time))
				require.NotNil(t, ts.ptr())
			} else {
				assert.Nil(t, ts.ptr())
			}
		})
	}

	var ts timeScanner
	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(42))
}
