package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// The Postgres repos name their columns in SQL literals, so a column
// missing from the migration only surfaces at runtime. These checks keep
// the DDL and the repo column lists from drifting apart.

func readSchema(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	return string(data)
}

// tableDDL extracts one CREATE TABLE block from the migration.
func tableDDL(t *testing.T, schema, table string) string {
	t.Helper()
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(schema, marker)
	if start < 0 {
		t.Fatalf("table %s not in migration", table)
	}
	rest := schema[start:]
	end := strings.Index(rest, ");")
	if end < 0 {
		t.Fatalf("unterminated DDL for %s", table)
	}
	return rest[:end]
}

func TestSchemaCoversCampaignColumns(t *testing.T) {
	ddl := tableDDL(t, readSchema(t), "campaigns")

	for _, col := range strings.Split(campaignColumns, ",") {
		col = strings.TrimSpace(col)
		if !strings.Contains(ddl, col) {
			t.Fatalf("campaigns DDL missing column %q", col)
		}
	}
}

func TestSchemaCoversConnectionColumns(t *testing.T) {
	ddl := tableDDL(t, readSchema(t), "ad_account_connections")

	for _, col := range strings.Split(connectionColumns, ",") {
		col = strings.TrimSpace(col)
		if !strings.Contains(ddl, col) {
			t.Fatalf("ad_account_connections DDL missing column %q", col)
		}
	}
}

func TestSchemaOptionalColumnsNullable(t *testing.T) {
	schema := readSchema(t)

	// Optional model fields are pointers; their columns must accept NULL.
	optional := map[string][]string{
		"campaigns":              {"daily_budget", "lifetime_budget", "start_date", "end_date"},
		"campaign_metrics":       {"frequency", "reach", "video_views", "engagement_rate"},
		"ad_account_connections": {"last_sync_at", "refresh_token"},
		"users":                  {"company_name"},
		"ai_insights":            {"campaign_id", "connection_id", "objective", "metadata"},
	}

	for table, cols := range optional {
		ddl := tableDDL(t, schema, table)
		for _, line := range strings.Split(ddl, "\n") {
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			for _, col := range cols {
				if fields[0] == col && strings.Contains(line, "NOT NULL") {
					t.Fatalf("%s.%s must be nullable: %q", table, col, strings.TrimSpace(line))
				}
			}
		}
	}
}
