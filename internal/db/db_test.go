package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both partners of a shared brokerage account hold their own link row,
// one per role. A blanket unique index on the account id would reject
// the second partner's link and strand the approval flow.
func TestAccountLinksSchemaAllowsSharedAccount(t *testing.T) {
	var ddl string
	for _, stmt := range migrations {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS account_links") {
			ddl = stmt
		}
	}
	require.NotEmpty(t, ddl)

	assert.Contains(t, ddl, "UNIQUE (brokerage_account_id, role)")
	assert.NotContains(t, ddl, "brokerage_account_id TEXT NOT NULL UNIQUE")
}
