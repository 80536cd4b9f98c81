package table_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fromprom-backend/internal/domain"
	"fromprom-backend/internal/repository/table"
)

func TestCreditSKOrdering(t *testing.T) {
	// Lexicographic order must track chronological order even when the
	// fractional part is short; a trimmed format would break at second
	// boundaries.
	earlier := time.Date(2026, 3, 1, 12, 0, 1, 500_000_000, time.UTC)
	later := time.Date(2026, 3, 1, 12, 0, 10, 0, time.UTC)

	a := table.CreditSK(earlier)
	b := table.CreditSK(later)
	assert.Less(t, a, b)
}

func TestInteractionSKFormat(t *testing.T) {
	// The stored form nests the prompt key inside the sort key.
	assert.Equal(t, "LIKE#PROMPT#p1", table.InteractionSK(domain.InteractionLike, "p1"))
	assert.Equal(t, "BOOKMARK#PROMPT#p1", table.InteractionSK(domain.InteractionBookmark, "p1"))
}

func TestParseInteractionSK(t *testing.T) {
	kind, promptID, ok := table.ParseInteractionSK("LIKE#PROMPT#p123")
	require.True(t, ok)
	assert.Equal(t, domain.InteractionLike, kind)
	assert.Equal(t, "p123", promptID)

	kind, promptID, ok = table.ParseInteractionSK("BOOKMARK#PROMPT#p456")
	require.True(t, ok)
	assert.Equal(t, domain.InteractionBookmark, kind)
	assert.Equal(t, "p456", promptID)

	_, _, ok = table.ParseInteractionSK("PROFILE")
	assert.False(t, ok)
	_, _, ok = table.ParseInteractionSK("CREDIT#2026-01-01")
	assert.False(t, ok)
	// A like key missing the nested prompt prefix is not recognized.
	_, _, ok = table.ParseInteractionSK("LIKE#p123")
	assert.False(t, ok)
}

func TestPKRoundTrip(t *testing.T) {
	id, ok := table.UserIDFromPK(table.UserPK("u1"))
	require.True(t, ok)
	assert.Equal(t, "u1", id)

	id, ok = table.PromptIDFromPK(table.PromptPK("p1"))
	require.True(t, ok)
	assert.Equal(t, "p1", id)

	_, ok = table.UserIDFromPK("PROMPT#p1")
	assert.False(t, ok)
}
