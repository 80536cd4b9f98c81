// Package table implements the repositories on the single-table layout.
//
// Row kinds and their keys:
//
//	USER#<userID>     PROFILE                     account + balance
//	USER#<userID>     CREDIT#<timestamp>#<rand8>  ledger entry
//	USER#<userID>     LIKE#PROMPT#<promptID>      like record
//	USER#<userID>     BOOKMARK#PROMPT#<promptID>  bookmark record
//	PROMPT#<promptID> METADATA                    listing + counters
//	PROMPT#<promptID> COMMENT#<timestamp>#<rand8> comment
package table

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"fromprom-backend/internal/domain"
)

const (
	userPKPrefix   = "USER#"
	promptPKPrefix = "PROMPT#"

	// SKProfile and SKMetadata are the sentinel sort keys of the two
	// partition root rows.
	SKProfile  = "PROFILE"
	SKMetadata = "METADATA"

	// SKCreditPrefix and SKCommentPrefix head the time-ordered rows.
	SKCreditPrefix  = "CREDIT#"
	SKCommentPrefix = "COMMENT#"
)

// Row type discriminator attribute and its values.
const (
	AttrType = "type"

	TypeUser        = "USER"
	TypePrompt      = "PROMPT"
	TypeCredit      = "CREDIT"
	TypeInteraction = "INTERACTION"
	TypeComment     = "COMMENT"
)

// Shared item attribute names.
const (
	attrCreatedAt = "created_at"
	attrUpdatedAt = "updated_at"
)

// Timestamps inside sort keys use a fixed-width fraction so that
// lexicographic order is chronological order.
const skTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func UserPK(userID string) string { return userPKPrefix + userID }

func PromptPK(promptID string) string { return promptPKPrefix + promptID }

func UserIDFromPK(pk string) (string, bool) {
	return strings.CutPrefix(pk, userPKPrefix)
}

func PromptIDFromPK(pk string) (string, bool) {
	return strings.CutPrefix(pk, promptPKPrefix)
}

func CreditSK(at time.Time) string {
	return SKCreditPrefix + at.UTC().Format(skTimeFormat) + "#" + shortID()
}

func CommentSK(at time.Time) string {
	return SKCommentPrefix + at.UTC().Format(skTimeFormat) + "#" + shortID()
}

// InteractionSKPrefix returns "LIKE#PROMPT#" or "BOOKMARK#PROMPT#".
// The prompt key prefix inside the sort key is part of the stored
// format; other readers of the table depend on it.
func InteractionSKPrefix(kind domain.InteractionKind) string {
	return string(kind) + "#" + promptPKPrefix
}

func InteractionSK(kind domain.InteractionKind, promptID string) string {
	return InteractionSKPrefix(kind) + promptID
}

// ParseInteractionSK recognizes like and bookmark sort keys and extracts
// the prompt id.
func ParseInteractionSK(sk string) (domain.InteractionKind, string, bool) {
	for _, kind := range []domain.InteractionKind{domain.InteractionLike, domain.InteractionBookmark} {
		if id, ok := strings.CutPrefix(sk, InteractionSKPrefix(kind)); ok {
			return kind, id, true
		}
	}
	return "", "", false
}

func shortID() string {
	return uuid.NewString()[:8]
}
