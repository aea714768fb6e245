// Package resolve maps the free-text names of an expense claim onto group
// member ids. Matching is case-insensitive exact match against a member's
// display name or email, with no fuzzy matching. Resolution happens exactly
// once, before anything is written; downstream components only ever see
// opaque member ids.
package resolve

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/models"
)

// ParticipantNotInGroupError rejects a claim naming people who do not
// resolve to exactly one roster entry. Names carries every offending name
// (missing or ambiguous), deduplicated, in order of first appearance.
type ParticipantNotInGroupError struct {
	Names []string
}

func (e *ParticipantNotInGroupError) Error() string {
	return fmt.Sprintf("not in this group: %s", strings.Join(e.Names, ", "))
}

// Claim resolves every name in the claim against the roster.
//
// The payer defaults to the acting user when the claim names no payer; a
// payer that IS named but does not resolve is a hard failure, same as any
// participant. Resolution is all-or-nothing: one bad name rejects the whole
// claim, and the caller must not have written anything yet.
func Claim(claim *models.Claim, roster []models.Member, actingUserID string) (*models.ResolvedClaim, error) {
	index := rosterIndex(roster)

	var offending []string
	seen := make(map[string]bool)
	miss := func(name string) {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			offending = append(offending, name)
		}
	}

	participantIDs := make([]string, 0, len(claim.Participants))
	for _, name := range claim.Participants {
		id, ok := index.lookup(name)
		if !ok {
			miss(name)
			continue
		}
		participantIDs = append(participantIDs, id)
	}

	payerID := actingUserID
	if claim.Payer != "" {
		id, ok := index.lookup(claim.Payer)
		if !ok {
			miss(claim.Payer)
		} else {
			payerID = id
		}
	}

	if len(offending) > 0 {
		return nil, &ParticipantNotInGroupError{Names: offending}
	}

	var customByID map[string]decimal.Decimal
	if len(claim.CustomAmounts) > 0 {
		customByID = make(map[string]decimal.Decimal, len(claim.CustomAmounts))
		for name, amount := range claim.CustomAmounts {
			// Participants were all resolved above, so this cannot miss.
			if id, ok := index.lookup(name); ok {
				customByID[id] = amount
			}
		}
	}

	return &models.ResolvedClaim{
		Label:          claim.Label,
		PayerID:        payerID,
		ParticipantIDs: participantIDs,
		Total:          claim.Total,
		Mode:           claim.Mode,
		CustomAmounts:  customByID,
	}, nil
}

// index maps lowercased display names and emails to the member ids that
// carry them. A key held by more than one member is ambiguous and resolves
// to nothing.
type index map[string][]string

func rosterIndex(roster []models.Member) index {
	idx := make(index, len(roster)*2)
	add := func(key, id string) {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return
		}
		for _, existing := range idx[key] {
			if existing == id {
				return
			}
		}
		idx[key] = append(idx[key], id)
	}
	for _, m := range roster {
		add(m.Name, m.ID)
		add(m.Email, m.ID)
	}
	return idx
}

func (idx index) lookup(name string) (string, bool) {
	ids := idx[strings.ToLower(strings.TrimSpace(name))]
	if len(ids) != 1 {
		return "", false
	}
	return ids[0], true
}
