// Package extract calls the external natural-language extraction webhook
// and models its dynamically-shaped reply as a tagged variant. The chat
// flow treats anything that is not a well-formed expense claim as "not an
// expense": the underlying message is always recorded either way, and an
// unreachable or slow extractor degrades the message to plain text instead
// of blocking it.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitchat/internal/models"
)

// ErrUnavailable wraps any transport failure, non-2xx status, or undecodable
// body from the extraction service.
var ErrUnavailable = errors.New("extraction service unavailable")

// Kind tags the shape of an extraction outcome.
type Kind int

const (
	// KindUnrecognized covers every reply that is not one of the known
	// shapes. The message is recorded as plain text.
	KindUnrecognized Kind = iota

	// KindClaim is a structured expense claim with lenders and borrowers.
	KindClaim

	// KindCategory is a bare category classification with no expense.
	KindCategory

	// KindSavingsGoal is a savings-goal progress update. Goal tracking is
	// outside the ledger; the chat flow logs it and records plain text.
	KindSavingsGoal
)

// Outcome is the tagged variant of a webhook reply. Exactly the fields for
// the tagged Kind are populated.
type Outcome struct {
	Kind Kind

	// Claim is set for KindClaim.
	Claim *models.Claim

	// Label is set for KindCategory.
	Label string

	// Goal and GoalAmount are set for KindSavingsGoal.
	Goal       string
	GoalAmount decimal.Decimal
}

// Extractor is the interface the chat service depends on, so tests can
// substitute canned outcomes for the HTTP client.
type Extractor interface {
	Extract(ctx context.Context, text string) (Outcome, error)
}

// Client calls the extraction webhook over HTTP.
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a webhook client. timeout bounds the whole call; an
// expired timeout surfaces as ErrUnavailable, never as a hang.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// The webhook receives a prompt embedding the raw message and replies with
// bare JSON. This mirrors the shape the n8n workflow expects.
const promptFormat = `Extract transaction details from: %q

Return ONLY JSON:
{
  "label": "string",
  "Lenders": [{ "name": "string", "amountLent": number }],
  "Borrowers": [{ "name": "string", "amountBorrowed": number }]
}`

type party struct {
	Name           string          `json:"name"`
	AmountLent     decimal.Decimal `json:"amountLent"`
	AmountBorrowed decimal.Decimal `json:"amountBorrowed"`
}

// webhookReply is the superset of every reply shape the service is known to
// produce; classify picks the variant from which fields are populated.
type webhookReply struct {
	Error     string          `json:"error"`
	Label     string          `json:"label"`
	Lenders   []party         `json:"Lenders"`
	Borrowers []party         `json:"Borrowers"`
	Goal      string          `json:"goal"`
	Amount    decimal.Decimal `json:"amount"`
}

// Extract posts the message text to the webhook and classifies the reply.
func (c *Client) Extract(ctx context.Context, text string) (Outcome, error) {
	body, err := json.Marshal(map[string]string{
		"prompt": fmt.Sprintf(promptFormat, text),
	})
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Outcome{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var reply webhookReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return classify(reply), nil
}

// classify maps a decoded reply onto the variant it represents. An explicit
// error field, or any shape that is none of the known ones, is Unrecognized.
func classify(reply webhookReply) Outcome {
	if reply.Error != "" {
		return Outcome{Kind: KindUnrecognized}
	}

	if len(reply.Lenders) > 0 || len(reply.Borrowers) > 0 {
		if claim := buildClaim(reply); claim != nil {
			return Outcome{Kind: KindClaim, Claim: claim}
		}
		return Outcome{Kind: KindUnrecognized}
	}

	if reply.Goal != "" {
		return Outcome{Kind: KindSavingsGoal, Goal: reply.Goal, GoalAmount: reply.Amount}
	}

	if reply.Label != "" {
		return Outcome{Kind: KindCategory, Label: reply.Label}
	}

	return Outcome{Kind: KindUnrecognized}
}

// buildClaim maps lenders/borrowers onto a Claim: the total is the sum of
// what the lenders lent, the payer is the first lender's name (empty means
// the acting user), and the participants are the named borrowers. When
// every borrower carries a positive amount the split is custom with those
// amounts verbatim; otherwise it is an equal split. No borrowers at all is
// a personal expense with no split.
func buildClaim(reply webhookReply) *models.Claim {
	total := decimal.Zero
	for _, lender := range reply.Lenders {
		total = total.Add(lender.AmountLent)
	}
	if !total.IsPositive() {
		return nil
	}

	var payer string
	if len(reply.Lenders) > 0 {
		payer = reply.Lenders[0].Name
	}

	participants := make([]string, 0, len(reply.Borrowers))
	custom := make(map[string]decimal.Decimal, len(reply.Borrowers))
	allAmounts := true
	for _, b := range reply.Borrowers {
		if b.Name == "" {
			continue
		}
		participants = append(participants, b.Name)
		if b.AmountBorrowed.IsPositive() {
			custom[b.Name] = b.AmountBorrowed
		} else {
			allAmounts = false
		}
	}

	claim := &models.Claim{
		Label:        reply.Label,
		Payer:        payer,
		Participants: participants,
		Total:        total,
	}

	switch {
	case len(participants) == 0:
		claim.Mode = models.SplitNone
	case allAmounts:
		claim.Mode = models.SplitCustom
		claim.CustomAmounts = custom
	default:
		claim.Mode = models.SplitEqual
	}
	return claim
}
