package assist

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/garagehq/servicebot/internal/pricing"
)

// systemPrompt frames the summarizer as a garage service desk assistant.
// It is identical for every query, which makes it a good cache target.
const systemPrompt = `You are a service desk assistant for a vehicle garage. You answer customer questions about service pricing using only the pricing records provided in the message.

Rules:
- Quote prices exactly as they appear in the records, including the currency symbol.
- When several records match, compare them briefly rather than listing every field.
- When the records do not cover what the customer asked, say so plainly. Never invent a price.
- Keep the answer short and conversational. No markdown headings.`

// buildPrompt renders the matched records as indented JSON under the
// customer's question. JSON keeps column names attached to values, which
// plain prose formatting loses.
func buildPrompt(query string, records []pricing.Record) (string, error) {
	rows := make([]map[string]string, len(records))
	for i, rec := range records {
		rows[i] = rec.Fields()
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", eris.Wrap(err, "assist: marshal pricing records")
	}

	return fmt.Sprintf("Customer question: %s\n\nMatching pricing records:\n%s", query, data), nil
}
