package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Price is a single parsed price cell. Raw keeps the value exactly as it
// appeared in the spreadsheet so answers can quote it verbatim.
type Price struct {
	Raw      string
	Amount   decimal.Decimal
	Currency string
}

// Record is one row of a service pricing table. Spreadsheet layouts vary
// between tables, so beyond the identity fields every column is kept under
// its original header: parsable prices are grouped into interval columns
// ("12 Months", "24,000 Miles") and named service columns ("Interim
// Service", "MOT"), everything else lands in Extra verbatim.
type Record struct {
	Model     string
	Engine    string
	Services  map[string]Price
	Intervals map[string]Price
	Extra     map[string]string
}

// Set assigns a trimmed header/value pair to the matching field family.
func (r *Record) Set(header, value string) {
	lower := strings.ToLower(header)
	switch {
	case lower == "model":
		r.Model = value
		return
	case strings.Contains(lower, "engine"):
		r.Engine = value
		return
	}

	if p, ok := ParsePrice(value); ok {
		if isIntervalHeader(lower) {
			if r.Intervals == nil {
				r.Intervals = make(map[string]Price)
			}
			r.Intervals[header] = p
		} else {
			if r.Services == nil {
				r.Services = make(map[string]Price)
			}
			r.Services[header] = p
		}
		return
	}

	if r.Extra == nil {
		r.Extra = make(map[string]string)
	}
	r.Extra[header] = value
}

// Valid reports whether the record carries the mandatory Model field.
func (r Record) Valid() bool {
	return r.Model != ""
}

// Fields flattens the record back into the header→value mapping it was
// parsed from, with prices in their original formatting.
func (r Record) Fields() map[string]string {
	fields := make(map[string]string)
	if r.Model != "" {
		fields["Model"] = r.Model
	}
	if r.Engine != "" {
		fields["Engine"] = r.Engine
	}
	for k, p := range r.Services {
		fields[k] = p.Raw
	}
	for k, p := range r.Intervals {
		fields[k] = p.Raw
	}
	for k, v := range r.Extra {
		fields[k] = v
	}
	return fields
}

// SearchBlob serializes the record into a lower-cased text blob for keyword
// matching. Headers are included: queries like "interim service" must match
// records whose only mention of the service is the column name.
func (r Record) SearchBlob() string {
	fields := r.Fields()
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(" ")
		sb.WriteString(fields[k])
		sb.WriteString(" ")
	}
	return strings.ToLower(sb.String())
}

var currencySymbols = []string{"£", "$", "€"}

// ParsePrice parses a price cell such as "£150" or "1,250.50". Returns
// false for cells that are not price-shaped.
func ParsePrice(s string) (Price, bool) {
	raw := strings.TrimSpace(s)
	num := raw

	var cur string
	for _, sym := range currencySymbols {
		if strings.HasPrefix(num, sym) {
			cur = sym
			num = strings.TrimSpace(strings.TrimPrefix(num, sym))
			break
		}
	}

	num = strings.ReplaceAll(num, ",", "")
	if num == "" || !strings.ContainsAny(num, "0123456789") {
		return Price{}, false
	}

	amount, err := decimal.NewFromString(num)
	if err != nil {
		return Price{}, false
	}

	return Price{Raw: raw, Amount: amount, Currency: cur}, true
}

func isIntervalHeader(lower string) bool {
	for _, kw := range []string{"month", "mile", "year", "week"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
