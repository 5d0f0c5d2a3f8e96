package sentiment

import "strings"

// symbolToCompany maps well-known tickers to their company names so
// news searches work even when every company-name provider is down.
var symbolToCompany = map[string]string{
	"AAPL":  "Apple",
	"MSFT":  "Microsoft",
	"GOOGL": "Alphabet",
	"GOOG":  "Alphabet",
	"AMZN":  "Amazon",
	"TSLA":  "Tesla",
	"META":  "Meta Platforms",
	"NVDA":  "NVIDIA",
	"NFLX":  "Netflix",
	"AMD":   "Advanced Micro Devices",
	"INTC":  "Intel",
	"CRM":   "Salesforce",
	"ORCL":  "Oracle",
	"ADBE":  "Adobe",
	"PYPL":  "PayPal",
	"DIS":   "Disney",
	"V":     "Visa",
	"MA":    "Mastercard",
	"JPM":   "JPMorgan Chase",
	"BAC":   "Bank of America",
	"WFC":   "Wells Fargo",
	"C":     "Citigroup",
	"GS":    "Goldman Sachs",
	"MS":    "Morgan Stanley",
	"BRK.B": "Berkshire Hathaway",
	"JNJ":   "Johnson & Johnson",
	"PFE":   "Pfizer",
	"MRK":   "Merck",
	"ABBV":  "AbbVie",
	"LLY":   "Eli Lilly",
	"UNH":   "UnitedHealth",
	"KO":    "Coca-Cola",
	"PEP":   "PepsiCo",
	"WMT":   "Walmart",
	"COST":  "Costco",
	"TGT":   "Target",
	"HD":    "Home Depot",
	"LOW":   "Lowe's",
	"NKE":   "Nike",
	"MCD":   "McDonald's",
	"SBUX":  "Starbucks",
	"CVX":   "Chevron",
	"XOM":   "Exxon Mobil",
	"COP":   "ConocoPhillips",
	"BA":    "Boeing",
	"CAT":   "Caterpillar",
	"GE":    "General Electric",
	"F":     "Ford",
	"GM":    "General Motors",
	"UBER":  "Uber",
	"LYFT":  "Lyft",
	"ABNB":  "Airbnb",
	"COIN":  "Coinbase",
	"SQ":    "Block",
	"SHOP":  "Shopify",
	"SNAP":  "Snap",
	"PINS":  "Pinterest",
	"SPOT":  "Spotify",
	"ZM":    "Zoom",
	"PLTR":  "Palantir",
	"SNOW":  "Snowflake",
	"NET":   "Cloudflare",
	"DDOG":  "Datadog",
	"MDB":   "MongoDB",
	"CSCO":  "Cisco",
	"IBM":   "IBM",
	"QCOM":  "Qualcomm",
	"TXN":   "Texas Instruments",
	"AVGO":  "Broadcom",
	"MU":    "Micron",
	"TSM":   "Taiwan Semiconductor",
	"T":     "AT&T",
	"VZ":    "Verizon",
	"TMUS":  "T-Mobile",
	"RIVN":  "Rivian",
	"LCID":  "Lucid",
	"HOOD":  "Robinhood",
	"GME":   "GameStop",
	"AMC":   "AMC Entertainment",
}

// companySuffixes are legal-form suffixes stripped when deriving
// search terms, since headlines rarely spell them out.
var companySuffixes = []string{
	", Inc.", " Inc.", " Inc",
	" Corporation", " Corp.", " Corp",
	" Company", " Co.", " Co",
	" Ltd.", " Ltd", " Limited",
	" plc", " PLC",
	" Holdings", " Group",
}

// CompanyNameFor returns the mapped company name for a symbol, or ""
// when the symbol is not in the static table.
func CompanyNameFor(symbol string) string {
	return symbolToCompany[strings.ToUpper(symbol)]
}

// QueryTerms derives the search terms for a symbol: the symbol itself,
// the full company name, and the name with legal suffixes stripped.
// The static mapping takes precedence over the provided name so that
// colloquial names ("Apple", not "Apple Inc.") drive the search.
func QueryTerms(symbol, companyName string) []string {
	terms := []string{strings.ToUpper(strings.TrimSpace(symbol))}

	name := CompanyNameFor(symbol)
	if name == "" {
		name = strings.TrimSpace(companyName)
	}
	if name == "" {
		return terms
	}

	terms = append(terms, name)

	stripped := stripCompanySuffix(name)
	if stripped != name && stripped != "" {
		terms = append(terms, stripped)
	}

	return terms
}

func stripCompanySuffix(name string) string {
	for _, suffix := range companySuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSpace(strings.TrimSuffix(name, suffix))
		}
	}
	return name
}
