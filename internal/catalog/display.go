package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var trailingNumber = regexp.MustCompile(`\s*\d+$`)

// Display maps backend fields to what a card shows.
type Display struct {
	baseURL  string
	fallback string
	currency string
	printer  *message.Printer
}

func NewDisplay(baseURL, fallback, currency string) *Display {
	if fallback == "" {
		fallback = "/static/images/placeholder.svg"
	}
	return &Display{
		baseURL:  strings.TrimRight(baseURL, "/"),
		fallback: fallback,
		currency: currency,
		printer:  message.NewPrinter(language.English),
	}
}

func (d *Display) Fallback() string { return d.fallback }

// Title strips a trailing numeric suffix ("Shoe 12" -> "Shoe").
func (d *Display) Title(name string) string {
	name = strings.TrimSpace(name)
	if stripped := strings.TrimSpace(trailingNumber.ReplaceAllString(name, "")); stripped != "" {
		return stripped
	}
	return name
}

// ParsePrice reads a decimal price string; anything unparseable is zero.
func ParsePrice(raw string) decimal.Decimal {
	p, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return p
}

// Price formats a raw price string, e.g. "1200.5" -> "₦1,200.50".
func (d *Display) Price(raw string) string {
	return d.Money(ParsePrice(raw))
}

// Money formats an amount with the currency symbol, thousands grouping and
// two fraction digits.
func (d *Display) Money(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	grouped := whole
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		grouped = d.printer.Sprintf("%d", n)
	}
	return sign + d.currency + grouped + "." + frac
}

// Image resolves the first non-empty candidate, or the fallback asset when
// there is none.
func (d *Display) Image(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return d.ResolveImage(c)
		}
	}
	return d.fallback
}

// ResolveImage returns an absolute URL for src: http(s) URLs unchanged,
// "/path" under the backend origin, and bare paths under the backend's /media/.
func (d *Display) ResolveImage(src string) string {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return d.fallback
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return src
	case strings.HasPrefix(src, "//"):
		return "https:" + src
	case strings.HasPrefix(src, "/"):
		return d.baseURL + src
	default:
		return d.baseURL + "/media/" + src
	}
}

// IsBackendURL reports whether u points at the backend origin.
func (d *Display) IsBackendURL(u string) bool {
	return d.baseURL != "" && (u == d.baseURL || strings.HasPrefix(u, d.baseURL+"/"))
}
