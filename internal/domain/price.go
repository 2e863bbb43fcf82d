package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CurrencySuffix is appended at display time only; stored prices are bare.
const CurrencySuffix = "ر.س"

// PriceUnavailable is shown when a selection has no matching tier or the
// stored value could not be parsed.
const PriceUnavailable = "---"

// Price is an amount in minor units (halalas). A Price that failed to parse
// keeps its raw text so legacy content survives a round trip.
type Price struct {
	minor int64
	valid bool
	raw   string
}

// MaxPriceDigits bounds the integer part so amounts fit bookings.price
// DECIMAL(12,2).
const MaxPriceDigits = 10

var bareAmount = regexp.MustCompile(fmt.Sprintf(`^[0-9]{1,%d}(\.[0-9]{1,2})?$`, MaxPriceDigits))

var digitFolder = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٫", ".", "٬", "", ",", "", " ", "", "\u00a0", "",
)

// NewPrice builds a valid price from minor units.
func NewPrice(minor int64) Price { return Price{minor: minor, valid: true} }

// ParsePrice accepts bare amounts as well as legacy values carrying a
// currency suffix, thousands separators or Arabic-Indic digits.
func ParsePrice(s string) (Price, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, CurrencySuffix, "")
	clean = strings.ReplaceAll(strings.ReplaceAll(clean, "SAR", ""), "sar", "")
	clean = digitFolder.Replace(strings.TrimSpace(clean))
	if !bareAmount.MatchString(clean) {
		return Price{raw: s}, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	whole, frac, _ := strings.Cut(clean, ".")
	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return Price{raw: s}, fmt.Errorf("%w: %q", ErrInvalidPrice, s)
	}
	var minor int64
	if frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		minor, _ = strconv.ParseInt(frac, 10, 64)
	}
	return Price{minor: major*100 + minor, valid: true}, nil
}

func (p Price) Valid() bool { return p.valid }

// Minor returns the amount in halalas.
func (p Price) Minor() (int64, bool) { return p.minor, p.valid }

// String is the bare stored form: "1000", "1250.50". Unparsed prices
// return their raw text.
func (p Price) String() string {
	if !p.valid {
		return p.raw
	}
	major, minor := p.minor/100, p.minor%100
	if minor == 0 {
		return strconv.FormatInt(major, 10)
	}
	return fmt.Sprintf("%d.%02d", major, minor)
}

// Display renders the price for visitors, e.g. "12,500 ر.س".
func (p Price) Display() string {
	if !p.valid {
		return PriceUnavailable
	}
	major, minor := p.minor/100, p.minor%100
	s := groupThousands(strconv.FormatInt(major, 10))
	if minor != 0 {
		s += fmt.Sprintf(".%02d", minor)
	}
	return s + " " + CurrencySuffix
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts a string or a JSON number and never fails on
// unparseable text; such prices stay invalid and display as "---".
func (p *Price) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		var n json.Number
		if nerr := json.Unmarshal(b, &n); nerr != nil {
			return err
		}
		s = n.String()
	}
	parsed, err := ParsePrice(s)
	if err != nil {
		*p = Price{raw: s}
		return nil
	}
	*p = parsed
	return nil
}
