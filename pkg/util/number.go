package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyNumber   = errors.New("empty number")
	ErrInvalidNumber = errors.New("invalid number")
	ErrNegative      = errors.New("value must not be negative")

	thousandsOnly = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)
)

// ParseLocalizedDecimal reads amounts the way shop staff type them:
//
//	"40.000"    -> 40000
//	"1.234.567" -> 1234567
//	"1.234,56"  -> 1234.56
//	"40,5"      -> 40.5
//	"40000.75"  -> 40000.75
func ParseLocalizedDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return decimal.Zero, ErrEmptyNumber
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	case hasDot && thousandsOnly.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return d, nil
}

// ParseLocalizedInt accepts "1.200" and "1,200" as 1200. Empty input is 0.
func ParseLocalizedInt(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegative
	}
	s = strings.NewReplacer(".", "", ",", "").Replace(s)
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return n, nil
}

// LocalizedDecimal unmarshals from a JSON number or a localized string.
type LocalizedDecimal struct {
	decimal.Decimal
}

func (d *LocalizedDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseLocalizedDecimal(s)
		if err != nil {
			return err
		}
		d.Decimal = v
		return nil
	}
	return d.Decimal.UnmarshalJSON(data)
}

// LocalizedInt unmarshals from a JSON number or a localized string.
type LocalizedInt int

func (n *LocalizedInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseLocalizedInt(s)
		if err != nil {
			return err
		}
		*n = LocalizedInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v < 0 {
		return ErrNegative
	}
	*n = LocalizedInt(v)
	return nil
}
