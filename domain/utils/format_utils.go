package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"barrierbet/domain/entities"
)

// CentsPerUnit is the number of minor units in one currency unit
const CentsPerUnit = 100

var (
	errInvalidAmountFormat = errors.New("amount must be a decimal number with at most two decimal places")
	errAmountTooLarge      = fmt.Errorf("amount must not exceed %s", FormatAmount(entities.MaxAmount))
)

// FormatAmount formats an amount in cents as a decimal string (e.g., 1250 -> "12.50")
func FormatAmount(cents int64) string {
	sign := ""
	abs := cents
	if cents < 0 {
		sign = "-"
		abs = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, abs/CentsPerUnit, abs%CentsPerUnit)
}

// ParseAmount parses a decimal string (e.g., "12.5", "-3", "0.07") into cents
// without going through floating point.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errInvalidAmountFormat
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" && (!hasFrac || frac == "") {
		return 0, errInvalidAmountFormat
	}
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, errInvalidAmountFormat
	}
	if !isDigits(whole) || !isDigits(frac) {
		return 0, errInvalidAmountFormat
	}

	var units int64
	if whole != "" {
		var err error
		units, err = strconv.ParseInt(whole, 10, 64)
		if err != nil || units > entities.MaxAmount/CentsPerUnit {
			return 0, errAmountTooLarge
		}
	}

	var cents int64
	if frac != "" {
		if len(frac) == 1 {
			frac += "0"
		}
		cents, _ = strconv.ParseInt(frac, 10, 64)
	}

	total := units*CentsPerUnit + cents
	if total > entities.MaxAmount {
		return 0, errAmountTooLarge
	}
	if negative {
		total = -total
	}
	return total, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
