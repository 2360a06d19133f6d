package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a whole-rupee value that accepts JSON numbers and numeric strings.
type Amount int64

// UnmarshalJSON parses 3000, "3000" and "3000.00". Fractional rupees are rejected.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			*a = 0
			return nil
		}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("amount %q: %w", raw, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return fmt.Errorf("amount %q must be whole rupees", raw)
	}
	*a = Amount(d.IntPart())
	return nil
}

// UnmarshalText lets query binding reuse JSON rules.
func (a *Amount) UnmarshalText(text []byte) error {
	return a.UnmarshalJSON(text)
}
