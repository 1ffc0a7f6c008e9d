package gateway

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Decimal is a monetary or quantity amount. The API serialises decimals as
// strings ("12.50") but numbers are accepted too.
type Decimal float64

// Float returns the value as float64.
func (d Decimal) Float() float64 {
	return float64(d)
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(Round2(float64(d)), 'f', 2, 64))
}

func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*d = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*d = Decimal(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*d = Decimal(f)
	return nil
}
