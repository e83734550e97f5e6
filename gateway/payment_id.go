package gateway

import (
	"bytes"
	"encoding/json"
)

// PaymentID is a gateway payment id that may arrive as a JSON string or
// number. It always holds the decimal or string form.
type PaymentID string

func (p *PaymentID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PaymentID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = PaymentID(n.String())
	return nil
}
