package travel

import (
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a money input that accepts JSON numbers, numeric strings and
// pt-BR strings such as "1.234,56". Blank or null leaves it unset. A dot after
// the decimal comma, as in "1,234.56", is rejected as ambiguous.
type Amount struct {
	Value decimal.Decimal
	Set   bool
}

// NewAmount returns a set Amount.
func NewAmount(d decimal.Decimal) Amount { return Amount{Value: d, Set: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*a = Amount{}
		return nil
	}
	raw = strings.TrimSpace(strings.Trim(raw, `"`))
	if raw == "" {
		*a = Amount{}
		return nil
	}
	if comma := strings.LastIndex(raw, ","); comma >= 0 {
		if strings.Contains(raw[comma:], ".") {
			return fmt.Errorf("%w: ambiguous amount %q", ErrValidation, raw)
		}
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.ReplaceAll(raw, ",", ".")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid amount %q", ErrValidation, raw)
	}
	*a = Amount{Value: d, Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Set {
		return []byte("null"), nil
	}
	return a.Value.MarshalJSON()
}

// Receipt is an attachment sent inline with an expense line.
type Receipt struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

// ExpenseLine is one row of the builder form.
type ExpenseLine struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Amount      Amount   `json:"amount"`
	Payer       string   `json:"payer"`
	Receipt     *Receipt `json:"receipt,omitempty"`
	// ReceiptURL carries an already uploaded receipt.
	ReceiptURL string `json:"receipt_url,omitempty"`
}

// PreparedLine is a validated line ready to be stored.
type PreparedLine struct {
	Category    Category
	Description string
	Amount      decimal.Decimal
	Payer       Payer
	Receipt     *DecodedReceipt
	ReceiptURL  string
}

// DecodedReceipt is a receipt with its payload decoded.
type DecodedReceipt struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Blank reports whether the line would be dropped before save.
func (l ExpenseLine) Blank() bool {
	return strings.TrimSpace(l.Description) == "" || !l.Amount.Set
}

// PrepareLines drops blank lines and validates the rest. A blank category
// becomes Outros; unknown categories and payers are rejected.
func PrepareLines(lines []ExpenseLine) ([]PreparedLine, error) {
	out := make([]PreparedLine, 0, len(lines))
	for i, line := range lines {
		if line.Blank() {
			continue
		}
		prepared, err := prepareLine(line)
		if err != nil {
			return nil, fmt.Errorf("%w (line %d)", err, i+1)
		}
		out = append(out, prepared)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one expense with description and amount is required", ErrValidation)
	}
	return out, nil
}

func prepareLine(line ExpenseLine) (PreparedLine, error) {
	category := CategoryOther
	if strings.TrimSpace(line.Category) != "" {
		c, err := ParseCategory(line.Category)
		if err != nil {
			return PreparedLine{}, err
		}
		category = c
	}
	payer, err := ParsePayer(line.Payer)
	if err != nil {
		return PreparedLine{}, err
	}
	if !line.Amount.Value.IsPositive() {
		return PreparedLine{}, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	if !line.Amount.Value.Equal(line.Amount.Value.Round(2)) {
		return PreparedLine{}, fmt.Errorf("%w: amount %s has more than two decimal places", ErrValidation, line.Amount.Value)
	}
	prepared := PreparedLine{
		Category:    category,
		Description: strings.TrimSpace(line.Description),
		Amount:      line.Amount.Value,
		Payer:       payer,
		ReceiptURL:  strings.TrimSpace(line.ReceiptURL),
	}
	if line.Receipt != nil && line.Receipt.Data != "" {
		decoded, err := decodeReceipt(*line.Receipt)
		if err != nil {
			return PreparedLine{}, err
		}
		prepared.Receipt = decoded
	}
	return prepared, nil
}

func decodeReceipt(r Receipt) (*DecodedReceipt, error) {
	data := r.Data
	// data URLs from the browser carry a "data:<type>;base64," prefix
	if i := strings.Index(data, ";base64,"); strings.HasPrefix(data, "data:") && i > 0 {
		if r.ContentType == "" {
			r.ContentType = data[len("data:"):i]
		}
		data = data[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: receipt is not valid base64", ErrValidation)
	}
	name := sanitizeFilename(r.Filename)
	return &DecodedReceipt{Filename: name, ContentType: r.ContentType, Data: raw}, nil
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "comprovante"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
