package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Value is a catalog field that may be written as a string or a number in the data files.
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("value must be a string or a number: %w", err)
	}
	s, err := formatNumber(n)
	if err != nil {
		return fmt.Errorf("value must be a string or a number: %w", err)
	}
	*v = Value(s)
	return nil
}

// MarshalJSON writes numeric values back as JSON numbers.
func (v Value) MarshalJSON() ([]byte, error) {
	if isNumber(string(v)) {
		return []byte(v), nil
	}
	return json.Marshal(string(v))
}

func (v Value) String() string {
	return string(v)
}

// formatNumber renders n in its shortest decimal form, so 43.0 reads as 43.
func formatNumber(n json.Number) (string, error) {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := n.Float64()
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// isNumber reports whether s is a number in the form formatNumber produces.
func isNumber(s string) bool {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(i, 10) == s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	return strconv.FormatFloat(f, 'f', -1, 64) == s
}

// Spec is one row of a product specification table.
type Spec struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Specs keeps specification rows in the order they appear in the data file.
type Specs []Spec

func (s *Specs) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("specifications must be an object")
	}

	var out Specs
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)

		var raw Value
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("specification %q: %w", key, err)
		}
		out = append(out, Spec{Key: key, Value: raw.String()})
	}
	*s = out
	return nil
}

func (s Specs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, spec := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(spec.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(Value(spec.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Product is a flat catalog record describing one model.
type Product struct {
	Model          string            `json:"modelo"`
	Type           string            `json:"type,omitempty"`
	Kind           string            `json:"tipo,omitempty"`
	Voltage        string            `json:"voltaje,omitempty"`
	Capacity       string            `json:"capacidad,omitempty"`
	Current        string            `json:"corriente,omitempty"`
	Energy         Value             `json:"energia,omitempty"`
	Weight         Value             `json:"peso,omitempty"`
	Application    string            `json:"aplicacion,omitempty"`
	Features       []string          `json:"caracteristicas,omitempty"`
	Images         []string          `json:"images,omitempty"`
	Specifications Specs             `json:"specifications,omitempty"`
	PDFURL         string            `json:"pdfUrl,omitempty"`
	Extra          map[string]string `json:"-"`
}

var knownProductKeys = map[string]struct{}{
	"modelo": {}, "type": {}, "tipo": {}, "voltaje": {}, "capacidad": {}, "corriente": {},
	"energia": {}, "peso": {}, "aplicacion": {}, "caracteristicas": {}, "images": {},
	"specifications": {}, "pdfUrl": {},
}

type productAlias Product

// UnmarshalJSON decodes the known fields and keeps any other scalar key in Extra,
// so that data files may declare their own table columns.
func (p *Product) UnmarshalJSON(b []byte) error {
	var a productAlias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if _, ok := knownProductKeys[k]; ok {
			continue
		}
		var val Value
		if err := json.Unmarshal(v, &val); err != nil {
			// nested objects and arrays are not table cells
			continue
		}
		if a.Extra == nil {
			a.Extra = make(map[string]string)
		}
		a.Extra[k] = val.String()
	}

	*p = Product(a)
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(productAlias(p))
	if err != nil {
		return nil, err
	}
	if len(p.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range p.Extra {
		if _, ok := merged[k]; ok {
			continue
		}
		raw, err := json.Marshal(Value(v))
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}

// Field returns the display value of a table column key.
func (p Product) Field(key string) string {
	switch key {
	case "modelo":
		return p.Model
	case "type":
		return p.Type
	case "tipo":
		return p.Kind
	case "voltaje":
		return p.Voltage
	case "capacidad":
		return p.Capacity
	case "corriente":
		return p.Current
	case "energia":
		return p.Energy.String()
	case "peso":
		return p.Weight.String()
	case "aplicacion":
		return p.Application
	case "pdfUrl":
		return p.PDFURL
	}
	return p.Extra[key]
}

// Column is a table column of a category page.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// TableFile is the {columns, data} shape of a category data file.
type TableFile struct {
	Columns []Column  `json:"columns"`
	Data    []Product `json:"data"`
}

// ConsolidatedFile groups the tables of one category by battery type.
type ConsolidatedFile struct {
	Category string               `json:"category"`
	Types    map[string]TableFile `json:"types"`
}

// CardSpec is one highlighted spec line of a product card.
type CardSpec struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Card is the summary of a product shown on category landing pages.
type Card struct {
	Model       string     `json:"modelo"`
	Type        string     `json:"type"`
	Application string     `json:"aplicacion"`
	Image       string     `json:"image"`
	Specs       []CardSpec `json:"specs"`
	DetailURL   string     `json:"detail_url"`
	Slug        string     `json:"slug"`
}

// ProcessResponse reports the outcome of a catalog import.
type ProcessResponse struct {
	TotalItems      int `json:"total_items"`
	TotalCategories int `json:"total_categories"`
}

// ContactRequest is the body posted by the contact form.
type ContactRequest struct {
	Name           string `json:"nombre" validate:"required"`
	Email          string `json:"email" validate:"required"`
	Phone          string `json:"telefono"`
	Subject        string `json:"asunto" validate:"required"`
	Message        string `json:"mensaje" validate:"required"`
	RecaptchaToken string `json:"recaptcha_token" validate:"required"`
}

// ContactMessage is a persisted contact form submission.
type ContactMessage struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nombre"`
	Email     string    `json:"email"`
	Phone     string    `json:"telefono"`
	Subject   string    `json:"asunto"`
	Message   string    `json:"mensaje"`
	IPAddress string    `json:"ip_address"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageQuery selects contact messages for the admin listing.
type MessageQuery struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// ContactEvent is published when a contact message has been stored.
type ContactEvent struct {
	Message ContactMessage `json:"message"`
}

// ContactResponse is the JSON envelope returned by the contact endpoint.
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// FormatID renders a message id the way notification e-mails show it.
func FormatID(id int64) string {
	return "#" + strconv.FormatInt(id, 10)
}
