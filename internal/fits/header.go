package fits

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// CardSize is the length of one header record.
	CardSize = 80
	// BlockSize is the FITS logical record length.
	BlockSize = 2880
)

// Card is one header keyword record. Value is a string, bool, integer or
// float64; nil writes a keyword with no value (END, COMMENT).
type Card struct {
	Key     string
	Value   any
	Comment string
}

// String renders the card as exactly CardSize bytes.
func (c Card) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-8.8s", strings.ToUpper(c.Key)))

	if c.Value != nil {
		sb.WriteString("= ")
		sb.WriteString(formatValue(c.Value))
		if c.Comment != "" {
			sb.WriteString(" / ")
			sb.WriteString(c.Comment)
		}
	} else if c.Comment != "" {
		sb.WriteString(c.Comment)
	}

	s := sb.String()
	if len(s) > CardSize {
		return s[:CardSize]
	}
	return s + strings.Repeat(" ", CardSize-len(s))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		q := strings.ReplaceAll(x, "'", "''")
		return fmt.Sprintf("%-20s", fmt.Sprintf("'%-8s'", q))
	case bool:
		if x {
			return fmt.Sprintf("%20s", "T")
		}
		return fmt.Sprintf("%20s", "F")
	case int:
		return fmt.Sprintf("%20d", x)
	case int32:
		return fmt.Sprintf("%20d", x)
	case int64:
		return fmt.Sprintf("%20d", x)
	case float64:
		return fmt.Sprintf("%20.12E", x)
	case float32:
		return fmt.Sprintf("%20.12E", float64(x))
	default:
		return fmt.Sprintf("%20v", x)
	}
}

// ParseCard decodes an 80-byte header record.
func ParseCard(rec string) Card {
	if len(rec) < CardSize {
		rec += strings.Repeat(" ", CardSize-len(rec))
	}
	c := Card{Key: strings.TrimSpace(rec[:8])}
	if rec[8:10] != "= " {
		c.Comment = strings.TrimSpace(rec[8:])
		return c
	}

	rest := strings.TrimSpace(rec[10:])
	if strings.HasPrefix(rest, "'") {
		str, tail := parseQuoted(rest[1:])
		c.Value = strings.TrimRight(str, " ")
		c.Comment = trimComment(tail)
		return c
	}

	raw := rest
	if i := strings.Index(rest, "/"); i >= 0 {
		raw = rest[:i]
		c.Comment = strings.TrimSpace(rest[i+1:])
	}
	c.Value = parseScalar(strings.TrimSpace(raw))
	return c
}

func parseQuoted(s string) (value, tail string) {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\'' {
			sb.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == '\'' {
			sb.WriteByte('\'')
			i++
			continue
		}
		return sb.String(), s[i+1:]
	}
	return sb.String(), ""
}

func trimComment(tail string) string {
	tail = strings.TrimSpace(tail)
	return strings.TrimSpace(strings.TrimPrefix(tail, "/"))
}

func parseScalar(raw string) any {
	switch raw {
	case "T":
		return true
	case "F":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(strings.Replace(raw, "D", "E", 1), 64); err == nil {
		return f
	}
	return raw
}

// Header is an ordered list of cards.
type Header []Card

// Get returns the first card with key.
func (h Header) Get(key string) (Card, bool) {
	for _, c := range h {
		if c.Key == key {
			return c, true
		}
	}
	return Card{}, false
}

// Int returns an integer keyword value.
func (h Header) Int(key string) (int64, error) {
	c, ok := h.Get(key)
	if !ok {
		return 0, fmt.Errorf("keyword %s not found", key)
	}
	switch n := c.Value.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	}
	return 0, fmt.Errorf("keyword %s: %v is not an integer", key, c.Value)
}

// Text returns a string keyword value.
func (h Header) Text(key string) (string, error) {
	c, ok := h.Get(key)
	if !ok {
		return "", fmt.Errorf("keyword %s not found", key)
	}
	s, ok := c.Value.(string)
	if !ok {
		return "", fmt.Errorf("keyword %s: %v is not a string", key, c.Value)
	}
	return s, nil
}

// Float returns a numeric keyword value as float64.
func (h Header) Float(key string) (float64, error) {
	c, ok := h.Get(key)
	if !ok {
		return 0, fmt.Errorf("keyword %s not found", key)
	}
	switch v := c.Value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("keyword %s: %v is not numeric", key, c.Value)
}

// Bytes renders the header followed by END, padded to whole blocks.
func (h Header) Bytes() []byte {
	var sb strings.Builder
	for _, c := range h {
		sb.WriteString(c.String())
	}
	sb.WriteString(Card{Key: "END"}.String())
	return padBlock([]byte(sb.String()), ' ')
}

func padBlock(b []byte, fill byte) []byte {
	if r := len(b) % BlockSize; r != 0 {
		pad := make([]byte, BlockSize-r)
		for i := range pad {
			pad[i] = fill
		}
		b = append(b, pad...)
	}
	return b
}
