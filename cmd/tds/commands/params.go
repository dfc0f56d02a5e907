package commands

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/satishbabariya/tds-go/pkg/client"
)

var paramName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// params holds the -p flags of one invocation in command line order.
type params struct {
	positional []any
	named      map[string]any
	order      []string
}

// parseParams splits -p values into positional ones and name=value pairs.
func parseParams(raw []string) (*params, error) {
	p := &params{named: map[string]any{}}
	for _, r := range raw {
		if loc := paramName.FindStringIndex(r); loc != nil {
			name := r[:loc[1]-1]
			v, err := parseValue(r[loc[1]:])
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", name, err)
			}
			if _, dup := p.named[name]; !dup {
				p.order = append(p.order, name)
			}
			p.named[name] = v
			continue
		}
		v, err := parseValue(r)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", len(p.positional)+1, err)
		}
		p.positional = append(p.positional, v)
	}
	return p, nil
}

// parseValue types a command line value:
//
//	null                  NULL
//	true, false           bit
//	42                    integer
//	1.5, 1e3              decimal, float when it has an exponent
//	0x00ff                binary
//	2024-01-02[T15:04:05] datetime
//	'text' or anything    string
func parseValue(s string) (any, error) {
	switch {
	case s == "null" || s == "NULL":
		return nil, nil
	case s == "true" || s == "false":
		return s == "true", nil
	case len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'':
		return s[1 : len(s)-1], nil
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid binary literal %q", s)
		}
		return b, nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if strings.ContainsAny(s, "eE") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	} else if d, err := decimal.NewFromString(s); err == nil {
		return d, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return s, nil
}

// bind creates a statement for text with every parameter applied.
func (p *params) bind(text string) (*client.Statement, error) {
	st := client.NewStatement(text)
	if len(p.positional) > st.ParamCount() {
		return nil, fmt.Errorf("%w: query has %d placeholders, got %d positional parameters",
			client.ErrParameterCount, st.ParamCount(), len(p.positional))
	}
	for i, v := range p.positional {
		if err := st.SetParam(i, v); err != nil {
			return nil, err
		}
	}
	for _, name := range p.order {
		if err := st.SetNamed(name, p.named[name]); err != nil {
			return nil, err
		}
	}
	return st, nil
}
