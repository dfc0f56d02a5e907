// Package generator assembles a compiled query and encoded parameter values
// into literal SQL text.
package generator

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/tds-go/internal/core/query/domain"
	"github.com/satishbabariya/tds-go/internal/core/query/encoder"
)

// Generate substitutes params into q in order. Placeholders left over once
// params runs out are rendered as null. Count checks are the caller's job.
func Generate(q *domain.CompiledQuery, params []domain.Value) (string, error) {
	var b strings.Builder
	b.Grow(estimate(q, len(params)))

	next := 0
	for _, piece := range q.Pieces {
		if !piece.Placeholder {
			b.WriteString(piece.Text)
			continue
		}

		v := domain.Null()
		if next < len(params) {
			v = params[next]
		}
		if err := encoder.Encode(&b, v); err != nil {
			return "", fmt.Errorf("failed to encode parameter %d: %w", next, err)
		}
		next++
	}

	return b.String(), nil
}

func estimate(q *domain.CompiledQuery, nparams int) int {
	n := 8 * nparams
	for _, piece := range q.Pieces {
		n += len(piece.Text)
	}
	return n
}
