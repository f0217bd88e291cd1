package validate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
)

// Rejection — отклонённая запись: номер (строка JSONL или элемент массива, с 1) и причина.
type Rejection struct {
	Line   int
	Reason string
}

// Report — итог проверки пачки размещений.
type Report struct {
	Valid    int
	Invalid  int
	Rejected []Rejection
}

func (r Report) String() string { return fmt.Sprintf("%d valid / %d invalid", r.Valid, r.Invalid) }

// batch — общий проход по записям: строгий разбор, валидация, повтор id внутри пачки.
// Повторный id в топике — повторная доставка, а в одном файле — ошибка подготовки данных.
type batch struct {
	validator ports.InputValidator
	out       io.Writer
	seen      map[string]int
	report    Report
	lastErr   error
}

func newBatch(validator ports.InputValidator, out io.Writer) *batch {
	return &batch{validator: validator, out: out, seen: make(map[string]int)}
}

func (b *batch) reject(n int, err error) {
	b.lastErr = err
	b.report.Invalid++
	b.report.Rejected = append(b.report.Rejected, Rejection{Line: n, Reason: err.Error()})
}

// add — проверить запись n; валидная пишется в out каноническим JSON одной строкой.
func (b *batch) add(ctx context.Context, n int, raw []byte) error {
	placement, err := ValidatePlacementFromJSON(ctx, b.validator, raw)
	if err != nil {
		b.reject(n, err)
		return nil
	}
	if id := placement.ID; id != "" {
		if first, dup := b.seen[id]; dup {
			b.reject(n, fmt.Errorf("%w: placement id %s repeats record %d", domain.ErrAlreadyExists, id, first))
			return nil
		}
		b.seen[id] = n
	}

	canonical, err := json.Marshal(placement)
	if err != nil {
		return fmt.Errorf("encode record %d: %w", n, err)
	}
	if _, err := b.out.Write(append(canonical, '\n')); err != nil {
		return fmt.Errorf("write valid record: %w", err)
	}
	b.report.Valid++
	return nil
}

// ValidateJSONLStream — читает JSONL, проверяет каждую строку, валидные пишет в ow.
// Пустые строки пропускаются, нумерация строк сквозная.
func ValidateJSONLStream(ctx context.Context, validator ports.InputValidator, ir io.Reader, ow io.Writer) (Report, error) {
	b := newBatch(validator, ow)

	scanner := bufio.NewScanner(ir)
	// запас на большие строки
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return b.report, err
		}
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		if err := b.add(ctx, line, raw); err != nil {
			return b.report, err
		}
	}
	if err := scanner.Err(); err != nil {
		return b.report, fmt.Errorf("scan: %w", err)
	}
	return b.report, nil
}
