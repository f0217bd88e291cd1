package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/salesops/internal/domain"
	"github.com/Gunvolt24/salesops/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// formatByExt — формат по расширению файла; неизвестное расширение считаем JSON.
func formatByExt(path string) InputFormat {
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return FormatJSONL
	}
	return FormatJSON
}

// ValidateFile — проверяет файл с размещениями и пишет валидные записи в ow.
// JSON — один объект или массив объектов, JSONL — объект на строку.
// Один невалидный объект — ошибка; в массиве и JSONL невалидные записи попадают в Report.Rejected.
func ValidateFile(ctx context.Context, validator ports.InputValidator, filePath string, format InputFormat, ow io.Writer) (Report, error) {
	if format == FormatAuto {
		format = formatByExt(filePath)
	}
	if format != FormatJSON && format != FormatJSONL {
		return Report{}, fmt.Errorf("unsupported format: %s", format)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return Report{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if format == FormatJSONL {
		return ValidateJSONLStream(ctx, validator, file, ow)
	}

	raw, err := io.ReadAll(file)
	if err != nil {
		return Report{}, fmt.Errorf("read file: %w", err)
	}
	raw = bytes.TrimSpace(raw)

	b := newBatch(validator, ow)
	if len(raw) == 0 || raw[0] != '[' {
		if err := b.add(ctx, 1, raw); err != nil {
			return b.report, err
		}
		return b.report, b.lastErr
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return Report{}, fmt.Errorf("%w: invalid json array: %v", domain.ErrInvalidInput, err)
	}
	for i, rec := range records {
		if err := b.add(ctx, i+1, rec); err != nil {
			return b.report, err
		}
	}
	return b.report, nil
}
