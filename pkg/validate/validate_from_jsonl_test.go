package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Gunvolt24/salesops/internal/domain"
)

func TestValidateJSONLStream_Mixed(t *testing.T) {
	ctx := context.Background()
	validator := NewValidator()

	line1 := oneLineJSONL(minimalPlacementJSON("sp-1", "client-1", 1))
	line2 := oneLineJSONL(minimalPlacementJSON("sp-2", "", 1)) // без клиента
	line3 := ""                                                // пустая строка — ок
	line4 := oneLineJSONL(minimalPlacementJSON("sp-3", "client-3", 5))

	input := strings.Join([]string{line1, line2, line3, line4}, "\n")
	var out bytes.Buffer

	res, err := ValidateJSONLStream(ctx, validator, strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid != 2 || res.Invalid != 1 {
		t.Fatalf("unexpected counters: %+v", res)
	}
	if len(res.Rejected) != 1 || res.Rejected[0].Line != 2 {
		t.Fatalf("expected line 2 rejected, got %+v", res.Rejected)
	}

	outLines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(outLines) != 2 {
		t.Fatalf("expected 2 output lines, got %d", len(outLines))
	}
	var p1, p2 domain.Placement
	if err := json.Unmarshal([]byte(outLines[0]), &p1); err != nil {
		t.Fatalf("unmarshal line1: %v", err)
	}
	if err := json.Unmarshal([]byte(outLines[1]), &p2); err != nil {
		t.Fatalf("unmarshal line2: %v", err)
	}
	got := []string{p1.SalespersonID, p2.SalespersonID}
	wantSet := map[string]bool{"sp-1": true, "sp-3": true}
	for _, sp := range got {
		if !wantSet[sp] {
			t.Fatalf("unexpected salesperson in output: %s", sp)
		}
	}
}

func TestValidateJSONLStream_LargeLine(t *testing.T) {
	ctx := context.Background()
	validator := NewValidator()

	bigID := strings.Repeat("X", 200_000) // > 64KB
	raw := `{
	  "salesperson_id":"sp-big",
	  "client_id":"client-big",
	  "items":[{"product_id":"` + bigID + `","quantity":1}]
	}`

	var out bytes.Buffer
	rawCompact := oneLineJSONL(raw)
	res, err := ValidateJSONLStream(ctx, validator, strings.NewReader(rawCompact+"\n"), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid != 1 || res.Invalid != 0 {
		t.Fatalf("unexpected counters: %+v", res)
	}
	if strings.Count(strings.TrimSpace(out.String()), "\n")+1 != 1 {
		t.Fatalf("expected 1 output line")
	}
}

func TestValidateJSONLStream_DuplicateID(t *testing.T) {
	ctx := context.Background()
	validator := NewValidator()

	const id = "6f1c2a3e-8d4b-4c7a-9e0f-1a2b3c4d5e6f"
	withID := func(client string) string {
		return `{"id":"` + id + `",` + oneLineJSONL(minimalPlacementJSON("sp-1", client, 1))[1:]
	}
	input := withID("client-1") + "\n" + withID("client-2") + "\n"

	var out bytes.Buffer
	res, err := ValidateJSONLStream(ctx, validator, strings.NewReader(input), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid != 1 || res.Invalid != 1 {
		t.Fatalf("unexpected counters: %+v", res)
	}
	if got := res.Rejected[0]; got.Line != 2 || !strings.Contains(got.Reason, "repeats record 1") {
		t.Fatalf("unexpected rejection: %+v", got)
	}
}

func TestValidateJSONLStream_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	_, err := ValidateJSONLStream(ctx, NewValidator(), strings.NewReader(minimalPlacementJSON("sp", "c", 1)), &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}

// ------ функции-помощники ------

func oneLineJSONL(s string) string {
	var b bytes.Buffer
	_ = json.Compact(&b, []byte(s))
	return b.String()
}
