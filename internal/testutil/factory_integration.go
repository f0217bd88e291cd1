//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/Gunvolt24/salesops/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// MakeProduct — товар с уникальным ID.
func MakeProduct(stock int, price int64) domain.Product {
	id := "prod-" + UniqSuffix()
	return domain.Product{
		ID:        id,
		Name:      "Product " + id,
		Stock:     stock,
		Price:     price,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// MakeClient — клиент продавца salespersonID с уникальным email.
func MakeClient(salespersonID string) domain.Client {
	suffix := UniqSuffix()
	return domain.Client{
		ID:            "cli-" + suffix,
		FirstName:     "John",
		LastName:      "Smith",
		Company:       "ACME",
		Email:         "john." + suffix + "@example.com",
		Phone:         "+1-202-555-01",
		SalespersonID: salespersonID,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
	}
}
