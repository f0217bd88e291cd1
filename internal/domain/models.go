package domain

import (
	"fmt"
	"strings"
	"time"
)

// Деньги храним в минимальных единицах валюты (копейки/центы).

// Product — позиция каталога. Stock никогда не бывает отрицательным.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Stock     int       `json:"stock"`
	Price     int64     `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// Client — клиент, закреплённый ровно за одним продавцом.
// SalespersonID не меняется после создания.
type Client struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Company       string    `json:"company"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone,omitempty"`
	SalespersonID string    `json:"salesperson_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Summary — краткая карточка клиента для ответов по заказам.
func (c *Client) Summary() *ClientSummary {
	if c == nil {
		return nil
	}
	return &ClientSummary{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}
}

// ClientSummary — поля клиента, которые подтягиваются в заказ.
type ClientSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// OrderStatus — статус заказа.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCanceled  OrderStatus = "CANCELED"
)

// Valid — статус входит в допустимое множество.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// ParseOrderStatus — разбор статуса без учёта регистра.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, raw)
	}
	return s, nil
}

// LineItem — строка заказа. UnitPrice фиксируется движком в момент заказа.
type LineItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	UnitPrice int64  `json:"unit_price"`
}

// Order — заказ клиента.
// SalespersonID — снимок владельца клиента на момент создания, заново не вычисляется.
type Order struct {
	ID            string         `json:"id"`
	ClientID      string         `json:"client_id"`
	Client        *ClientSummary `json:"client,omitempty"`
	SalespersonID string         `json:"salesperson_id"`
	Items         []LineItem     `json:"items"`
	Status        OrderStatus    `json:"status"`
	Total         int64          `json:"total"`
	CreatedAt     time.Time      `json:"created_at"`
}

// ComputeTotal — сумма по строкам заказа.
func (o *Order) ComputeTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += int64(item.Quantity) * item.UnitPrice
	}
	return total
}

// Clone — копия заказа (срез строк и карточка клиента не разделяются).
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	if o.Items != nil {
		c.Items = append([]LineItem(nil), o.Items...)
	}
	if o.Client != nil {
		cs := *o.Client
		c.Client = &cs
	}
	return &c
}

// ClientTotal — строка отчёта «лучшие клиенты».
type ClientTotal struct {
	Client ClientSummary `json:"client"`
	Total  int64         `json:"total"`
}

// SellerTotal — строка отчёта «лучшие продавцы».
type SellerTotal struct {
	SalespersonID string `json:"salesperson_id"`
	Total         int64  `json:"total"`
}
