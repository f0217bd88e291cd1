package domain

// OrderInput — данные для создания заказа.
// ID необязателен: его передаёт Kafka-канал, чтобы повторная доставка была идемпотентной.
type OrderInput struct {
	ID       string      `json:"id,omitempty" validate:"omitempty,uuid"`
	ClientID string      `json:"client_id" validate:"required"`
	Items    []LineItem  `json:"items" validate:"required,min=1,dive"`
	Status   OrderStatus `json:"status,omitempty" validate:"omitempty,order_status"`
}

// OrderPatch — изменение заказа. Пустые поля не трогаются.
type OrderPatch struct {
	ClientID string      `json:"client_id,omitempty"`
	Items    []LineItem  `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	Status   OrderStatus `json:"status,omitempty" validate:"omitempty,order_status"`
}

// Placement — заказ, пришедший из внешнего канала (Kafka).
// Продавец указан в самом сообщении: канал доверенный.
type Placement struct {
	SalespersonID string `json:"salesperson_id" validate:"required"`
	OrderInput
}

// ProductInput — создание товара с начальным остатком.
type ProductInput struct {
	Name  string `json:"name" validate:"required,max=200"`
	Stock int    `json:"stock" validate:"gte=0"`
	Price int64  `json:"price" validate:"gte=0"`
}

// ProductUpdate — изменение карточки товара. Остаток здесь не меняется:
// им управляет только движок заказов.
type ProductUpdate struct {
	Name  string `json:"name" validate:"required,max=200"`
	Price int64  `json:"price" validate:"gte=0"`
}

// ClientInput — создание/изменение клиента.
type ClientInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Company   string `json:"company" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,max=50"`
}
