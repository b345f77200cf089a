package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MenuItem represents a dish in the catalog
type MenuItem struct {
	ID          string `db:"id" json:"id" yaml:"id"`
	Name        string `db:"name" json:"name" yaml:"name"`
	Description string `db:"description" json:"description" yaml:"description"`
	Price       int64  `db:"price" json:"price" yaml:"price"`
	Category    string `db:"category" json:"category" yaml:"category"`
	ImageURL    string `db:"image_url" json:"image_url" yaml:"image_url"`
	Available   bool   `db:"available" json:"available" yaml:"available"`
}

// CartLine is a menu item snapshot held in a cart. Price is the unit price
// captured when the line was added.
type CartLine struct {
	MenuItem
	Quantity     int    `json:"quantity"`
	SelectedUnit string `json:"selected_unit"`
}

// Subtotal returns price times quantity
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// CartLines is stored as a JSON document alongside its order
type CartLines []CartLine

// Value implements driver.Valuer
func (l CartLines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *CartLines) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case nil:
		*l = CartLines{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CartLines", src)
	}
	return json.Unmarshal(data, l)
}

// Order represents a placed customer order
type Order struct {
	ID            string        `db:"id" json:"id"`
	CustomerName  string        `db:"customer_name" json:"customer_name"`
	CustomerPhone string        `db:"customer_phone" json:"customer_phone"`
	Items         CartLines     `db:"items" json:"items"`
	Total         int64         `db:"total" json:"total"`
	Status        OrderStatus   `db:"status" json:"status"`
	Timestamp     int64         `db:"created_at" json:"timestamp"`
	PaymentMethod PaymentMethod `db:"payment_method" json:"payment_method"`
}

// CreatedAt returns the creation time in the local time zone
func (o *Order) CreatedAt() time.Time {
	return time.UnixMilli(o.Timestamp)
}

// Clone returns a deep copy of the order
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append(CartLines(nil), o.Items...)
	return &c
}

// PaymentMethod is how the customer pays at checkout
type PaymentMethod string

// Payment methods
const (
	PaymentCard PaymentMethod = "Card"
	PaymentCash PaymentMethod = "Cash"
	PaymentUPI  PaymentMethod = "UPI"
)

// Valid reports whether m is one of the accepted payment methods
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCard, PaymentCash, PaymentUPI:
		return true
	}
	return false
}

// SalesDataPoint is one day on the dashboard revenue chart
type SalesDataPoint struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
	Orders  int    `json:"orders"`
}

// Analytics is the dashboard summary
type Analytics struct {
	DailyRevenue   int64            `json:"daily_revenue"`
	MonthlyRevenue int64            `json:"monthly_revenue"`
	TotalOrders    int              `json:"total_orders"`
	ChartData      []SalesDataPoint `json:"chart_data"`
}

// AdminCredential is a stored admin login. Only the bcrypt hash is kept.
type AdminCredential struct {
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"password_hash"`
}
