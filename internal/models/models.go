package models

import (
	"time"
)

type AdminRole string

const (
	AdminRoleGod     AdminRole = "GOD"
	AdminRoleManager AdminRole = "MANAGER"
	AdminRoleHelper  AdminRole = "HELPER"
)

func ValidAdminRole(r string) bool {
	switch AdminRole(r) {
	case AdminRoleGod, AdminRoleManager, AdminRoleHelper:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// Size is the fixed set of sellable variants per product.
var Sizes = []string{"S", "M", "L", "XL", "XXL"}

func ValidSize(s string) bool {
	for _, v := range Sizes {
		if v == s {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	Name         string    `json:"name"`
	PasswordHash *string   `json:"-"`
	GoogleID     *string   `gorm:"uniqueIndex"              json:"-"`
	DiscordID    *string   `gorm:"uniqueIndex"              json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Admin struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         AdminRole `gorm:"not null"                 json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken holds a sha256 digest of the issued token, never the raw value.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	TokenHash string `gorm:"uniqueIndex;not null" json:"-"`
	JTI       string `gorm:"index;not null"       json:"-"`
	UserID    uint   `gorm:"index;not null"       json:"user_id"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}

type AdminRefreshToken struct {
	ID        uint   `gorm:"primaryKey"          json:"id"`
	TokenHash string `gorm:"uniqueIndex;not null" json:"-"`
	JTI       string `gorm:"index;not null"       json:"-"`
	AdminID   uint   `gorm:"index;not null"       json:"admin_id"`
	ExpiresAt int64  `gorm:"not null"             json:"expires_at"`
	Revoked   bool   `gorm:"default:false"        json:"revoked"`
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null"                 json:"name"`
	Description string `json:"description"`
}

type Product struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"not null"                 json:"name"`
	Description string         `json:"description"`
	Price       float64        `gorm:"not null"                 json:"price"`
	CategoryID  uint           `gorm:"index;not null"           json:"category_id"`
	IsArchived  bool           `gorm:"default:false"            json:"is_archived"`
	Category    *Category      `json:"category,omitempty"`
	Images      []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	Sizes       []ProductSize  `gorm:"constraint:OnDelete:CASCADE" json:"sizes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ProductSize is the authoritative per-variant stock ledger.
type ProductSize struct {
	ID        uint   `gorm:"primaryKey"                             json:"id"`
	ProductID uint   `gorm:"uniqueIndex:idx_product_size;not null"  json:"product_id"`
	Size      string `gorm:"uniqueIndex:idx_product_size;not null"  json:"size"`
	Quantity  uint   `gorm:"not null;default:0"                     json:"quantity"`
}

type ProductImage struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	ProductID uint    `gorm:"index;not null" json:"product_id"`
	URL       string  `gorm:"not null"       json:"url"`
	Alt       *string `json:"alt"`
}

type Cart struct {
	ID        uint       `gorm:"primaryKey"           json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint   `gorm:"primaryKey"                                json:"id"`
	CartID    uint   `gorm:"uniqueIndex:idx_cart_product_size;not null" json:"cart_id"`
	ProductID uint   `gorm:"uniqueIndex:idx_cart_product_size;not null" json:"product_id"`
	Size      string `gorm:"uniqueIndex:idx_cart_product_size;not null" json:"size"`
	Quantity  uint   `gorm:"not null;check:quantity > 0"                json:"quantity"`
}

type Order struct {
	ID        uint        `gorm:"primaryKey"     json:"id"`
	UserID    uint        `gorm:"index;not null" json:"user_id"`
	Total     float64     `gorm:"not null"       json:"total"`
	Status    OrderStatus `gorm:"not null"       json:"status"`
	Items     []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	Payment   *Payment    `json:"payment,omitempty"`
	User      *User       `json:"user,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// OrderItem is a snapshot taken at order time, decoupled from later
// product or stock mutation.
type OrderItem struct {
	ID        uint     `gorm:"primaryKey"     json:"id"`
	OrderID   uint     `gorm:"index;not null" json:"order_id"`
	ProductID uint     `gorm:"not null"       json:"product_id"`
	Size      string   `gorm:"not null"       json:"size"`
	Quantity  uint     `gorm:"not null"       json:"quantity"`
	UnitPrice float64  `gorm:"not null"       json:"unit_price"`
	Product   *Product `json:"product,omitempty"`
}

type Payment struct {
	ID                    uint          `gorm:"primaryKey"           json:"id"`
	OrderID               uint          `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount                float64       `gorm:"not null"             json:"amount"`
	Status                PaymentStatus `gorm:"not null"             json:"status"`
	StripePaymentIntentID string        `gorm:"uniqueIndex;not null" json:"stripe_payment_intent_id"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filename  string    `gorm:"not null"   json:"filename"`
	URL       string    `gorm:"not null"   json:"url"`
	MimeType  string    `gorm:"not null"   json:"mimetype"`
	Size      int64     `gorm:"not null"   json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &Admin{}, &RefreshToken{}, &AdminRefreshToken{},
		&Category{}, &Product{}, &ProductSize{}, &ProductImage{},
		&Cart{}, &CartItem{}, &Order{}, &OrderItem{}, &Payment{},
		&UploadedFile{},
	}
}
