package catalog

import "time"

// Product 商品。
type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	CategoryID  string    `json:"category_id" bson:"category_id"`
	Price       float64   `json:"price" bson:"price"`
	Stock       int       `json:"stock" bson:"stock"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// ProductPage 商品列表的一页。
type ProductPage struct {
	Items      []Product `json:"items"`
	Total      int64     `json:"total"`
	Page       int64     `json:"page"`
	PageSize   int64     `json:"page_size"`
	TotalPages int64     `json:"total_pages"`
}

// Category 商品分类，ParentID 为空表示顶级分类。
type Category struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	ParentID string `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Position int    `json:"position" bson:"position"`
}

// Address 收货地址。
type Address struct {
	ID        string `json:"id" bson:"_id"`
	UserID    string `json:"user_id" bson:"user_id"`
	Name      string `json:"name" bson:"name"`
	Line1     string `json:"line1" bson:"line1"`
	Line2     string `json:"line2,omitempty" bson:"line2,omitempty"`
	City      string `json:"city" bson:"city"`
	Zip       string `json:"zip" bson:"zip"`
	Country   string `json:"country" bson:"country"`
	IsDefault bool   `json:"is_default" bson:"is_default"`
}

// CartItem 购物车条目。
type CartItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Price     float64 `json:"price" bson:"price"`
}

// Cart 用户购物车，以用户 ID 为文档 ID。
type Cart struct {
	UserID    string     `json:"user_id" bson:"_id"`
	Items     []CartItem `json:"items" bson:"items"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// Total 返回购物车总价。
func (c Cart) Total() float64 {
	var sum float64
	for _, it := range c.Items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// OrderStatus 订单状态。
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Order 订单。
type Order struct {
	ID        string      `json:"id" bson:"_id"`
	UserID    string      `json:"user_id" bson:"user_id"`
	Status    OrderStatus `json:"status" bson:"status"`
	Items     []CartItem  `json:"items" bson:"items"`
	Total     float64     `json:"total" bson:"total"`
	AddressID string      `json:"address_id" bson:"address_id"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// OrderPage 订单列表的一页，按创建时间倒序。
type OrderPage struct {
	Items      []Order `json:"items"`
	Total      int64   `json:"total"`
	Page       int64   `json:"page"`
	PageSize   int64   `json:"page_size"`
	TotalPages int64   `json:"total_pages"`
}
