package domain

// TimestampLayout is the local-time format used for order dates and profile
// timestamps across the app and its stored documents.
const TimestampLayout = "2006-01-02 15:04:05"

// Product is a catalog entry loaded from the remote store. Products are
// read-only from the core's perspective and never written back.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	OldPrice    float64  `json:"oldPrice"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"review"`
	CategoryID  string   `json:"categoryId,omitempty"`
	PicURLs     []string `json:"picUrl"`
	Sizes       []string `json:"size,omitempty"`
	Colors      []string `json:"color,omitempty"`
}

// PrimaryImage returns the first image URL, or empty when the product has none.
func (p Product) PrimaryImage() string {
	if len(p.PicURLs) == 0 {
		return ""
	}
	return p.PicURLs[0]
}

// CartItem is one line in a cart. It snapshots the product fields needed to
// display and price the line without re-reading the product.
type CartItem struct {
	ProductID     string  `json:"productId"`
	Title         string  `json:"title"`
	Price         float64 `json:"price"`
	ImageURL      string  `json:"imageUrl"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selectedSize,omitempty"`
	SelectedColor string  `json:"selectedColor,omitempty"`
}

// Cart is an ordered sequence of items keyed uniquely by product identifier.
// Insertion order is preserved for display.
type Cart struct {
	Items []CartItem `json:"items"`
}

// OrderStatus enumerates the lifecycle states an order can report.
type OrderStatus string

const (
	// OrderStatusPending is the initial status assigned at construction.
	OrderStatusPending OrderStatus = "Pending"
	// OrderStatusDelivered indicates the order reached the customer.
	OrderStatusDelivered OrderStatus = "Delivered"
	// OrderStatusCancelled indicates the order was cancelled before delivery.
	OrderStatusCancelled OrderStatus = "Cancelled"
	// OrderStatusUnknown is reported for unrecognised stored values.
	OrderStatusUnknown OrderStatus = "Unknown"
)

// ParseOrderStatus maps a stored status string onto the closed status set.
func ParseOrderStatus(s string) OrderStatus {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s)
	}
	return OrderStatusUnknown
}

// Order is the immutable record of a placed cart. The item slice is a deep
// copy taken at construction; callers never observe later cart mutations.
type Order struct {
	OrderID         string      `json:"orderId"`
	UserID          string      `json:"userId"`
	Items           []CartItem  `json:"items"`
	TotalAmount     float64     `json:"totalAmount"`
	OrderDate       string      `json:"orderDate"`
	Status          OrderStatus `json:"status"`
	DeliveryAddress string      `json:"deliveryAddress"`
}

// WithStatus returns a copy of the order carrying the new status. Only the
// Pending to Delivered and Pending to Cancelled transitions are accepted;
// any other request returns the receiver unchanged along with false.
func (o Order) WithStatus(status OrderStatus) (Order, bool) {
	if o.Status != OrderStatusPending {
		return o, false
	}
	if status != OrderStatusDelivered && status != OrderStatusCancelled {
		return o, false
	}
	dup := o
	dup.Items = append([]CartItem(nil), o.Items...)
	dup.Status = status
	return dup, true
}

// UserProfile captures the stored projection of a registered user.
type UserProfile struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	CreatedAt   string `json:"createdAt"`
	LastLoginAt string `json:"lastLoginAt"`
}

// Session holds the current authenticated identity plus local login flags.
type Session struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	LoggedIn      bool   `json:"loggedIn"`
	FirstTimeUser bool   `json:"firstTimeUser"`
	LastLogin     int64  `json:"lastLogin"`
}

// Theme enumerates supported display themes.
type Theme string

const (
	// ThemeLight is the default theme.
	ThemeLight Theme = "light"
	// ThemeDark is the dark display theme.
	ThemeDark Theme = "dark"
)

// Preferences stores per-device display and locale settings. Preferences
// survive logout.
type Preferences struct {
	Theme                Theme  `json:"theme"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	Language             string `json:"language"`
	Currency             string `json:"currency"`
}

// DefaultPreferences returns the preference values used before a user
// changes anything.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:                ThemeLight,
		NotificationsEnabled: true,
		Language:             "en",
		Currency:             "USD",
	}
}
