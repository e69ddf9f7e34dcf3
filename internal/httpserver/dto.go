package httpserver

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"     validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type cartAddRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Size      string `json:"size"       validate:"required"`
	Quantity  uint   `json:"quantity"   validate:"required,gt=0"`
}

type cartUpdateRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Size      string `json:"size"       validate:"required"`
	Quantity  uint   `json:"quantity"`
}

type cartRemoveRequest struct {
	ItemID   uint `json:"item_id"  validate:"required"`
	Quantity uint `json:"quantity" validate:"required,gt=0"`
}

type placeOrderRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

type productSizeInput struct {
	Size     string `json:"size"     validate:"required"`
	Quantity uint   `json:"quantity"`
}

type productImageInput struct {
	URL string  `json:"url" validate:"required"`
	Alt *string `json:"alt"`
}

type productRequest struct {
	Name        string              `json:"name"        validate:"required"`
	Description string              `json:"description"`
	Price       float64             `json:"price"       validate:"required,gt=0"`
	CategoryID  uint                `json:"category_id" validate:"required"`
	Images      []productImageInput `json:"images"`
	Sizes       []productSizeInput  `json:"sizes"`
}

type toggleArchiveRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
