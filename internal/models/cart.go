package models

// CartItem est une ligne du panier : la relation CONTAINS pondérée par la
// quantité, avec les champs produit dénormalisés au moment de la mutation
type CartItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
	Image     string  `json:"image,omitempty"`
}
