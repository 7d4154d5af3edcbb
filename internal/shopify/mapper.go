package shopify

import (
	"fmt"
	"strings"

	"github.com/nikolayk812/shopcart/internal/domain"
)

func mapCartToDomain(dto cartDTO) (domain.Cart, error) {
	cart := domain.Cart{
		ID:          dto.ID,
		CheckoutURL: dto.CheckoutURL,
	}

	for _, edge := range dto.Lines.Edges {
		item, err := mapLineToDomain(edge.Node)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("mapLineToDomain[%s]: %w", edge.Node.ID, err)
		}
		cart.Items = append(cart.Items, item)
	}

	return cart, nil
}

func mapLineToDomain(line cartLineDTO) (domain.CartItem, error) {
	price, err := domain.ParseMoney(line.Merchandise.Price.Amount, line.Merchandise.Price.CurrencyCode)
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("domain.ParseMoney: %w", err)
	}

	name := line.Merchandise.Product.Title
	if name == "" {
		name = line.Merchandise.Title
	}

	var image string
	switch {
	case line.Merchandise.Image != nil:
		image = line.Merchandise.Image.URL
	case line.Merchandise.Product.FeaturedImage != nil:
		image = line.Merchandise.Product.FeaturedImage.URL
	}

	item := domain.CartItem{
		ID:       line.Merchandise.ID,
		Name:     name,
		Image:    image,
		Price:    price,
		Quantity: line.Quantity,
		LineID:   line.ID,
	}

	for _, opt := range line.Merchandise.SelectedOptions {
		switch strings.ToLower(opt.Name) {
		case "color", "colour":
			item.Color = opt.Value
		case "size":
			item.Size = opt.Value
		}
	}

	return item, nil
}
