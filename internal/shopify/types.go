package shopify

import (
	"strings"
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// GraphQLErrors is returned when the response carries top-level errors.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		messages = append(messages, err.Message)
	}
	return "shopify graphql: " + strings.Join(messages, "; ")
}

type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
}

// UserErrors is returned when a cart mutation reports userErrors.
type UserErrors []UserError

func (e UserErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, err := range e {
		if len(err.Field) > 0 {
			messages = append(messages, strings.Join(err.Field, ".")+": "+err.Message)
			continue
		}
		messages = append(messages, err.Message)
	}
	return "shopify user errors: " + strings.Join(messages, "; ")
}

func (e UserErrors) cartMissing() bool {
	for _, err := range e {
		if strings.Contains(strings.ToLower(err.Message), "does not exist") {
			return true
		}
	}
	return false
}

type moneyDTO struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type imageDTO struct {
	URL string `json:"url"`
}

type selectedOptionDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type merchandiseDTO struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Image           *imageDTO           `json:"image"`
	Price           moneyDTO            `json:"price"`
	SelectedOptions []selectedOptionDTO `json:"selectedOptions"`
	Product         struct {
		Title         string    `json:"title"`
		FeaturedImage *imageDTO `json:"featuredImage"`
	} `json:"product"`
}

type cartLineDTO struct {
	ID          string         `json:"id"`
	Quantity    int            `json:"quantity"`
	Merchandise merchandiseDTO `json:"merchandise"`
}

type attributeDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type cartDTO struct {
	ID          string         `json:"id"`
	CheckoutURL string         `json:"checkoutUrl"`
	Attributes  []attributeDTO `json:"attributes"`
	Lines       struct {
		Edges []struct {
			Node cartLineDTO `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
}

type cartPayload struct {
	Cart       *cartDTO   `json:"cart"`
	UserErrors UserErrors `json:"userErrors"`
}
