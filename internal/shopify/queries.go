package shopify

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

const cartFragment = `
fragment CartFields on Cart {
  id
  checkoutUrl
  attributes {
    key
    value
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            image {
              url
            }
            price {
              amount
              currencyCode
            }
            product {
              title
              featuredImage {
                url
              }
            }
            selectedOptions {
              name
              value
            }
          }
        }
      }
    }
  }
}
`

const userErrorFields = `
    userErrors {
      field
      message
      code
    }
`

var (
	getCartQuery = `
query GetCart($cartId: ID!) {
  cart(id: $cartId) {
    ...CartFields
  }
}
` + cartFragment

	cartCreateMutation = `
mutation CartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart {
      ...CartFields
    }` + userErrorFields + `  }
}
` + cartFragment

	cartLinesAddMutation = `
mutation CartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart {
      ...CartFields
    }` + userErrorFields + `  }
}
` + cartFragment

	cartLinesUpdateMutation = `
mutation CartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart {
      ...CartFields
    }` + userErrorFields + `  }
}
` + cartFragment

	cartLinesRemoveMutation = `
mutation CartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart {
      ...CartFields
    }` + userErrorFields + `  }
}
` + cartFragment

	cartAttributesUpdateMutation = `
mutation CartAttributesUpdate($cartId: ID!, $attributes: [AttributeInput!]!) {
  cartAttributesUpdate(cartId: $cartId, attributes: $attributes) {
    cart {
      id
    }` + userErrorFields + `  }
}
`
)

func init() {
	documents := map[string]string{
		"GetCart":              getCartQuery,
		"CartCreate":           cartCreateMutation,
		"CartLinesAdd":         cartLinesAddMutation,
		"CartLinesUpdate":      cartLinesUpdateMutation,
		"CartLinesRemove":      cartLinesRemoveMutation,
		"CartAttributesUpdate": cartAttributesUpdateMutation,
	}

	for name, doc := range documents {
		if err := validateDocument(name, doc); err != nil {
			panic(err)
		}
	}
}

// validateDocument checks that doc parses and declares exactly the named operation.
func validateDocument(name, doc string) error {
	parsed, err := parser.ParseQuery(&ast.Source{Name: name, Input: doc})
	if err != nil {
		return fmt.Errorf("parser.ParseQuery[%s]: %w", name, err)
	}

	if len(parsed.Operations) != 1 || parsed.Operations[0].Name != name {
		return fmt.Errorf("document[%s] must declare a single operation named %s", name, name)
	}

	return nil
}
