package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"go.uber.org/zap"
)

const defaultAPIVersion = "2024-10"

type Config struct {
	// StoreDomain is the shop host, e.g. my-shop.myshopify.com.
	StoreDomain string
	AccessToken string
	APIVersion  string
	Timeout     time.Duration

	// Endpoint overrides the URL derived from StoreDomain and APIVersion.
	Endpoint string
}

// Client talks to the Shopify Storefront GraphQL API.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.AccessToken == "" {
		return nil, fmt.Errorf("shopify access token is empty")
	}

	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		domainName := strings.TrimSpace(cfg.StoreDomain)
		if domainName == "" {
			return nil, fmt.Errorf("shopify store domain is empty")
		}
		version := cfg.APIVersion
		if version == "" {
			version = defaultAPIVersion
		}
		endpoint = fmt.Sprintf("https://%s/api/%s/graphql.json", domainName, version)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		endpoint:   endpoint,
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

var _ port.ShopifyCarts = (*Client)(nil)

func (c *Client) CreateCart(ctx context.Context, lines []port.CartLineInput, attributes map[string]string) (domain.Cart, error) {
	input := map[string]any{}
	if len(lines) > 0 {
		input["lines"] = lineInputs(lines)
	}
	if len(attributes) > 0 {
		input["attributes"] = attributeInputs(attributes)
	}

	var resp struct {
		CartCreate cartPayload `json:"cartCreate"`
	}
	if err := c.do(ctx, "CartCreate", cartCreateMutation, map[string]any{"input": input}, &resp); err != nil {
		return domain.Cart{}, err
	}

	return payloadToCart(resp.CartCreate)
}

func (c *Client) GetCart(ctx context.Context, cartID string) (domain.Cart, error) {
	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("cartID is empty")
	}

	var resp struct {
		Cart *cartDTO `json:"cart"`
	}
	if err := c.do(ctx, "GetCart", getCartQuery, map[string]any{"cartId": cartID}, &resp); err != nil {
		return domain.Cart{}, err
	}

	// Shopify answers with a null cart once it has expired.
	if resp.Cart == nil {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	return mapCartToDomain(*resp.Cart)
}

func (c *Client) AddLines(ctx context.Context, cartID string, lines []port.CartLineInput) (domain.Cart, error) {
	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("cartID is empty")
	}

	var resp struct {
		CartLinesAdd cartPayload `json:"cartLinesAdd"`
	}
	vars := map[string]any{"cartId": cartID, "lines": lineInputs(lines)}
	if err := c.do(ctx, "CartLinesAdd", cartLinesAddMutation, vars, &resp); err != nil {
		return domain.Cart{}, err
	}

	return payloadToCart(resp.CartLinesAdd)
}

func (c *Client) UpdateLines(ctx context.Context, cartID string, lines []port.CartLineUpdate) (domain.Cart, error) {
	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("cartID is empty")
	}

	updates := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		updates = append(updates, map[string]any{"id": line.LineID, "quantity": line.Quantity})
	}

	var resp struct {
		CartLinesUpdate cartPayload `json:"cartLinesUpdate"`
	}
	vars := map[string]any{"cartId": cartID, "lines": updates}
	if err := c.do(ctx, "CartLinesUpdate", cartLinesUpdateMutation, vars, &resp); err != nil {
		return domain.Cart{}, err
	}

	return payloadToCart(resp.CartLinesUpdate)
}

func (c *Client) RemoveLines(ctx context.Context, cartID string, lineIDs []string) (domain.Cart, error) {
	if cartID == "" {
		return domain.Cart{}, fmt.Errorf("cartID is empty")
	}

	var resp struct {
		CartLinesRemove cartPayload `json:"cartLinesRemove"`
	}
	vars := map[string]any{"cartId": cartID, "lineIds": lineIDs}
	if err := c.do(ctx, "CartLinesRemove", cartLinesRemoveMutation, vars, &resp); err != nil {
		return domain.Cart{}, err
	}

	return payloadToCart(resp.CartLinesRemove)
}

func (c *Client) UpdateAttributes(ctx context.Context, cartID string, attributes map[string]string) error {
	if cartID == "" {
		return fmt.Errorf("cartID is empty")
	}

	var resp struct {
		CartAttributesUpdate struct {
			Cart       *struct{ ID string } `json:"cart"`
			UserErrors UserErrors           `json:"userErrors"`
		} `json:"cartAttributesUpdate"`
	}
	vars := map[string]any{"cartId": cartID, "attributes": attributeInputs(attributes)}
	if err := c.do(ctx, "CartAttributesUpdate", cartAttributesUpdateMutation, vars, &resp); err != nil {
		return err
	}

	payload := resp.CartAttributesUpdate
	if len(payload.UserErrors) > 0 {
		if payload.UserErrors.cartMissing() {
			return errors.Join(domain.ErrCartNotFound, payload.UserErrors)
		}
		return payload.UserErrors
	}
	if payload.Cart == nil {
		return domain.ErrCartNotFound
	}

	return nil
}

func (c *Client) do(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Storefront-Access-Token", c.token)

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify %s: %w", operation, err)
	}
	defer res.Body.Close()

	c.logger.Debug("shopify request",
		zap.String("operation", operation),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if res.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		return fmt.Errorf("shopify %s failed status=%d body=%s", operation, res.StatusCode, strings.TrimSpace(string(msg)))
	}

	envelope := graphQLResponse[json.RawMessage]{}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("shopify %s: decode: %w", operation, err)
	}
	if len(envelope.Errors) > 0 {
		return GraphQLErrors(envelope.Errors)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("shopify %s: decode data: %w", operation, err)
	}

	return nil
}

func payloadToCart(payload cartPayload) (domain.Cart, error) {
	if len(payload.UserErrors) > 0 {
		if payload.UserErrors.cartMissing() {
			return domain.Cart{}, errors.Join(domain.ErrCartNotFound, payload.UserErrors)
		}
		return domain.Cart{}, payload.UserErrors
	}
	if payload.Cart == nil {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	return mapCartToDomain(*payload.Cart)
}

func lineInputs(lines []port.CartLineInput) []map[string]any {
	inputs := make([]map[string]any, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, map[string]any{
			"merchandiseId": line.MerchandiseID,
			"quantity":      line.Quantity,
		})
	}
	return inputs
}

// attributeInputs sorts by key so requests are deterministic.
func attributeInputs(attributes map[string]string) []map[string]string {
	keys := make([]string, 0, len(attributes))
	for k := range attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	inputs := make([]map[string]string, 0, len(keys))
	for _, k := range keys {
		inputs = append(inputs, map[string]string{"key": k, "value": attributes[k]})
	}
	return inputs
}
