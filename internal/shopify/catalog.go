package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// costChunkSize is the most inventory item ids one request may carry.
const costChunkSize = 100

// FetchInventory returns every product with its variants.
func (c *Client) FetchInventory(ctx context.Context) ([]domain.RawProduct, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(pageLimit))

	var products []domain.RawProduct
	err := c.getAll(ctx, "products.json", params,
		func() any { return &productsResponse{} },
		func(page any) {
			for _, p := range page.(*productsResponse).Products {
				products = append(products, p.toDomain())
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInventoryFetch, err)
	}

	log.Info().Int("products", len(products)).Msg("Fetched inventory")
	return products, nil
}

// FetchUnitCosts returns the unit cost per inventory item id. Items without
// a cost are absent from the map.
func (c *Client) FetchUnitCosts(ctx context.Context, inventoryItemIDs []string) (map[string]decimal.Decimal, error) {
	costs := make(map[string]decimal.Decimal, len(inventoryItemIDs))

	for start := 0; start < len(inventoryItemIDs); start += costChunkSize {
		end := start + costChunkSize
		if end > len(inventoryItemIDs) {
			end = len(inventoryItemIDs)
		}

		params := url.Values{}
		params.Set("ids", strings.Join(inventoryItemIDs[start:end], ","))
		params.Set("limit", strconv.Itoa(costChunkSize))

		var resp inventoryItemsResponse
		if _, err := c.get(ctx, "inventory_items.json", params, &resp); err != nil {
			return nil, fmt.Errorf("%w: unit costs: %w", domain.ErrInventoryFetch, err)
		}
		for _, item := range resp.InventoryItems {
			if item.Cost.Valid {
				costs[id(item.ID)] = item.Cost.Decimal
			}
		}
	}
	return costs, nil
}

// FetchProductDetail looks up one product. A product that no longer exists
// yields a detail with Found set to false and no error.
func (c *Client) FetchProductDetail(ctx context.Context, productID string) (domain.ProductDetail, error) {
	var resp productResponse
	_, err := c.get(ctx, "products/"+url.PathEscape(productID)+".json", nil, &resp)
	if errors.Is(err, errNotFound) {
		return domain.ProductDetail{ProductID: productID}, nil
	}
	if err != nil {
		return domain.ProductDetail{}, fmt.Errorf("fetch product %s: %w", productID, err)
	}
	return resp.Product.toDetail(), nil
}

// FetchOrders returns all orders created at or after since, oldest first.
func (c *Client) FetchOrders(ctx context.Context, since time.Time) ([]domain.RawOrder, error) {
	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", strconv.Itoa(pageLimit))
	params.Set("order", "created_at asc")
	if !since.IsZero() {
		params.Set("created_at_min", since.UTC().Format(time.RFC3339))
	}

	var orders []domain.RawOrder
	err := c.getAll(ctx, "orders.json", params,
		func() any { return &ordersResponse{} },
		func(page any) {
			for _, o := range page.(*ordersResponse).Orders {
				orders = append(orders, o.toDomain())
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrOrdersFetch, err)
	}

	log.Info().Int("orders", len(orders)).Time("since", since).Msg("Fetched orders")
	return orders, nil
}

// FetchLocations returns the shop's stock locations.
func (c *Client) FetchLocations(ctx context.Context) ([]domain.Location, error) {
	var resp locationsResponse
	if _, err := c.get(ctx, "locations.json", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch locations: %w", err)
	}

	locations := make([]domain.Location, 0, len(resp.Locations))
	for _, l := range resp.Locations {
		locations = append(locations, domain.Location{
			ID:       id(l.ID),
			Name:     l.Name,
			City:     l.City,
			Country:  l.Country,
			IsActive: l.Active,
		})
	}
	return locations, nil
}
