package brand_report

import (
	"github.com/andresuchdata/inventra/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

// BuildSnapshot flattens catalog products into one record per variant.
// Missing or negative stock counts as zero, missing costs as zero, and a
// missing vendor as domain.UnknownBrand. Catalog order is preserved.
func BuildSnapshot(products []domain.RawProduct, costs map[string]decimal.Decimal) []domain.VariantRecord {
	var records []domain.VariantRecord
	for _, p := range products {
		brand := normalizeBrand(p.Vendor)
		for _, v := range p.Variants {
			productID := v.ProductID
			if productID == "" {
				productID = p.ID
			}

			records = append(records, domain.VariantRecord{
				Brand:           brand,
				ProductName:     fullProductName(p.Title, v.Title),
				ProductID:       productID,
				SKU:             v.SKU,
				VariantID:       v.ID,
				InventoryItemID: v.InventoryItemID,
				Stock:           clampStock(v.InventoryQuantity),
				UnitPrice:       v.Price,
				UnitCost:        lookupCost(costs, v.InventoryItemID),
			})
		}
	}
	return records
}

func clampStock(qty *int) int {
	if qty == nil || *qty < 0 {
		return 0
	}
	return *qty
}

func lookupCost(costs map[string]decimal.Decimal, inventoryItemID string) decimal.Decimal {
	if inventoryItemID == "" {
		return decimal.Zero
	}
	if c, ok := costs[inventoryItemID]; ok {
		return c
	}
	return decimal.Zero
}
