package report

import (
	"sort"
	"strconv"
	"strings"
)

const (
	// CustomItemPlaceholderMenuName is the menu POS custom items are attached to.
	CustomItemPlaceholderMenuName = "[POS] __CUSTOM_ITEM_PLACEHOLDER__"

	customItemKeyPrefix = "CUSTOM::"
	defaultMenuName     = "Menu"
	topMenuItemsLimit   = 10
)

type MenuItemEntry struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// TopMenuItems ranks menu items of completed orders by quantity sold. Custom
// POS items share the placeholder menu, so they are keyed by name instead.
func TopMenuItems(orders []Order, limit int) []MenuItemEntry {
	if limit <= 0 {
		limit = topMenuItemsLimit
	}

	agg := make(map[string]*MenuItemEntry)
	for _, order := range orders {
		if !order.completed() {
			continue
		}
		for _, item := range order.Items {
			key, name := menuItemKey(item)
			entry := agg[key]
			if entry == nil {
				entry = &MenuItemEntry{Key: key, Name: name}
				agg[key] = entry
			}
			entry.Quantity += int64(item.Quantity)
			entry.Revenue += ToFloat(item.Subtotal)
		}
	}

	items := make([]MenuItemEntry, 0, len(agg))
	for _, entry := range agg {
		items = append(items, *entry)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Quantity != items[j].Quantity {
			return items[i].Quantity > items[j].Quantity
		}
		if items[i].Revenue != items[j].Revenue {
			return items[i].Revenue > items[j].Revenue
		}
		return items[i].Key < items[j].Key
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func menuItemKey(item OrderItem) (string, string) {
	name := strings.TrimSpace(item.MenuName)
	if name == "" {
		name = defaultMenuName
	}
	if item.MenuID == nil || item.IsCustom {
		return customItemKeyPrefix + name, name
	}
	return strconv.FormatInt(*item.MenuID, 10), name
}
