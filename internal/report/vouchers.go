package report

import (
	"sort"
	"strconv"
	"strings"
)

const (
	defaultVoucherLabel = "Voucher"
	topTemplatesLimit   = 5
)

type VoucherSourceEntry struct {
	Source string  `json:"source"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

type VoucherTemplateEntry struct {
	Label  string  `json:"label"`
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

type VoucherSummary struct {
	BySource     []VoucherSourceEntry   `json:"bySource"`
	TopTemplates []VoucherTemplateEntry `json:"topTemplates"`
}

// SummarizeVouchers aggregates the discounts applied to completed orders, by
// source and by voucher template (or label when no template is attached).
func SummarizeVouchers(orders []Order) VoucherSummary {
	sourceAgg := make(map[string]*VoucherSourceEntry)
	templateAgg := make(map[string]*VoucherTemplateEntry)

	for _, order := range orders {
		if !order.completed() {
			continue
		}
		for _, discount := range order.Discounts {
			amount := ToFloat(discount.Amount)

			source := sourceAgg[discount.Source]
			if source == nil {
				source = &VoucherSourceEntry{Source: discount.Source}
				sourceAgg[discount.Source] = source
			}
			source.Count++
			source.Amount += amount

			key, label := voucherGroup(discount)
			template := templateAgg[key]
			if template == nil {
				template = &VoucherTemplateEntry{Label: label}
				templateAgg[key] = template
			}
			template.Count++
			template.Amount += amount
		}
	}

	bySource := make([]VoucherSourceEntry, 0, len(sourceAgg))
	for _, entry := range sourceAgg {
		bySource = append(bySource, *entry)
	}
	sort.Slice(bySource, func(i, j int) bool {
		if bySource[i].Amount != bySource[j].Amount {
			return bySource[i].Amount > bySource[j].Amount
		}
		return bySource[i].Source < bySource[j].Source
	})

	topTemplates := make([]VoucherTemplateEntry, 0, len(templateAgg))
	for _, entry := range templateAgg {
		topTemplates = append(topTemplates, *entry)
	}
	sort.Slice(topTemplates, func(i, j int) bool {
		if topTemplates[i].Amount != topTemplates[j].Amount {
			return topTemplates[i].Amount > topTemplates[j].Amount
		}
		return topTemplates[i].Label < topTemplates[j].Label
	})
	if len(topTemplates) > topTemplatesLimit {
		topTemplates = topTemplates[:topTemplatesLimit]
	}

	return VoucherSummary{BySource: bySource, TopTemplates: topTemplates}
}

// voucherGroup returns the grouping key and display label of a discount.
func voucherGroup(discount OrderDiscount) (string, string) {
	label := defaultVoucherLabel
	if discount.Label != nil && strings.TrimSpace(*discount.Label) != "" {
		label = strings.TrimSpace(*discount.Label)
	}
	if discount.VoucherTemplateID == nil {
		return "label:" + label, label
	}

	key := "template:" + strconv.FormatInt(*discount.VoucherTemplateID, 10)
	if discount.VoucherTemplateName != nil && strings.TrimSpace(*discount.VoucherTemplateName) != "" {
		return key, strings.TrimSpace(*discount.VoucherTemplateName)
	}
	if label == defaultVoucherLabel {
		label = strconv.FormatInt(*discount.VoucherTemplateID, 10)
	}
	return key, label
}
