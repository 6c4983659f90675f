package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"genfity-report-service/internal/report"
)

type fileDocument struct {
	Merchant struct {
		ID       int64  `json:"id"`
		Currency string `json:"currency"`
		Timezone string `json:"timezone"`
	} `json:"merchant"`
	Orders []fileOrder `json:"orders"`
}

type fileOrder struct {
	ID                  int64           `json:"id"`
	Status              string          `json:"status"`
	OrderType           string          `json:"orderType"`
	PlacedAt            time.Time       `json:"placedAt"`
	CompletedAt         *time.Time      `json:"completedAt"`
	IsScheduled         bool            `json:"isScheduled"`
	Subtotal            json.RawMessage `json:"subtotal"`
	TaxAmount           json.RawMessage `json:"taxAmount"`
	ServiceChargeAmount json.RawMessage `json:"serviceChargeAmount"`
	PackagingFeeAmount  json.RawMessage `json:"packagingFeeAmount"`
	DeliveryFeeAmount   json.RawMessage `json:"deliveryFeeAmount"`
	DiscountAmount      json.RawMessage `json:"discountAmount"`
	TotalAmount         json.RawMessage `json:"totalAmount"`
	Items               []fileItem      `json:"items"`
	Discounts           []fileDiscount  `json:"discounts"`
	Payment             *report.Payment `json:"payment"`
}

type fileItem struct {
	MenuID   *int64          `json:"menuId"`
	MenuName string          `json:"menuName"`
	IsCustom bool            `json:"isCustom"`
	Quantity int32           `json:"quantity"`
	Subtotal json.RawMessage `json:"subtotal"`
}

type fileDiscount struct {
	Source              string          `json:"source"`
	Amount              json.RawMessage `json:"amount"`
	VoucherTemplateID   *int64          `json:"voucherTemplateId"`
	VoucherTemplateName *string         `json:"voucherTemplateName"`
	Label               *string         `json:"label"`
}

// LoadFile reads a merchant export into a Memory source. Monetary fields
// accept any decimal-like JSON encoding.
func LoadFile(path string) (*Memory, report.Merchant, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, report.Merchant{}, err
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Memory, report.Merchant, error) {
	var doc fileDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, report.Merchant{}, fmt.Errorf("decode orders file: %w", err)
	}

	merchant := report.Merchant{ID: doc.Merchant.ID, Currency: doc.Merchant.Currency, Timezone: doc.Merchant.Timezone}
	mem := NewMemory()
	mem.PutMerchant(merchant)

	orders := make([]report.Order, 0, len(doc.Orders))
	for _, raw := range doc.Orders {
		order, err := raw.toOrder()
		if err != nil {
			return nil, report.Merchant{}, fmt.Errorf("order %d: %w", raw.ID, err)
		}
		orders = append(orders, order)
	}
	mem.AddOrders(merchant.ID, orders...)
	return mem, merchant, nil
}

func (o fileOrder) toOrder() (report.Order, error) {
	order := report.Order{
		ID:          o.ID,
		Status:      o.Status,
		OrderType:   o.OrderType,
		PlacedAt:    o.PlacedAt,
		CompletedAt: o.CompletedAt,
		IsScheduled: o.IsScheduled,
		Payment:     o.Payment,
	}

	amounts := []struct {
		raw  json.RawMessage
		dest *report.DecimalLike
	}{
		{o.Subtotal, &order.Subtotal},
		{o.TaxAmount, &order.TaxAmount},
		{o.ServiceChargeAmount, &order.ServiceChargeAmount},
		{o.PackagingFeeAmount, &order.PackagingFeeAmount},
		{o.DeliveryFeeAmount, &order.DeliveryFeeAmount},
		{o.DiscountAmount, &order.DiscountAmount},
		{o.TotalAmount, &order.TotalAmount},
	}
	for _, amount := range amounts {
		value, err := report.ParseDecimalJSON(amount.raw)
		if err != nil {
			return report.Order{}, err
		}
		*amount.dest = value
	}

	for _, item := range o.Items {
		subtotal, err := report.ParseDecimalJSON(item.Subtotal)
		if err != nil {
			return report.Order{}, err
		}
		order.Items = append(order.Items, report.OrderItem{
			MenuID:   item.MenuID,
			MenuName: item.MenuName,
			IsCustom: item.IsCustom,
			Quantity: item.Quantity,
			Subtotal: subtotal,
		})
	}

	for _, discount := range o.Discounts {
		amount, err := report.ParseDecimalJSON(discount.Amount)
		if err != nil {
			return report.Order{}, err
		}
		order.Discounts = append(order.Discounts, report.OrderDiscount{
			Source:              discount.Source,
			Amount:              amount,
			VoucherTemplateID:   discount.VoucherTemplateID,
			VoucherTemplateName: discount.VoucherTemplateName,
			Label:               discount.Label,
		})
	}
	return order, nil
}
