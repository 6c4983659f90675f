package report

import (
	"context"
	"time"
)

const (
	StatusPending    = "PENDING"
	StatusAccepted   = "ACCEPTED"
	StatusInProgress = "IN_PROGRESS"
	StatusReady      = "READY"
	StatusCompleted  = "COMPLETED"
	StatusCancelled  = "CANCELLED"

	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"

	DiscountSourcePOSVoucher      = "POS_VOUCHER"
	DiscountSourceCustomerVoucher = "CUSTOMER_VOUCHER"
	DiscountSourceManual          = "MANUAL"

	PaymentMethodUnknown = "UNKNOWN"
)

// Order is the read-only snapshot of an order the engine aggregates.
type Order struct {
	ID          int64
	Status      string
	OrderType   string
	PlacedAt    time.Time
	CompletedAt *time.Time
	IsScheduled bool

	Subtotal            DecimalLike
	TaxAmount           DecimalLike
	ServiceChargeAmount DecimalLike
	PackagingFeeAmount  DecimalLike
	DeliveryFeeAmount   DecimalLike
	DiscountAmount      DecimalLike
	TotalAmount         DecimalLike

	Items     []OrderItem
	Discounts []OrderDiscount
	Payment   *Payment
}

type OrderItem struct {
	MenuID   *int64
	MenuName string
	// IsCustom marks items attached to the POS custom-item placeholder menu.
	IsCustom bool
	Quantity int32
	Subtotal DecimalLike
}

type OrderDiscount struct {
	Source              string
	Amount              DecimalLike
	VoucherTemplateID   *int64
	VoucherTemplateName *string
	Label               *string
}

type Payment struct {
	Method string
	Status string
}

func (o Order) completed() bool { return o.Status == StatusCompleted }

func (o Order) cancelled() bool { return o.Status == StatusCancelled }

// Merchant carries the metadata a report is rendered with.
type Merchant struct {
	ID       int64
	Currency string
	Timezone string
}

// OrderSource is the read contract of the order store. Implementations must
// be safe for concurrent use.
type OrderSource interface {
	FetchOrders(ctx context.Context, query Query) ([]Order, error)
	MerchantSettings(ctx context.Context, merchantID int64) (Merchant, error)
}
