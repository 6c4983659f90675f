package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"genfity-report-service/internal/auth"
	"genfity-report-service/internal/report"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var ErrMerchantNotFound = errors.New("merchant not found")

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Defaults fill merchant settings the merchants table leaves null.
type Defaults struct {
	Currency string
	Timezone string
}

// Postgres reads orders and merchant settings from the order service schema.
type Postgres struct {
	db       querier
	defaults Defaults
}

func NewPostgres(db querier, defaults Defaults) *Postgres {
	if strings.TrimSpace(defaults.Currency) == "" {
		defaults.Currency = "AUD"
	}
	if strings.TrimSpace(defaults.Timezone) == "" {
		defaults.Timezone = "Asia/Jakarta"
	}
	return &Postgres{db: db, defaults: defaults}
}

func (p *Postgres) MerchantSettings(ctx context.Context, merchantID int64) (report.Merchant, error) {
	var currency pgtype.Text
	var timezone pgtype.Text
	err := p.db.QueryRow(ctx, "select currency, timezone from merchants where id = $1", merchantID).Scan(&currency, &timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return report.Merchant{}, ErrMerchantNotFound
	}
	if err != nil {
		return report.Merchant{}, err
	}

	merchant := report.Merchant{ID: merchantID, Currency: p.defaults.Currency, Timezone: p.defaults.Timezone}
	if currency.Valid && strings.TrimSpace(currency.String) != "" {
		merchant.Currency = currency.String
	}
	if timezone.Valid && strings.TrimSpace(timezone.String) != "" {
		merchant.Timezone = timezone.String
	}
	return merchant, nil
}

func (p *Postgres) FetchOrders(ctx context.Context, q report.Query) ([]report.Order, error) {
	sql, args := buildOrdersQuery(q)
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]report.Order, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			completedAt   pgtype.Timestamptz
			paymentMethod pgtype.Text
			paymentStatus pgtype.Text
			amounts       [7]pgtype.Numeric
		)
		order := report.Order{}
		if err := rows.Scan(&order.ID, &order.Status, &order.OrderType, &order.PlacedAt, &completedAt, &order.IsScheduled,
			&amounts[0], &amounts[1], &amounts[2], &amounts[3], &amounts[4], &amounts[5], &amounts[6],
			&paymentMethod, &paymentStatus); err != nil {
			return nil, err
		}
		if _, seen := index[order.ID]; seen {
			continue
		}
		if completedAt.Valid {
			copyTime := completedAt.Time
			order.CompletedAt = &copyTime
		}
		order.TotalAmount = report.Numeric(amounts[0])
		order.Subtotal = report.Numeric(amounts[1])
		order.TaxAmount = report.Numeric(amounts[2])
		order.ServiceChargeAmount = report.Numeric(amounts[3])
		order.PackagingFeeAmount = report.Numeric(amounts[4])
		order.DeliveryFeeAmount = report.Numeric(amounts[5])
		order.DiscountAmount = report.Numeric(amounts[6])
		if paymentMethod.Valid {
			order.Payment = &report.Payment{Method: paymentMethod.String, Status: paymentStatus.String}
		}
		index[order.ID] = len(orders)
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	orderIDs := make([]int64, 0, len(orders))
	for _, order := range orders {
		orderIDs = append(orderIDs, order.ID)
	}
	if err := p.loadItems(ctx, orderIDs, orders, index); err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	if err := p.loadDiscounts(ctx, orderIDs, orders, index); err != nil {
		return nil, fmt.Errorf("load order discounts: %w", err)
	}
	return orders, nil
}

// buildOrdersQuery translates a report query into SQL. The merchant id is
// always the first bind parameter.
func buildOrdersQuery(q report.Query) (string, []any) {
	query := strings.Builder{}
	query.WriteString(`
		select o.id, o.status, o.order_type, o.placed_at, o.completed_at, o.is_scheduled,
		       o.total_amount, o.subtotal, o.tax_amount, o.service_charge_amount, o.packaging_fee,
		       o.delivery_fee_amount, o.discount_amount, p.payment_method, p.status
		from orders o
		left join payments p on p.order_id = o.id
		where o.merchant_id = $1
		  and o.placed_at >= $2
		  and o.placed_at <= $3`)

	args := []any{q.MerchantID, q.Window.Start, q.Window.End}
	idx := 4

	filters := q.Filters
	if len(filters.OrderTypes) > 0 {
		query.WriteString("\n\t\t  and o.order_type = any($" + strconv.Itoa(idx) + ")")
		args = append(args, filters.OrderTypes)
		idx++
	}
	if len(filters.Statuses) > 0 {
		query.WriteString("\n\t\t  and o.status = any($" + strconv.Itoa(idx) + ")")
		args = append(args, filters.Statuses)
		idx++
	}
	if filters.ScheduledOnly {
		query.WriteString("\n\t\t  and o.is_scheduled = true")
	}
	if len(filters.PaymentMethods) > 0 {
		query.WriteString("\n\t\t  and p.payment_method = any($" + strconv.Itoa(idx) + ")")
		args = append(args, filters.PaymentMethods)
		idx++
	}
	if len(filters.VoucherSources) > 0 {
		query.WriteString("\n\t\t  and exists (select 1 from order_discounts od where od.order_id = o.id and od.source = any($" + strconv.Itoa(idx) + "))")
		args = append(args, filters.VoucherSources)
	}
	query.WriteString("\n\t\torder by o.placed_at asc, o.id asc")

	return query.String(), args
}

func (p *Postgres) loadItems(ctx context.Context, orderIDs []int64, orders []report.Order, index map[int64]int) error {
	rows, err := p.db.Query(ctx, `
        select oi.order_id, oi.menu_id, oi.menu_name, oi.quantity, oi.subtotal, coalesce(m.name = $2, false)
        from order_items oi
        left join menus m on m.id = oi.menu_id
        where oi.order_id = any($1)
        order by oi.order_id, oi.id
    `, orderIDs, report.CustomItemPlaceholderMenuName)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID  int64
			menuID   pgtype.Int8
			menuName pgtype.Text
			quantity int32
			subtotal pgtype.Numeric
			isCustom bool
		)
		if err := rows.Scan(&orderID, &menuID, &menuName, &quantity, &subtotal, &isCustom); err != nil {
			return err
		}
		pos, ok := index[orderID]
		if !ok {
			continue
		}
		item := report.OrderItem{
			MenuName: menuName.String,
			IsCustom: isCustom,
			Quantity: quantity,
			Subtotal: report.Numeric(subtotal),
		}
		if menuID.Valid {
			id := menuID.Int64
			item.MenuID = &id
		}
		orders[pos].Items = append(orders[pos].Items, item)
	}
	return rows.Err()
}

func (p *Postgres) loadDiscounts(ctx context.Context, orderIDs []int64, orders []report.Order, index map[int64]int) error {
	rows, err := p.db.Query(ctx, `
        select od.order_id, od.source, od.discount_amount, od.voucher_template_id, vt.name, od.label
        from order_discounts od
        left join order_voucher_templates vt on vt.id = od.voucher_template_id
        where od.order_id = any($1)
        order by od.order_id, od.id
    `, orderIDs)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID      int64
			source       string
			amount       pgtype.Numeric
			templateID   pgtype.Int8
			templateName pgtype.Text
			label        pgtype.Text
		)
		if err := rows.Scan(&orderID, &source, &amount, &templateID, &templateName, &label); err != nil {
			return err
		}
		pos, ok := index[orderID]
		if !ok {
			continue
		}
		discount := report.OrderDiscount{Source: source, Amount: report.Numeric(amount)}
		if templateID.Valid {
			id := templateID.Int64
			discount.VoucherTemplateID = &id
		}
		if templateName.Valid {
			name := templateName.String
			discount.VoucherTemplateName = &name
		}
		if label.Valid {
			value := label.String
			discount.Label = &value
		}
		orders[pos].Discounts = append(orders[pos].Discounts, discount)
	}
	return rows.Err()
}

// MerchantAccess validates the session, the merchant link and the merchant
// status in one round trip.
func (p *Postgres) MerchantAccess(ctx context.Context, userID int64, merchantID int64, sessionID int64) (auth.MerchantAccess, error) {
	var (
		role   string
		access auth.MerchantAccess
	)
	query := `
		select u.role, mu.permissions, mu.is_active, m.is_active, coalesce(ms.status::text, '')
		from users u
		join merchant_users mu on mu.user_id = u.id and mu.merchant_id = $2
		join merchants m on m.id = mu.merchant_id
		left join merchant_subscriptions ms on ms.merchant_id = m.id
		join user_sessions us on us.id = $3 and us.user_id = u.id and us.status = 'ACTIVE' and us.expires_at > now()
		where u.id = $1
	`
	err := p.db.QueryRow(ctx, query, userID, merchantID, sessionID).Scan(&role, &access.Permissions, &access.LinkActive, &access.MerchantActive, &access.SubscriptionStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.MerchantAccess{}, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.MerchantAccess{}, err
	}
	access.Role = auth.UserRole(role)
	return access, nil
}

// Ping backs the readiness check.
func (p *Postgres) Ping(ctx context.Context) error {
	_, err := p.db.Exec(ctx, "select 1")
	return err
}
