package repository

import (
	"context"
	"errors"

	"github.com/ngolasuite/ngola/pkg/billing"
	"github.com/ngolasuite/ngola/pkg/datastore"
)

// BillingRecords keeps one provider subscription record per customer.
type BillingRecords struct{ base }

var _ billing.RecordStore = (*BillingRecords)(nil)

func billingFromRecord(rec datastore.Record) (*billing.Record, error) {
	r := row{rec: rec}
	b := &billing.Record{
		CustomerID:         r.str("customer_id"),
		ProviderCustomerID: r.str("provider_customer_id"),
		SubscriptionID:     r.str("subscription_id"),
		Status:             billing.RecordStatus(r.str("status")),
		PriceRef:           r.str("price_ref"),
		ProductRef:         r.str("product_ref"),
		PeriodEnd:          r.optTime("period_end"),
		EventAt:            r.optTime("event_at"),
		UpdatedAt:          r.time("updated_at"),
	}
	return b, r.err
}

func (r *BillingRecords) Get(ctx context.Context, customerID string) (*billing.Record, error) {
	rec, err := r.store.First(ctx, tableSubscription, datastore.Query{
		Filter: datastore.Where("customer_id", customerID),
	})
	if errors.Is(err, datastore.ErrNotFound) {
		return nil, billing.ErrRecordNotFound
	}
	if err != nil {
		return nil, wrap("get billing record", err)
	}
	return billingFromRecord(rec)
}

// Save upserts by customer ID.
func (r *BillingRecords) Save(ctx context.Context, rec *billing.Record) error {
	if rec == nil || rec.CustomerID == "" {
		return billing.ErrRecordInvalid
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = r.now()
	}
	cols := datastore.Record{
		"provider_customer_id": nullStr(rec.ProviderCustomerID),
		"subscription_id":      nullStr(rec.SubscriptionID),
		"status":               nullStr(string(rec.Status)),
		"price_ref":            nullStr(rec.PriceRef),
		"product_ref":          nullStr(rec.ProductRef),
		"period_end":           nullTime(rec.PeriodEnd),
		"event_at":             nullTime(rec.EventAt),
		"updated_at":           rec.UpdatedAt,
	}
	where := datastore.Where("customer_id", rec.CustomerID)

	n, err := r.store.Update(ctx, tableSubscription, cols, where)
	if err != nil {
		return wrap("save billing record", err)
	}
	if n > 0 {
		return nil
	}

	ins := datastore.Record{"customer_id": rec.CustomerID}
	for k, v := range cols {
		ins[k] = v
	}
	_, err = r.store.Insert(ctx, tableSubscription, ins)
	if errors.Is(err, datastore.ErrConflict) {
		_, err = r.store.Update(ctx, tableSubscription, cols, where)
	}
	return wrap("save billing record", err)
}
