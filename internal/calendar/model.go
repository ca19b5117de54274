package calendar

// Status of a calendar sale event. Transitions are driven by the caller;
// the normalizer only guarantees the value is one of these four.
type Status string

const (
	StatusScheduled    Status = "scheduled"
	StatusPurchased    Status = "purchased"
	StatusNotPurchased Status = "not_purchased"
	StatusRescheduled  Status = "rescheduled"
)

// Device condition values
const (
	ConditionNew      = "new"
	ConditionUsedGood = "used-good"
)

// Source origin values for a sold item
const (
	OriginStock    = "stock"
	OriginSupplier = "supplier"
)

// TradeInDevice is a device accepted in partial exchange as part of a sale.
// It has no identity of its own and is always owned by exactly one SaleItem.
type TradeInDevice struct {
	Model     string `json:"model"`
	Storage   string `json:"storage"`
	Condition string `json:"condition,omitempty"`
	Note      string `json:"note,omitempty"`
}

// SaleItem represents one device sold within an event
type SaleItem struct {
	ID                   *int64          `json:"id,omitempty"`
	ParentEventID        *int64          `json:"parentEventId,omitempty"`
	DeviceModel          string          `json:"deviceModel"`
	Storage              string          `json:"storage"`
	Color                string          `json:"color,omitempty"`
	IMEISuffix           string          `json:"imeiSuffix"`
	CashPrice            float64         `json:"cashPrice"`
	FinancedPrice        float64         `json:"financedPrice"`
	PaymentMethod        string          `json:"paymentMethod"`
	TradeInValue         *float64        `json:"tradeInValue,omitempty"`
	MaintenanceDeduction *float64        `json:"maintenanceDeduction,omitempty"`
	TradeInDevices       []TradeInDevice `json:"tradeInDevices"`
	Installments         *int            `json:"installments,omitempty"`
	DownPayment          *float64        `json:"downPayment,omitempty"`
	Condition            string          `json:"condition,omitempty"`
	SourceOrigin         string          `json:"sourceOrigin,omitempty"`
	Notes                string          `json:"notes,omitempty"`
}

// SaleEvent is the canonical in-memory shape for a calendar sale record,
// independent of source field naming. Items is never empty after
// normalization; the top-level device fields mirror items[0] for legacy
// display code.
type SaleEvent struct {
	ID         string     `json:"id"`
	Date       string     `json:"date"` // YYYY-MM-DD or ""
	Time       string     `json:"time,omitempty"`
	ClientName string     `json:"clientName,omitempty"`
	Status     Status     `json:"status"`
	Notes      string     `json:"notes,omitempty"`
	Items      []SaleItem `json:"items"`
	CreatedAt  string     `json:"createdAt,omitempty"`
	UpdatedAt  string     `json:"updatedAt,omitempty"`

	// Convenience mirror of items[0]
	DeviceModel   string  `json:"deviceModel"`
	Storage       string  `json:"storage"`
	IMEISuffix    string  `json:"imeiSuffix"`
	CashPrice     float64 `json:"cashPrice"`
	FinancedPrice float64 `json:"financedPrice"`
	PaymentMethod string  `json:"paymentMethod"`
}
