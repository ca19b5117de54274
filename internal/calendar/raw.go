package calendar

// Raw input types mirror every field-naming convention that appeared in API
// payloads over time: canonical camelCase names first, snake_case legacy
// names next. Numeric fields are declared as any because historical rows
// carry them as numbers, strings or null.

// RawTradeIn is a trade-in device as it arrives from the API
type RawTradeIn struct {
	Model     string `json:"model"`
	Storage   string `json:"storage"`
	Condition string `json:"condition"`
	Note      string `json:"note"`
	LegacyObs string `json:"obs"`
}

// RawSaleItem is one sold device as it arrives from the API
type RawSaleItem struct {
	ID            any `json:"id"`
	EventID       any `json:"eventId"`
	LegacyEventID any `json:"event_id"`

	DeviceModel       string `json:"deviceModel"`
	LegacyIphoneModel string `json:"iphone_model"`
	Model             string `json:"model"`
	Storage           string `json:"storage"`
	Color             string `json:"color"`

	IMEISuffix    string `json:"imeiSuffix"`
	LegacyIMEIEnd string `json:"imei_end"`

	CashPrice           any    `json:"cashPrice"`
	LegacyCashPrice     any    `json:"cash_price"`
	FinancedPrice       any    `json:"financedPrice"`
	LegacyFinancedPrice any    `json:"financed_price"`
	PaymentMethod       string `json:"paymentMethod"`
	LegacyPaymentMethod string `json:"payment_method"`

	TradeInValue               any          `json:"tradeInValue"`
	LegacyTradeInValue         any          `json:"trade_in_value"`
	MaintenanceDeduction       any          `json:"maintenanceDeduction"`
	LegacyMaintenanceDeduction any          `json:"maintenance_deduction"`
	TradeInDevices             []RawTradeIn `json:"tradeInDevices"`
	LegacyTradeInDevices       []RawTradeIn `json:"trade_in_devices"`
	// Flat legacy trade-in, predating the nested list
	LegacyTradeInModel   string `json:"trade_in_model"`
	LegacyTradeInStorage string `json:"trade_in_storage"`

	Installments      any    `json:"installments"`
	DownPayment       any    `json:"downPayment"`
	LegacyDownPayment any    `json:"down_payment"`
	Condition         string `json:"condition"`
	SourceOrigin      string `json:"sourceOrigin"`
	LegacyOrigin      string `json:"origin"`
	Notes             string `json:"notes"`
	LegacyObs         string `json:"obs"`
}

// RawSaleEvent is a calendar sale record as it arrives from the API.
// Besides the item list it carries the flat single-device fields that
// predate multi-item events.
type RawSaleEvent struct {
	ID any `json:"id"`

	Date           string `json:"date"`
	LegacySaleDate string `json:"sale_date"`
	Time           string `json:"time"`
	LegacySaleTime string `json:"sale_time"`

	ClientName       string `json:"clientName"`
	LegacyClientName string `json:"client_name"`
	Status           string `json:"status"`
	Notes            string `json:"notes"`
	LegacyObs        string `json:"obs"`

	Items           []RawSaleItem `json:"items"`
	LegacySaleItems []RawSaleItem `json:"sale_items"`

	CreatedAt       string `json:"createdAt"`
	LegacyCreatedAt string `json:"created_at"`
	UpdatedAt       string `json:"updatedAt"`
	LegacyUpdatedAt string `json:"updated_at"`

	// Flat single-device legacy fields
	DeviceModel       string `json:"deviceModel"`
	LegacyIphoneModel string `json:"iphone_model"`
	Storage           string `json:"storage"`
	Color             string `json:"color"`
	IMEISuffix        string `json:"imeiSuffix"`
	LegacyIMEIEnd     string `json:"imei_end"`

	CashPrice           any    `json:"cashPrice"`
	LegacyCashPrice     any    `json:"cash_price"`
	FinancedPrice       any    `json:"financedPrice"`
	LegacyFinancedPrice any    `json:"financed_price"`
	PaymentMethod       string `json:"paymentMethod"`
	LegacyPaymentMethod string `json:"payment_method"`

	TradeInValue               any    `json:"tradeInValue"`
	LegacyTradeInValue         any    `json:"trade_in_value"`
	MaintenanceDeduction       any    `json:"maintenanceDeduction"`
	LegacyMaintenanceDeduction any    `json:"maintenance_deduction"`
	LegacyTradeInModel         string `json:"trade_in_model"`
	LegacyTradeInStorage       string `json:"trade_in_storage"`

	Installments      any    `json:"installments"`
	DownPayment       any    `json:"downPayment"`
	LegacyDownPayment any    `json:"down_payment"`
	Condition         string `json:"condition"`
	SourceOrigin      string `json:"sourceOrigin"`
	LegacyOrigin      string `json:"origin"`
}
