package calendar

import (
	"strings"

	"github.com/spf13/cast"
)

// NormalizeEvent converts an arbitrarily-shaped API record into the
// canonical SaleEvent. It never fails: every field falls back through
// canonical name, legacy name, then a safe default. The source record is
// not mutated and the result shares no memory with it.
func NormalizeEvent(raw RawSaleEvent) SaleEvent {
	rawItems := raw.Items
	if len(rawItems) == 0 {
		rawItems = raw.LegacySaleItems
	}

	var items []SaleItem
	if len(rawItems) > 0 {
		items = make([]SaleItem, 0, len(rawItems))
		for _, ri := range rawItems {
			items = append(items, NormalizeItem(ri))
		}
	} else {
		// Flat legacy record: the event itself describes the single
		// device sold
		items = []SaleItem{NormalizeItem(itemFromFlatEvent(raw))}
	}

	ev := SaleEvent{
		ID:         cast.ToString(raw.ID),
		Date:       normalizeDate(firstNonEmpty(raw.Date, raw.LegacySaleDate)),
		Time:       firstNonEmpty(raw.Time, raw.LegacySaleTime),
		ClientName: firstNonEmpty(raw.ClientName, raw.LegacyClientName),
		Status:     normalizeStatus(raw.Status),
		Notes:      firstNonEmpty(raw.Notes, raw.LegacyObs),
		Items:      items,
		CreatedAt:  firstNonEmpty(raw.CreatedAt, raw.LegacyCreatedAt),
		UpdatedAt:  firstNonEmpty(raw.UpdatedAt, raw.LegacyUpdatedAt),
	}

	first := items[0]
	ev.DeviceModel = first.DeviceModel
	ev.Storage = first.Storage
	ev.IMEISuffix = first.IMEISuffix
	ev.CashPrice = first.CashPrice
	ev.FinancedPrice = first.FinancedPrice
	ev.PaymentMethod = first.PaymentMethod

	return ev
}

// NormalizeItem converts one raw sold-device record into the canonical
// SaleItem, applying the same fallback philosophy per field
func NormalizeItem(raw RawSaleItem) SaleItem {
	tradeIns := raw.TradeInDevices
	if len(tradeIns) == 0 {
		tradeIns = raw.LegacyTradeInDevices
	}

	devices := make([]TradeInDevice, 0, len(tradeIns))
	for _, rt := range tradeIns {
		devices = append(devices, TradeInDevice{
			Model:     rt.Model,
			Storage:   rt.Storage,
			Condition: normalizeCondition(rt.Condition),
			Note:      firstNonEmpty(rt.Note, rt.LegacyObs),
		})
	}
	if len(devices) == 0 && raw.LegacyTradeInModel != "" {
		// Flat legacy trade-in fields predate the nested list
		devices = append(devices, TradeInDevice{
			Model:   raw.LegacyTradeInModel,
			Storage: raw.LegacyTradeInStorage,
		})
	}

	return SaleItem{
		ID:                   toOptionalInt64(raw.ID),
		ParentEventID:        toOptionalInt64(raw.EventID, raw.LegacyEventID),
		DeviceModel:          firstNonEmpty(raw.DeviceModel, raw.LegacyIphoneModel, raw.Model),
		Storage:              raw.Storage,
		Color:                raw.Color,
		IMEISuffix:           firstNonEmpty(raw.IMEISuffix, raw.LegacyIMEIEnd),
		CashPrice:            toAmount(raw.CashPrice, raw.LegacyCashPrice),
		FinancedPrice:        toAmount(raw.FinancedPrice, raw.LegacyFinancedPrice),
		PaymentMethod:        firstNonEmpty(raw.PaymentMethod, raw.LegacyPaymentMethod),
		TradeInValue:         toOptionalAmount(raw.TradeInValue, raw.LegacyTradeInValue),
		MaintenanceDeduction: toOptionalAmount(raw.MaintenanceDeduction, raw.LegacyMaintenanceDeduction),
		TradeInDevices:       devices,
		Installments:         toOptionalInt(raw.Installments),
		DownPayment:          toOptionalAmount(raw.DownPayment, raw.LegacyDownPayment),
		Condition:            normalizeCondition(raw.Condition),
		SourceOrigin:         normalizeOrigin(firstNonEmpty(raw.SourceOrigin, raw.LegacyOrigin)),
		Notes:                firstNonEmpty(raw.Notes, raw.LegacyObs),
	}
}

// itemFromFlatEvent lifts the flat single-device fields of a legacy event
// record into a raw item
func itemFromFlatEvent(raw RawSaleEvent) RawSaleItem {
	return RawSaleItem{
		DeviceModel:                raw.DeviceModel,
		LegacyIphoneModel:          raw.LegacyIphoneModel,
		Storage:                    raw.Storage,
		Color:                      raw.Color,
		IMEISuffix:                 raw.IMEISuffix,
		LegacyIMEIEnd:              raw.LegacyIMEIEnd,
		CashPrice:                  raw.CashPrice,
		LegacyCashPrice:            raw.LegacyCashPrice,
		FinancedPrice:              raw.FinancedPrice,
		LegacyFinancedPrice:        raw.LegacyFinancedPrice,
		PaymentMethod:              raw.PaymentMethod,
		LegacyPaymentMethod:        raw.LegacyPaymentMethod,
		TradeInValue:               raw.TradeInValue,
		LegacyTradeInValue:         raw.LegacyTradeInValue,
		MaintenanceDeduction:       raw.MaintenanceDeduction,
		LegacyMaintenanceDeduction: raw.LegacyMaintenanceDeduction,
		LegacyTradeInModel:         raw.LegacyTradeInModel,
		LegacyTradeInStorage:       raw.LegacyTradeInStorage,
		Installments:               raw.Installments,
		DownPayment:                raw.DownPayment,
		LegacyDownPayment:          raw.LegacyDownPayment,
		Condition:                  raw.Condition,
		SourceOrigin:               raw.SourceOrigin,
		LegacyOrigin:               raw.LegacyOrigin,
	}
}

// normalizeDate truncates to the YYYY-MM-DD prefix; anything shorter than
// ten characters is treated as malformed and comes back empty
func normalizeDate(date string) string {
	date = strings.TrimSpace(date)
	if len(date) < 10 {
		return ""
	}
	return date[:10]
}

func normalizeStatus(status string) Status {
	switch Status(status) {
	case StatusScheduled, StatusPurchased, StatusNotPurchased, StatusRescheduled:
		return Status(status)
	}
	return StatusScheduled
}

func normalizeCondition(condition string) string {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case "new", "novo":
		return ConditionNew
	case "used-good", "seminovo", "usado":
		return ConditionUsedGood
	}
	return ""
}

func normalizeOrigin(origin string) string {
	switch strings.ToLower(strings.TrimSpace(origin)) {
	case "stock", "estoque":
		return OriginStock
	case "supplier", "fornecedor":
		return OriginSupplier
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// toAmount coerces the first present value to a number, defaulting to 0.
// Historical rows carry amounts as numbers, numeric strings or null.
func toAmount(values ...any) float64 {
	for _, v := range values {
		if v == nil {
			continue
		}
		return cast.ToFloat64(v)
	}
	return 0
}

// toOptionalAmount coerces the first present value, or nil when every
// candidate is absent or unparsable
func toOptionalAmount(values ...any) *float64 {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil {
			continue
		}
		return &f
	}
	return nil
}

func toOptionalInt(values ...any) *int {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		n, err := cast.ToIntE(v)
		if err != nil {
			continue
		}
		return &n
	}
	return nil
}

func toOptionalInt64(values ...any) *int64 {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		n, err := cast.ToInt64E(v)
		if err != nil {
			continue
		}
		return &n
	}
	return nil
}
