package calendar

import (
	"strconv"
	"strings"
	"time"
)

const summaryDivider = "--------------------"

// BuildOrderSummary renders a deterministic plain-text order summary for
// sharing. Line order is a contract consumers rely on: date/time header,
// client, blank line, then per item the device description, masked IMEI,
// prices, trade-in devices, installment plan, trade-in value, maintenance
// deduction, payment method and item notes, with a divider between items
// and an optional trailing general-notes block.
func BuildOrderSummary(ev SaleEvent) string {
	var lines []string

	header := "Pedido"
	if d := displayDate(ev.Date); d != "" {
		header += " " + d
	}
	if ev.Time != "" {
		header += " às " + ev.Time
	}
	lines = append(lines, header)

	if ev.ClientName != "" {
		lines = append(lines, "Cliente: "+ev.ClientName)
	}
	lines = append(lines, "")

	for i, item := range ev.Items {
		lines = append(lines, describeDevice(item))

		if item.IMEISuffix != "" {
			lines = append(lines, "IMEI: ***"+item.IMEISuffix)
		}

		lines = append(lines, "À vista: R$ "+formatMoney(item.CashPrice)+
			" | Parcelado: R$ "+formatMoney(item.FinancedPrice))

		for _, ti := range item.TradeInDevices {
			lines = append(lines, describeTradeIn(ti))
		}

		if item.Installments != nil || item.DownPayment != nil {
			var parts []string
			if item.Installments != nil {
				parts = append(parts, "Parcelamento: "+strconv.Itoa(*item.Installments)+"x")
			}
			if item.DownPayment != nil {
				parts = append(parts, "Entrada: R$ "+formatMoney(*item.DownPayment))
			}
			lines = append(lines, strings.Join(parts, " | "))
		}

		if item.TradeInValue != nil {
			lines = append(lines, "Valor do aparelho de entrada: R$ "+formatMoney(*item.TradeInValue))
		}
		if item.MaintenanceDeduction != nil {
			lines = append(lines, "Desconto manutenção: R$ "+formatMoney(*item.MaintenanceDeduction))
		}

		if item.PaymentMethod != "" {
			lines = append(lines, "Pagamento: "+item.PaymentMethod)
		}
		if item.Notes != "" {
			lines = append(lines, "Obs: "+item.Notes)
		}

		if i < len(ev.Items)-1 {
			lines = append(lines, summaryDivider)
		}
	}

	if ev.Notes != "" {
		lines = append(lines, "", "Observações: "+ev.Notes)
	}

	return strings.Join(lines, "\n")
}

func describeDevice(item SaleItem) string {
	parts := []string{item.DeviceModel}
	if item.Storage != "" {
		parts = append(parts, item.Storage)
	}
	if item.Color != "" {
		parts = append(parts, item.Color)
	}
	desc := strings.TrimSpace(strings.Join(parts, " "))
	if tag := conditionLabel(item.Condition); tag != "" {
		desc += " (" + tag + ")"
	}
	if tag := originLabel(item.SourceOrigin); tag != "" {
		desc += " [" + tag + "]"
	}
	return desc
}

func describeTradeIn(ti TradeInDevice) string {
	desc := "Entrada: " + strings.TrimSpace(ti.Model+" "+ti.Storage)
	if tag := conditionLabel(ti.Condition); tag != "" {
		desc += " (" + tag + ")"
	}
	if ti.Note != "" {
		desc += " - " + ti.Note
	}
	return desc
}

func conditionLabel(condition string) string {
	switch condition {
	case ConditionNew:
		return "Novo"
	case ConditionUsedGood:
		return "Seminovo"
	}
	return ""
}

func originLabel(origin string) string {
	switch origin {
	case OriginStock:
		return "Estoque"
	case OriginSupplier:
		return "Fornecedor"
	}
	return ""
}

// formatMoney renders two decimals with a comma separator and no grouping,
// e.g. 3500.5 -> "3500,50"
func formatMoney(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}

// displayDate converts YYYY-MM-DD into DD/MM/YYYY, passing anything else
// through untouched
func displayDate(date string) string {
	if date == "" {
		return ""
	}
	if t, err := time.Parse("2006-01-02", date); err == nil {
		return t.Format("02/01/2006")
	}
	return date
}
