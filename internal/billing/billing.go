// Package billing holds the pure money math for the marketplace: the
// patient pays consultation fee plus a flat platform fee, the
// professional receives the fee minus commission, and the platform keeps
// commission plus the flat fee.
package billing

// Amounts is the full breakdown for one booking.
type Amounts struct {
	ConsultationFee  int     `json:"consultation_fee"`
	PlatformFee      int     `json:"platform_fee"`
	CommissionRate   float64 `json:"commission_rate"`
	CommissionAmount int     `json:"commission_amount"`
	Payout           int     `json:"payout_amount"`
	Total            int     `json:"total_amount"`
	PlatformEarnings int     `json:"platform_earnings"`
}

// BookingAmounts computes the breakdown for a consultation fee. The
// commission is truncated toward zero, matching how the amounts are
// settled in whole currency units.
func BookingAmounts(consultationFee, platformFee int, commissionRate float64) Amounts {
	commission := int(float64(consultationFee) * commissionRate)
	return Amounts{
		ConsultationFee:  consultationFee,
		PlatformFee:      platformFee,
		CommissionRate:   commissionRate,
		CommissionAmount: commission,
		Payout:           consultationFee - commission,
		Total:            consultationFee + platformFee,
		PlatformEarnings: commission + platformFee,
	}
}

// Refund is the outcome of a cancellation refund calculation.
type Refund struct {
	Amount        int     `json:"refund_amount"`
	Percentage    float64 `json:"refund_percentage"`
	PlatformKeeps int     `json:"platform_retains"`
}

// CancellationRefund applies the tiered refund policy:
// 24+ hours before the slot, everything except the platform fee comes
// back; 12-24 hours, half the total; under 12 hours, nothing.
func CancellationRefund(totalAmount, hoursBefore, platformFee int) Refund {
	var refund Refund
	switch {
	case hoursBefore >= 24:
		refund.Percentage = 1.0
		refund.Amount = totalAmount - platformFee
	case hoursBefore >= 12:
		refund.Percentage = 0.5
		refund.Amount = totalAmount / 2
	default:
		refund.Percentage = 0
		refund.Amount = 0
	}
	refund.PlatformKeeps = totalAmount - refund.Amount
	return refund
}
