package model

// Subscription amounts come back from the payment provider tax inclusive
// at the 10% consumption-tax rate. The net portion is backed out with
// integer math so 300 yields 272 net / 28 tax.

// NetAmount returns the tax-exclusive portion of a gross amount.
func NetAmount(gross int) int {
	return gross * 100 / 110
}

// TaxPortion returns the consumption tax included in a gross amount.
func TaxPortion(gross int) int {
	return gross - NetAmount(gross)
}
