package entitlement

// Subscription pricing in USD: a base price covers the first project, each
// additional project is billed as an add-on.
const (
	BaseMonthlyPrice  = 9.99
	AddonMonthlyPrice = 4.99
)

// SubscriptionPrice breaks a monthly subscription total into its components.
type SubscriptionPrice struct {
	Base  float64 `json:"base"`
	Addon float64 `json:"addon"`
	Total float64 `json:"total"`
}

// SubscriptionPriceFor computes the monthly price for projectCount projects.
// Defined for projectCount >= 1; callers clamp smaller values before calling.
// No rounding is applied here; display layers format to two decimals.
func SubscriptionPriceFor(projectCount int) SubscriptionPrice {
	extra := projectCount - 1
	if extra < 0 {
		extra = 0
	}
	addon := float64(extra) * AddonMonthlyPrice
	return SubscriptionPrice{
		Base:  BaseMonthlyPrice,
		Addon: addon,
		Total: BaseMonthlyPrice + addon,
	}
}

// TotalCents converts the price total to integer cents for checkout line items.
func (p SubscriptionPrice) TotalCents() int64 {
	return int64(p.Total*100 + 0.5)
}
