package appointment

type AvailabilityInput struct {
	ProviderSlug string
	// ServiceID is optional; the provider's default slot length is used
	// without it.
	ServiceID uint
	Date      string
	Days      int
}

type TimeSlot struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}
