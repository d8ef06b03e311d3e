package model

// Currency is the billing currency for rates and reports.
type Currency string

const (
	CurrencyVND Currency = "VND"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Currencies lists the supported currencies in display order.
func Currencies() []Currency {
	return []Currency{CurrencyVND, CurrencyUSD, CurrencyEUR}
}

// Rates holds the global billing parameters.
type Rates struct {
	HourlyRate             float64  `json:"hourlyRate"`
	ContributionPercentage float64  `json:"contributionPercentage"`
	Currency               Currency `json:"currency"`
}

// Display holds presentation preferences.
type Display struct {
	Language       string `json:"language"`
	StartDayOfWeek int    `json:"startDayOfWeek"` // 0 = Sunday, 1 = Monday
}

// Settings is the application-wide settings singleton
type Settings struct {
	Goals   Goals   `json:"goals"`
	Rates   Rates   `json:"rates"`
	Display Display `json:"display"`
}

// DefaultSettings returns the settings written on first run
func DefaultSettings() Settings {
	return Settings{
		Goals: Goals{
			Daily:   480,   // 8 hours
			Weekly:  2400,  // 40 hours
			Monthly: 10080, // 168 hours
		},
		Rates: Rates{
			HourlyRate:             0,
			ContributionPercentage: 10,
			Currency:               CurrencyVND,
		},
		Display: Display{
			Language:       "vi",
			StartDayOfWeek: 1,
		},
	}
}
