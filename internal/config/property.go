package config

// Property describes one rental property in the portfolio.
type Property struct {
	Name   string `yaml:"name" mapstructure:"name"`
	Active bool   `yaml:"active" mapstructure:"active"`

	PurchasePrice    float64 `yaml:"purchasePrice" mapstructure:"purchasePrice"`
	PurchaseDate     string  `yaml:"purchaseDate" mapstructure:"purchaseDate"`
	Deposit          float64 `yaml:"deposit" mapstructure:"deposit"`
	AcquisitionCosts float64 `yaml:"acquisitionCosts,omitempty" mapstructure:"acquisitionCosts"`
	MarketValue      float64 `yaml:"marketValue" mapstructure:"marketValue"`
	WeeklyRent       float64 `yaml:"weeklyRent" mapstructure:"weeklyRent"`

	ManagementFeePercent float64 `yaml:"managementFeePercent,omitempty" mapstructure:"managementFeePercent"`
	ServiceCharge        float64 `yaml:"serviceCharge,omitempty" mapstructure:"serviceCharge"`
	GroundRent           float64 `yaml:"groundRent,omitempty" mapstructure:"groundRent"`
	OtherCosts           float64 `yaml:"otherCosts,omitempty" mapstructure:"otherCosts"`

	EPCRating string `yaml:"epcRating,omitempty" mapstructure:"epcRating"`

	Ownership          string  `yaml:"ownership" mapstructure:"ownership"` // individual, company
	UKResident         bool    `yaml:"ukResident" mapstructure:"ukResident"`
	UKTaxFreeAllowance bool    `yaml:"ukTaxFreeAllowance" mapstructure:"ukTaxFreeAllowance"`
	PersonalIncome     float64 `yaml:"personalIncome,omitempty" mapstructure:"personalIncome"`
	CGTRateBand        string  `yaml:"cgtRateBand,omitempty" mapstructure:"cgtRateBand"` // basic, higher or empty for auto

	Mortgage   *Mortgage         `yaml:"mortgage,omitempty" mapstructure:"mortgage"`
	Optimizers []OptimizerConfig `yaml:"optimizers,omitempty" mapstructure:"optimizers"`
}

// Mortgage holds the outstanding loan on a property.
type Mortgage struct {
	Type           string  `yaml:"type" mapstructure:"type"` // interest_only, principal_and_interest
	Balance        float64 `yaml:"balance" mapstructure:"balance"`
	InterestRate   float64 `yaml:"interestRate" mapstructure:"interestRate"` // percent
	YearsRemaining int     `yaml:"yearsRemaining" mapstructure:"yearsRemaining"`
}
