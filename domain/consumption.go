package domain

type ConsumptionRecord struct {
	Name  string  `db:"name" json:"name"`
	Usage float64 `db:"usage_amount" json:"usage"`
}
