package domain

// DashboardStats is the admin dashboard summary. Revenue excludes
// cancelled and refunded orders; low stock counts active products with
// fewer than 10 units.
type DashboardStats struct {
	Users struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	} `json:"users"`
	Products struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		LowStock int `json:"low_stock"`
	} `json:"products"`
	Orders struct {
		Total   int `json:"total"`
		Pending int `json:"pending"`
	} `json:"orders"`
	Revenue struct {
		Total float64 `json:"total"`
	} `json:"revenue"`
	Reviews struct {
		Total int `json:"total"`
	} `json:"reviews"`
}
