package domain

var Tables = []interface{}{
	// System
	&SysUser{},
	&SysOprLog{},
	// Catalog
	&Product{},
	&Inventory{},
	// Membership
	&Member{},
	// Sales
	&Order{},
	&OrderItem{},
	// Purchasing
	&PurchasePlan{},
	&StockIn{},
	// Shifts
	&Shift{},
}
