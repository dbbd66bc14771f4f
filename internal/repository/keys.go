package repository

// Store keys. The store adds its namespace prefix.
const (
	keyCashSessionPrefix   = "cash_session:"
	keyCashHistory         = "cash_history"
	keyCashMovements       = "cash_movements"
	keySuspendedSalePrefix = "suspended_sale:"
	keySales               = "sales"
	keyProducts            = "products"
	keyCustomers           = "customers"
	keySuppliers           = "suppliers"
	keyStockMovements      = "stock_movements"
	keyUsers               = "users"
	keyRefreshTokens       = "refresh_tokens"
)
