package permission

// Top-level modules known to the application.
const (
	ModuleDashboard     = "dashboard"
	ModuleMasterData    = "master_data"
	ModuleVendors       = "vendors"
	ModuleCustomers     = "customers"
	ModuleProducts      = "products"
	ModuleInventory     = "inventory"
	ModuleSales         = "sales"
	ModuleCRM           = "crm"
	ModuleMarketing     = "marketing"
	ModuleService       = "service"
	ModuleHR            = "hr"
	ModuleFinance       = "finance"
	ModuleAccounting    = "accounting"
	ModuleManufacturing = "manufacturing"
	ModuleProcurement   = "procurement"
	ModuleVouchers      = "vouchers"
	ModuleMail          = "mail"
	ModuleReports       = "reports"
	ModuleSettings      = "settings"
)

// Common actions.
const (
	ActionAll    = "*"
	ActionView   = "view"
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionAdmin  = "admin"
)

// KnownModules returns every top-level module in display order.
func KnownModules() []string {
	return []string{
		ModuleDashboard,
		ModuleMasterData,
		ModuleVendors,
		ModuleCustomers,
		ModuleProducts,
		ModuleInventory,
		ModuleSales,
		ModuleCRM,
		ModuleMarketing,
		ModuleService,
		ModuleHR,
		ModuleFinance,
		ModuleAccounting,
		ModuleManufacturing,
		ModuleProcurement,
		ModuleVouchers,
		ModuleMail,
		ModuleReports,
		ModuleSettings,
	}
}
