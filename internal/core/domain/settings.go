package domain

// Setting keys consumed by the application.
const (
	SettingQuotePrefix   = "quote_prefix"
	SettingInvoicePrefix = "invoice_prefix"
	SettingWorkspaceName = "workspace_name"
)
