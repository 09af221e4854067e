package enum

// ── Order types (validated on finalize, default STANDARD) ──

const (
	OrderTypeStandard = "standard"
	OrderTypeTakeaway = "takeaway"
	OrderTypeDelivery = "delivery"
)

// ── Report filters ──

const (
	ReportFilterDay  = "day"
	ReportFilterWeek = "week"
	ReportFilterAll  = "all"
)

// ── Roles ──

const (
	RoleAdmin = "ADMIN"
)

// ResetConfirmation is the literal an admin must submit before a full
// database wipe is executed. Anything else aborts the reset.
const ResetConfirmation = "RESET"
