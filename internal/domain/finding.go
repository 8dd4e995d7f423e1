package domain

// FindingSeverity indicates how severe a finding is.
type FindingSeverity string

const (
	// SeverityError indicates a finding that must be resolved.
	SeverityError FindingSeverity = "error"
	// SeverityWarning indicates a finding that should be reviewed.
	SeverityWarning FindingSeverity = "warning"
)

// Finding type constants identify the kind of issue found.
const (
	FindingDuplicateID    = "duplicate_id"
	FindingDuplicateKey   = "duplicate_key"
	FindingOrphanedParent = "orphaned_parent"
	FindingParentCycle    = "parent_cycle"
	FindingMissingName    = "missing_name"
	FindingInvalidURL     = "invalid_url"
)

// Finding represents a validation issue discovered in a menu.
type Finding struct {
	Type     string
	Severity FindingSeverity
	Message  string
	ItemID   string
}
