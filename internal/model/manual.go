package model

// ManualIssueType is the category a user picks when reporting an
// incident by hand.
type ManualIssueType string

// The closed set of manual issue types.
const (
	IssueColor       ManualIssueType = "Color"
	IssueNames       ManualIssueType = "Names"
	IssueSizing      ManualIssueType = "Sizing"
	IssueSublimation ManualIssueType = "Sublimation"
	IssueOther       ManualIssueType = "Other"
)

// ManualIssueTypes lists every allowed manual issue type in menu order.
var ManualIssueTypes = []ManualIssueType{
	IssueColor, IssueNames, IssueSizing, IssueSublimation, IssueOther,
}

// IsValid reports whether t belongs to the closed set.
func (t ManualIssueType) IsValid() bool {
	for _, known := range ManualIssueTypes {
		if t == known {
			return true
		}
	}
	return false
}
