package contact

var projectLabels = map[string]string{
	"general":          "General Inquiry",
	"domain-details":   "Domain Details",
	"doodlify":         "Doodlify",
	"easychef":         "EasyChef.ai",
	"og-image-preview": "OG Image Preview",
	"ig-grid-planner":  "IG Grid Planner",
	"launchpage":       "Launchpage.xyz",
}

var topicLabels = map[string]string{
	"support":     "Support",
	"information": "Information",
	"gdpr":        "GDPR Request",
	"partnership": "Partnership",
	"bug":         "Bug Report",
	"other":       "Other",
}

// ProjectLabel returns the display name for a project code. Unknown codes
// are returned unchanged.
func ProjectLabel(code string) string {
	if label, ok := projectLabels[code]; ok {
		return label
	}
	return code
}

// TopicLabel returns the display name for a topic code. Unknown codes are
// returned unchanged.
func TopicLabel(code string) string {
	if label, ok := topicLabels[code]; ok {
		return label
	}
	return code
}
