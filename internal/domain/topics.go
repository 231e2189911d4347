package domain

// MicroDataTopic carries the joined records.
const MicroDataTopic = "microdata-dashboard"

// VanillaTopic carries the raw uploaded files of a family.
func VanillaTopic(f Family) string { return string(f) + "-vanilla" }

// TransformedTopic carries the decoded records of a family, one per row.
func TransformedTopic(f Family) string { return string(f) + "-transformed" }
