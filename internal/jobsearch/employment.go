package jobsearch

import "strings"

// employmentTypeMap translates our employment-type tokens to the upstream
// vocabulary. Unrecognized tokens are dropped rather than rejected.
var employmentTypeMap = map[string]string{
	"full-time":  "FULLTIME",
	"fulltime":   "FULLTIME",
	"part-time":  "PARTTIME",
	"parttime":   "PARTTIME",
	"contract":   "CONTRACTOR",
	"contractor": "CONTRACTOR",
	"internship": "INTERN",
	"intern":     "INTERN",
}

// MapEmploymentTypes joins the mapped upstream tokens with commas. An empty
// result means "no employment-type filter".
func MapEmploymentTypes(types []string) string {
	if len(types) == 0 {
		return ""
	}
	mapped := make([]string, 0, len(types))
	seen := make(map[string]bool, len(types))
	for _, t := range types {
		m, ok := employmentTypeMap[strings.ToLower(strings.TrimSpace(t))]
		if !ok || seen[m] {
			continue
		}
		seen[m] = true
		mapped = append(mapped, m)
	}
	return strings.Join(mapped, ",")
}
