package appointments

import "strings"

// DefaultRoster is the static technician roster. Assignment walks keyword
// rules in order and falls back to the first entry, so roster order matters.
func DefaultRoster() []Technician {
	return []Technician{
		{
			ID:          "tech-001",
			Name:        "John Doe",
			Specialties: []string{"plumbing", "electrical", "appliances"},
			Phone:       "+1234567890",
		},
		{
			ID:          "tech-002",
			Name:        "Jane Smith",
			Specialties: []string{"hvac", "plumbing", "general"},
			Phone:       "+1234567891",
		},
		{
			ID:          "tech-003",
			Name:        "Mike Johnson",
			Specialties: []string{"electrical", "appliances", "general"},
			Phone:       "+1234567892",
		},
	}
}

// assignmentRules maps problem keywords to the specialty that should handle
// them. Checked in order; first match wins.
var assignmentRules = []struct {
	keywords  []string
	specialty string
}{
	{[]string{"dishwasher", "appliance"}, "appliances"},
	{[]string{"plumbing", "pipe"}, "plumbing"},
	{[]string{"electrical", "wiring"}, "electrical"},
}

// AssignTechnician picks a technician for the problem text. Unmatched
// problems, and matched specialties nobody on the roster has, both fall back
// to the first roster entry.
func AssignTechnician(problem string, roster []Technician) Technician {
	if len(roster) == 0 {
		return Technician{}
	}
	lower := strings.ToLower(problem)
	for _, rule := range assignmentRules {
		if !containsAny(lower, rule.keywords) {
			continue
		}
		for _, tech := range roster {
			if hasSpecialty(tech, rule.specialty) {
				return tech
			}
		}
		return roster[0]
	}
	return roster[0]
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasSpecialty(t Technician, specialty string) bool {
	for _, s := range t.Specialties {
		if s == specialty {
			return true
		}
	}
	return false
}
