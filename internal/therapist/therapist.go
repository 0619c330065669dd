// Package therapist holds the marketplace catalogue. The catalogue is
// seeded in code; therapist onboarding is handled out of band.
package therapist

import (
	"sort"
	"strings"
)

type Therapist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Specialties []string `json:"specialties"`
	Languages   []string `json:"languages"`
}

var catalogue = []Therapist{
	{
		ID:          "1",
		Name:        "Dr. Anjali Sharma",
		Email:       "anjali.sharma@healspace.app",
		Specialties: []string{"Anxiety", "Depression", "CBT"},
		Languages:   []string{"English", "Hindi"},
	},
	{
		ID:          "2",
		Name:        "Dr. Rohan Mehta",
		Email:       "rohan.mehta@healspace.app",
		Specialties: []string{"Stress Management", "Relationships", "Mindfulness"},
		Languages:   []string{"English", "Gujarati"},
	},
	{
		ID:          "3",
		Name:        "Dr. Priya Singh",
		Email:       "priya.singh@healspace.app",
		Specialties: []string{"Trauma", "Grief", "Family Therapy"},
		Languages:   []string{"English", "Punjabi"},
	},
	{
		ID:          "4",
		Name:        "Dr. Sameer Khan",
		Email:       "sameer.khan@healspace.app",
		Specialties: []string{"Anxiety", "Career Counseling", "CBT"},
		Languages:   []string{"English", "Urdu"},
	},
	{
		ID:          "5",
		Name:        "Dr. Aisha Desai",
		Email:       "aisha.desai@healspace.app",
		Specialties: []string{"Depression", "Stress Management", "Mindfulness"},
		Languages:   []string{"English", "Marathi"},
	},
	{
		ID:          "6",
		Name:        "Dr. Vikram Rao",
		Email:       "vikram.rao@healspace.app",
		Specialties: []string{"Relationships", "Family Therapy", "Grief"},
		Languages:   []string{"English", "Kannada"},
	},
}

// All returns a copy of the full catalogue.
func All() []Therapist {
	out := make([]Therapist, len(catalogue))
	copy(out, catalogue)
	return out
}

// ByID looks a therapist up; the second return is false when the id is
// not in the catalogue.
func ByID(id string) (Therapist, bool) {
	for _, t := range catalogue {
		if t.ID == id {
			return t, true
		}
	}
	return Therapist{}, false
}

// Filter narrows the catalogue by specialty and/or language. Empty filter
// values match everything; matching is case-insensitive.
func Filter(specialty, language string) []Therapist {
	out := make([]Therapist, 0, len(catalogue))
	for _, t := range catalogue {
		if specialty != "" && !containsFold(t.Specialties, specialty) {
			continue
		}
		if language != "" && !containsFold(t.Languages, language) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Specialties returns the distinct specialties across the catalogue,
// sorted.
func Specialties() []string {
	return distinct(func(t Therapist) []string { return t.Specialties })
}

// Languages returns the distinct languages across the catalogue, sorted.
func Languages() []string {
	return distinct(func(t Therapist) []string { return t.Languages })
}

func distinct(field func(Therapist) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, t := range catalogue {
		for _, v := range field(t) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func containsFold(values []string, needle string) bool {
	for _, v := range values {
		if strings.EqualFold(v, needle) {
			return true
		}
	}
	return false
}
