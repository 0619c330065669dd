// Package circles holds the peer-support circle catalogue. Join requests
// are pending-approval records kept in the store layer.
package circles

type Circle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Members     int    `json:"members"`
}

var catalogue = []Circle{
	{
		ID:          "anxiety",
		Title:       "Managing Anxiety",
		Description: "A circle for sharing strategies and support for anxiety.",
		Members:     42,
	},
	{
		ID:          "student-stress",
		Title:       "Student Life Stress",
		Description: "Connect with fellow students to navigate academic and social pressures.",
		Members:     78,
	},
	{
		ID:          "workplace",
		Title:       "Workplace Wellness",
		Description: "Discuss challenges and find balance in your professional life.",
		Members:     55,
	},
	{
		ID:          "grief",
		Title:       "Grief and Loss Support",
		Description: "A safe space to share and process feelings of loss.",
		Members:     23,
	},
}

// All returns a copy of the circle catalogue.
func All() []Circle {
	out := make([]Circle, len(catalogue))
	copy(out, catalogue)
	return out
}

// ByID resolves a circle id; false when unknown.
func ByID(id string) (Circle, bool) {
	for _, c := range catalogue {
		if c.ID == id {
			return c, true
		}
	}
	return Circle{}, false
}
