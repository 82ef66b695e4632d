package profile

import (
	"slices"
	"sort"
)

// Palette is the fixed, ordered set of display colors.
var Palette = []string{
	"#3B82F6",
	"#10B981",
	"#8B5CF6",
	"#F59E0B",
	"#EF4444",
	"#EC4899",
	"#14B8A6",
	"#F97316",
	"#84CC16",
	"#6366F1",
}

// ColorFor returns the default color for the n-th profile.
func ColorFor(n int) string {
	return Palette[n%len(Palette)]
}

// ValidColor reports whether c is a palette entry.
func ValidColor(c string) bool {
	return slices.Contains(Palette, c)
}

const (
	frontendKeywords  = "React developer, React.js, Next.js developer, frontend developer, MERN stack, Tailwind CSS, Redux, Typescript, JavaScript, UI developer, Web app development"
	backendKeywords   = "Node.js developer, Express.js, REST API, GraphQL, backend developer, API integration, Payment gateway, Stripe integration, MongoDB, PostgreSQL, Redis, Docker, NGINX, AWS, Azure, Microservices"
	fullstackKeywords = "Full stack developer, MERN stack developer, React.js, Next.js, Node.js, SaaS development, Dashboard development, Marketplace website, Chrome extension developer, Bug fixing, Website optimization"
)

// Templates maps a short template name to a ready-made keyword string.
var Templates = map[string]string{
	"frontend":  frontendKeywords,
	"backend":   backendKeywords,
	"fullstack": fullstackKeywords,
}

// TemplateNames returns the template names in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(Templates))
	for name := range Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns a fresh copy of the first-run seed profiles.
func Defaults() []Profile {
	return []Profile{
		{
			ID:          "frontend-heavy",
			Name:        "Frontend Heavy",
			Keywords:    frontendKeywords,
			Description: "React/Next.js focused jobs",
			Color:       "#3B82F6",
		},
		{
			ID:          "backend-heavy",
			Name:        "Backend Heavy",
			Keywords:    backendKeywords,
			Description: "Node/DevOps/API focused jobs",
			Color:       "#10B981",
		},
		{
			ID:          "fullstack",
			Name:        "Full Stack",
			Keywords:    fullstackKeywords,
			Description: "Broad full-stack opportunities",
			Color:       "#8B5CF6",
		},
	}
}
