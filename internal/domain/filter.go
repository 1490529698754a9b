package domain

import "strings"

// FilterMode says which single criterion a list query applies.
// Text and status filters never combine: text wins over status, status wins over none.
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterByStatus
	FilterByText
)

// ProjectFilter narrows an owner's project list.
type ProjectFilter struct {
	Status       *ProjectStatus
	NameContains string
}

func (f ProjectFilter) Mode() FilterMode {
	switch {
	case strings.TrimSpace(f.NameContains) != "":
		return FilterByText
	case f.Status != nil:
		return FilterByStatus
	default:
		return FilterNone
	}
}

// TaskFilter narrows a task list.
type TaskFilter struct {
	Status              *TaskStatus
	DescriptionContains string
}

func (f TaskFilter) Mode() FilterMode {
	switch {
	case strings.TrimSpace(f.DescriptionContains) != "":
		return FilterByText
	case f.Status != nil:
		return FilterByStatus
	default:
		return FilterNone
	}
}

// ContainsPattern builds a case-insensitive LIKE pattern for substring search.
// LIKE metacharacters in the needle are escaped with a backslash.
func ContainsPattern(needle string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(needle))) + "%"
}
