package model

import (
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Item is one shopping-list entry. The JSON shape is the persisted format.
type Item struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// MaxTitleLen is the longest title, in runes, that Add and Rename accept.
const MaxTitleLen = 200

type titleInput struct {
	Title string `validate:"required,max=200"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeTitle trims surrounding whitespace and checks the result is
// non-empty and at most MaxTitleLen runes long.
func NormalizeTitle(s string) (string, error) {
	in := titleInput{Title: strings.TrimSpace(s)}
	if err := validate.Struct(in); err != nil {
		return "", err
	}
	return in.Title, nil
}

// Stats counts completed and pending items.
func Stats(items []Item) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// DisplayOrder returns a copy of items with completed entries moved after
// pending ones. Relative order inside each group is kept.
func DisplayOrder(items []Item) []Item {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b Item) int {
		switch {
		case a.Completed == b.Completed:
			return 0
		case a.Completed:
			return 1
		default:
			return -1
		}
	})
	return out
}
