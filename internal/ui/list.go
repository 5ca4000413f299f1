package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/chainydev/chainyctl/internal/services"
)

var _ list.Item = linkItem{}

// linkItem wraps [services.Link] to implement [list.Item].
type linkItem struct {
	link services.Link
}

func (i linkItem) FilterValue() string { return i.link.Code }
func (i linkItem) Title() string       { return i.link.Code }
func (i linkItem) Description() string {
	desc := i.link.Target
	if i.link.Visits > 0 {
		desc = fmt.Sprintf("%s • %d visits", desc, i.link.Visits)
	}
	return desc
}
