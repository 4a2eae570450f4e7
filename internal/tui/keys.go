package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit         key.Binding
	ForceQuit    key.Binding
	NextView     key.Binding
	Calendar     key.Binding
	Transactions key.Binding
	Stats        key.Binding
	Assistant    key.Binding
	Left         key.Binding
	Right        key.Binding
	Up           key.Binding
	Down         key.Binding
	PrevMonth    key.Binding
	NextMonth    key.Binding
	PrevYear     key.Binding
	NextYear     key.Binding
	Filter       key.Binding
	Period       key.Binding
	Delete       key.Binding
	Refresh      key.Binding
	Reset        key.Binding
	Submit       key.Binding
	Confirm      key.Binding
	Cancel       key.Binding
	Back         key.Binding
	ToggleType   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:    key.NewBinding(key.WithKeys("ctrl+c")),
		NextView:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		Calendar:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "calendar")),
		Transactions: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "transactions")),
		Stats:        key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "statistics")),
		Assistant:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "assistant")),
		Left:         key.NewBinding(key.WithKeys("left", "h")),
		Right:        key.NewBinding(key.WithKeys("right", "l")),
		Up:           key.NewBinding(key.WithKeys("up", "k")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
		PrevMonth:    key.NewBinding(key.WithKeys("["), key.WithHelp("[/]", "month")),
		NextMonth:    key.NewBinding(key.WithKeys("]")),
		PrevYear:     key.NewBinding(key.WithKeys("{"), key.WithHelp("{/}", "year")),
		NextYear:     key.NewBinding(key.WithKeys("}")),
		Filter:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "category filter")),
		Period:       key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "period")),
		Delete:       key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "delete")),
		Refresh:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Reset:        key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset cache")),
		Submit:       key.NewBinding(key.WithKeys("enter")),
		Confirm:      key.NewBinding(key.WithKeys("enter", "y"), key.WithHelp("enter", "save")),
		Cancel:       key.NewBinding(key.WithKeys("esc", "n"), key.WithHelp("esc", "discard")),
		Back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		ToggleType:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "income/expense")),
	}
}

// help renders bindings as "[k] desc" pairs.
func help(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		if i > 0 && out != "" {
			out += "  "
		}
		out += "[" + h.Key + "] " + h.Desc
	}
	return out
}
