package components

import "github.com/charmbracelet/bubbles/key"

// GridKeyMap defines key bindings for the staff grid
type GridKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	JumpPage  key.Binding
	PageSize  key.Binding
	Sort      key.Binding
	Search    key.Binding
	Edit      key.Binding
	EditCell  key.Binding
	Accept    key.Binding
	Cancel    key.Binding
	Delete    key.Binding
	Promote   key.Binding
	Copy      key.Binding
	Export    key.Binding
	Refresh   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newGridBinding(keys []string, help, display string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(display, help),
	)
}

// DefaultGridKeyMap returns the default key bindings
func DefaultGridKeyMap() GridKeyMap {
	return GridKeyMap{
		Up:        newGridBinding([]string{"up", "k"}, "up", "↑/k"),
		Down:      newGridBinding([]string{"down", "j"}, "down", "↓/j"),
		Left:      newGridBinding([]string{"left", "h"}, "prev column", "←/h"),
		Right:     newGridBinding([]string{"right", "l"}, "next column", "→/l"),
		NextPage:  newGridBinding([]string{"n", "pgdown"}, "next page", "n"),
		PrevPage:  newGridBinding([]string{"p", "pgup"}, "prev page", "p"),
		FirstPage: newGridBinding([]string{"home", "g"}, "first page", "g"),
		LastPage:  newGridBinding([]string{"end", "G"}, "last page", "G"),
		JumpPage:  newGridBinding([]string{":"}, "go to page", ":"),
		PageSize:  newGridBinding([]string{"z"}, "page size", "z"),
		Sort:      newGridBinding([]string{"s"}, "sort column", "s"),
		Search:    newGridBinding([]string{"/"}, "search column", "/"),
		Edit:      newGridBinding([]string{"e"}, "edit row", "e"),
		EditCell:  newGridBinding([]string{"enter"}, "edit cell", "enter"),
		Accept:    newGridBinding([]string{"a"}, "keep edits", "a"),
		Cancel:    newGridBinding([]string{"u"}, "undo edits", "u"),
		Delete:    newGridBinding([]string{"d"}, "delete", "d"),
		Promote:   newGridBinding([]string{"P"}, "toggle admin", "P"),
		Copy:      newGridBinding([]string{"y"}, "copy rut", "y"),
		Export:    newGridBinding([]string{"x"}, "export page", "x"),
		Refresh:   newGridBinding([]string{"r"}, "refresh", "r"),
		Help:      newGridBinding([]string{"?"}, "help", "?"),
		Quit:      newGridBinding([]string{"q", "ctrl+c"}, "quit", "q"),
	}
}

// ShortHelp implements help.KeyMap
func (k GridKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.Search, k.Edit, k.NextPage, k.PrevPage, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k GridKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.NextPage, k.PrevPage, k.FirstPage, k.LastPage, k.JumpPage, k.PageSize},
		{k.Sort, k.Search, k.Refresh, k.Copy, k.Export},
		{k.Edit, k.EditCell, k.Accept, k.Cancel, k.Delete, k.Promote},
		{k.Help, k.Quit},
	}
}

// readOnly disables the bindings a user viewer cannot act on
func (k GridKeyMap) readOnly() GridKeyMap {
	for _, b := range []*key.Binding{&k.Edit, &k.EditCell, &k.Accept, &k.Cancel, &k.Delete, &k.Promote} {
		b.SetEnabled(false)
	}
	return k
}

// withoutPromote disables the role toggle for admins
func (k GridKeyMap) withoutPromote() GridKeyMap {
	k.Promote.SetEnabled(false)
	return k
}
