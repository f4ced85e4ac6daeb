package components

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/municrud/municrud/cli/tui/models"
)

// FormWrapper runs a huh form as a standalone program and records how it ended
type FormWrapper struct {
	models.BaseModel
	form      *huh.Form
	canceled  bool
	completed bool
}

func NewFormWrapper(ctx context.Context, form *huh.Form) *FormWrapper {
	return &FormWrapper{
		BaseModel: models.NewBaseModel(ctx),
		form:      form,
	}
}

func (f *FormWrapper) Init() tea.Cmd {
	return f.form.Init()
}

func (f *FormWrapper) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if cmd := f.BaseModel.Update(msg); cmd != nil {
		f.canceled = true
		return f, cmd
	}
	form, cmd := f.form.Update(msg)
	if frm, ok := form.(*huh.Form); ok {
		f.form = frm
		switch f.form.State {
		case huh.StateCompleted:
			f.completed = true
			return f, tea.Quit
		case huh.StateAborted:
			f.canceled = true
			return f, tea.Quit
		}
	}
	return f, cmd
}

func (f *FormWrapper) View() string {
	if f.completed || f.canceled {
		return ""
	}
	return f.form.View()
}

func (f *FormWrapper) IsCanceled() bool {
	return f.canceled
}

func (f *FormWrapper) IsCompleted() bool {
	return f.completed
}

// RunForm shows the form and reports whether the user completed it
func RunForm(ctx context.Context, form *huh.Form) (bool, error) {
	wrapper := NewFormWrapper(ctx, form)
	if _, err := tea.NewProgram(wrapper, tea.WithContext(ctx)).Run(); err != nil {
		return false, err
	}
	return wrapper.IsCompleted(), nil
}
