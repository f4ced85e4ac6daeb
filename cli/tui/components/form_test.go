package components

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
)

func TestFormWrapper(t *testing.T) {
	t.Run("Should mark the form canceled on ctrl+c", func(t *testing.T) {
		var name string
		form := huh.NewForm(huh.NewGroup(huh.NewInput().Title("Name").Value(&name)))
		w := NewFormWrapper(context.Background(), form)
		w.Init()
		_, cmd := w.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		assert.NotNil(t, cmd)
		assert.True(t, w.IsCanceled())
		assert.False(t, w.IsCompleted())
		assert.Empty(t, w.View())
	})
}

func TestRenderBanner(t *testing.T) {
	t.Run("Should render a non-empty banner", func(t *testing.T) {
		assert.NotEmpty(t, RenderBanner(80))
	})
}
