package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/items/internal/controller"
	"github.com/idilsaglam/items/internal/ui"
)

// Title heads the screen.
const Title = "Items Manager"

type focus int

const (
	focusName focus = iota
	focusDescription
	focusList
)

// Options tune the program.
type Options struct {
	Logger   *log.Logger
	Location *time.Location // timestamps render here; nil means time.Local
}

type modelTUI struct {
	ctrl *controller.Controller

	list    list.Model
	name    textinput.Model
	desc    textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap
	focus   focus

	width, height int
}

func newModel(ctrl *controller.Controller, opt Options) modelTUI {
	l := list.New(nil, itemDelegate{loc: opt.Location}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowPagination(true)
	l.Styles.PaginationStyle = ui.Current().Muted
	l.DisableQuitKeybindings()

	name := textinput.New()
	name.Prompt = "> "
	name.Placeholder = "Name *"
	name.CharLimit = 100
	name.Focus()

	desc := textinput.New()
	desc.Prompt = "> "
	desc.Placeholder = "Description"
	desc.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.Current().Accent

	m := modelTUI{
		ctrl:    ctrl,
		list:    l,
		name:    name,
		desc:    desc,
		spinner: sp,
		help:    help.New(),
		keys:    newKeyMap(),
		focus:   focusName,
		width:   80,
		height:  24,
	}
	m.resize()
	return m
}

// Run starts the program against api and blocks until the user quits.
// Requests still in flight at exit are cancelled.
func Run(ctx context.Context, api controller.API, opt Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := controller.New(ctx, api, opt.Logger)
	p := tea.NewProgram(newModel(ctrl, opt), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Init issues the initial fetch on mount.
func (m modelTUI) Init() tea.Cmd {
	return tea.Batch(m.ctrl.LoadItems(), m.spinner.Tick, textinput.Blink)
}

func (m modelTUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handled, cmd := m.ctrl.Update(msg); handled {
		sync := m.syncFromState()
		return m, tea.Batch(cmd, sync)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.focus == focusList {
			return m.updateList(msg)
		}
		return m.updateForm(msg)
	}

	return m.forwardToFocused(msg)
}

func (m modelTUI) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.ctrl.SetInputs(m.name.Value(), m.desc.Value())
		return m, m.ctrl.Submit()
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus(m.focus + 1)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus(m.focus + 2)
	case key.Matches(msg, m.keys.Back):
		return m, m.setFocus(focusList)
	}
	return m.forwardToFocused(msg)
}

func (m modelTUI) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		return m, m.setFocus(focusName)
	case key.Matches(msg, m.keys.Prev):
		return m, m.setFocus(focusDescription)
	case key.Matches(msg, m.keys.Add):
		return m, m.setFocus(focusName)
	case key.Matches(msg, m.keys.Reload):
		return m, m.ctrl.LoadItems()
	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.list.SelectedItem().(listItem); ok {
			return m, m.ctrl.DeleteItem(it.item.ID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m modelTUI) forwardToFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusName:
		m.name, cmd = m.name.Update(msg)
	case focusDescription:
		m.desc, cmd = m.desc.Update(msg)
	default:
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	m.ctrl.SetInputs(m.name.Value(), m.desc.Value())
	return m, cmd
}

// setFocus moves focus, wrapping around the three targets.
func (m *modelTUI) setFocus(f focus) tea.Cmd {
	m.focus = f % 3
	m.name.Blur()
	m.desc.Blur()
	switch m.focus {
	case focusName:
		return m.name.Focus()
	case focusDescription:
		return m.desc.Focus()
	}
	return nil
}

// syncFromState pushes controller state into the widgets after a settled
// request: the list mirrors Items, the inputs mirror the (possibly cleared)
// form fields.
func (m *modelTUI) syncFromState() tea.Cmd {
	st := m.ctrl.State()
	if m.name.Value() != st.NameInput {
		m.name.SetValue(st.NameInput)
	}
	if m.desc.Value() != st.DescriptionInput {
		m.desc.SetValue(st.DescriptionInput)
	}
	return m.list.SetItems(toListItems(st.Items))
}

func (m *modelTUI) resize() {
	inner := m.width - 4
	if inner < 20 {
		inner = 20
	}
	m.name.Width = inner - 4
	m.desc.Width = inner - 4
	m.help.Width = inner
	// title, error, form (4), gap, help, borders
	h := m.height - 12
	if h < 4 {
		h = 4
	}
	m.list.SetSize(inner, h)
}

func (m modelTUI) View() string {
	t := ui.Current()
	st := m.ctrl.State()

	header := t.Title.Render(Title)
	if m.ctrl.Loading() {
		header += " " + m.spinner.View()
	}
	sections := []string{header}
	if st.ErrorMessage != "" {
		sections = append(sections, t.Error.Render(st.ErrorMessage))
	}

	form := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.Frame).
		Padding(0, 1).
		Render(m.name.View() + "\n" + m.desc.View())
	sections = append(sections, form)

	if len(st.Items) == 0 {
		sections = append(sections, t.Muted.Render(ui.EmptyMessage))
	} else {
		sections = append(sections, m.list.View())
	}

	var km help.KeyMap = formKeys{m.keys}
	if m.focus == focusList {
		km = listKeys{m.keys}
	}
	sections = append(sections, m.help.View(km))

	return panelString(strings.Join(sections, "\n"))
}

func panelString(inner string) string {
	t := ui.Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.Frame).
		Padding(0, 1)
	return border.Render(inner)
}
