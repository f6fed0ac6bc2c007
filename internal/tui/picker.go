// Package tui provides the interactive soundcard picker.
package tui

import (
	"fmt"
	"strings"

	"rtlpower/internal/audio"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))
)

// Sample rates offered for soundcard receivers.
var sampleRates = []float64{48000, 96000, 192000}

var (
	keyQuit  = key.NewBinding(key.WithKeys("q", "ctrl+c"))
	keyUp    = key.NewBinding(key.WithKeys("up", "k"))
	keyDown  = key.NewBinding(key.WithKeys("down", "j"))
	keyEnter = key.NewBinding(key.WithKeys("enter"))
	keyBack  = key.NewBinding(key.WithKeys("esc"))
)

// ScreenType defines which screen is currently active
type ScreenType int

const (
	ListScreen ScreenType = iota
	RateScreen
)

// Selection is the device and rate the user confirmed.
type Selection struct {
	Device     audio.Device
	SampleRate float64
}

// Args returns the command line that captures from the selection.
func (s Selection) Args() string {
	return fmt.Sprintf("--input soundcard --device %d --rate %.0f", s.Device.ID, s.SampleRate)
}

// PickerModel is the Bubble Tea model for choosing an I/Q soundcard.
type PickerModel struct {
	devices       []audio.Device
	selectedIndex int
	rateIndex     int
	viewport      viewport.Model
	ready         bool
	err           error
	notice        string
	activeScreen  ScreenType
	selection     *Selection

	fetch func() ([]audio.Device, error)
}

type devicesMsg struct {
	devices []audio.Device
}

type errMsg struct {
	err error
}

// NewPickerModel creates a picker listing the devices returned by fetch.
func NewPickerModel(fetch func() ([]audio.Device, error)) PickerModel {
	return PickerModel{
		activeScreen: ListScreen,
		fetch:        fetch,
	}
}

// Init fetches the device list.
func (m PickerModel) Init() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		devices, err := fetch()
		if err != nil {
			return errMsg{err}
		}
		return devicesMsg{devices}
	}
}

// Update handles input and updates the model.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()

	case devicesMsg:
		m.devices = msg.devices
		m.refresh()

	case errMsg:
		m.err = msg.err

	case tea.KeyMsg:
		if key.Matches(msg, keyQuit) {
			return m, tea.Quit
		}

		switch m.activeScreen {
		case ListScreen:
			return m.updateList(msg)
		case RateScreen:
			return m.updateRate(msg)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m PickerModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch {
	case key.Matches(msg, keyUp):
		if m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case key.Matches(msg, keyDown):
		if m.selectedIndex < len(m.devices)-1 {
			m.selectedIndex++
		}
	case key.Matches(msg, keyEnter):
		if len(m.devices) == 0 {
			break
		}
		device := m.devices[m.selectedIndex]
		if !device.CanCaptureIQ() {
			m.notice = fmt.Sprintf("%s has %d input channel(s); I/Q needs 2.", device.Name, device.MaxInputChannels)
			break
		}
		m.activeScreen = RateScreen
		m.rateIndex = 0
		for i, rate := range sampleRates {
			if rate == device.DefaultSampleRate {
				m.rateIndex = i
			}
		}
	}
	m.refresh()
	return m, nil
}

func (m PickerModel) updateRate(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyBack):
		m.activeScreen = ListScreen
	case key.Matches(msg, keyUp):
		if m.rateIndex > 0 {
			m.rateIndex--
		}
	case key.Matches(msg, keyDown):
		if m.rateIndex < len(sampleRates)-1 {
			m.rateIndex++
		}
	case key.Matches(msg, keyEnter):
		m.selection = &Selection{
			Device:     m.devices[m.selectedIndex],
			SampleRate: sampleRates[m.rateIndex],
		}
		return m, tea.Quit
	}
	m.refresh()
	return m, nil
}

func (m *PickerModel) refresh() {
	if !m.ready {
		return
	}
	if m.activeScreen == RateScreen {
		m.viewport.SetContent(m.renderRates())
	} else {
		m.viewport.SetContent(m.renderDevices())
	}
}

// Selection returns the confirmed choice, if any.
func (m PickerModel) Selection() (Selection, bool) {
	if m.selection == nil {
		return Selection{}, false
	}
	return *m.selection, true
}

// View renders the UI
func (m PickerModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to exit.", m.err)
	}
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("I/Q Soundcard")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Choose • q: Quit")
	} else {
		title = titleStyle.Render("Sample Rate")
		help = infoStyle.Render("↑/↓: Change • Enter: Confirm • Esc: Back • q: Quit")
	}
	if m.notice != "" {
		help = highlightStyle.Render(m.notice) + "\n" + help
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list, dimming devices without two inputs.
func (m PickerModel) renderDevices() string {
	if len(m.devices) == 0 {
		return "No audio devices found."
	}

	var sb strings.Builder
	for i, device := range m.devices {
		line := fmt.Sprintf("[%d] %s\n    Inputs: %d, default rate: %.0f Hz\n",
			device.ID, device.Name, device.MaxInputChannels, device.DefaultSampleRate)

		switch {
		case i == m.selectedIndex:
			line = highlightStyle.Render(line)
		case !device.CanCaptureIQ():
			line = mutedStyle.Render(line)
		}

		sb.WriteString(line)
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderRates formats the sample rate screen.
func (m PickerModel) renderRates() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Device: %s\n\n", m.devices[m.selectedIndex].Name)

	for i, rate := range sampleRates {
		marker := " "
		if i == m.rateIndex {
			marker = "▶"
		}
		line := fmt.Sprintf("  %s %.0f Hz\n", marker, rate)
		if i == m.rateIndex {
			line = highlightStyle.Render(line)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// PickDevice runs the picker full screen and returns the user's choice.
func PickDevice() (Selection, bool, error) {
	p := tea.NewProgram(
		NewPickerModel(audio.GetDevices),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil {
		return Selection{}, false, err
	}
	sel, ok := final.(PickerModel).Selection()
	return sel, ok, nil
}
