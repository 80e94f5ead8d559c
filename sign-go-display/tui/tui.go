package tui

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sign-tools/sign-go-display/display"
	"sign-tools/sign-go-display/template"
	"sign-tools/sign-go-display/version"
	"sign-tools/sign-go-display/words"
)

// --- STYLES ---
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#575B7E")).
			Padding(0, 1)

	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))

	statusKeyStyle = lipgloss.NewStyle().Bold(true)

	videoModeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	idleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeBitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)

	colName     = lipgloss.NewStyle().Width(22).Padding(0, 1)
	colAddr     = lipgloss.NewStyle().Width(10).Align(lipgloss.Right).Padding(0, 1)
	colPriority = lipgloss.NewStyle().Width(8).Align(lipgloss.Right).Padding(0, 1)
	colState    = lipgloss.NewStyle().Width(8).Padding(0, 1)
	colText     = lipgloss.NewStyle().Width(48).Padding(0, 1)
)

// --- MODEL ---
type tickMsg time.Time

type Model struct {
	state          *display.SignState
	log            *log.Logger
	viewport       viewport.Model
	textInput      textinput.Model
	ready          bool
	lastDataRender string
	cmdResult      string
}

func NewModel(st *display.SignState, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = `render NIVEL: {Word[3]/10} m | preview {Real[10]:1} | check {Int[200]}`
	ti.Focus()

	return Model{
		state:     st,
		log:       logger,
		textInput: ti,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// --- UPDATE ---
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.textInput.Focused() {
			switch msg.Type {
			case tea.KeyEnter:
				m.handleCommand()
				return m, nil
			case tea.KeyCtrlC, tea.KeyEsc:
				m.textInput.Blur()
				return m, nil
			}
		} else {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "i", "c":
				m.textInput.Focus()
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		topPaneHeight := 10
		feedPaneHeight := 4
		footerHeight := 3
		verticalMargin := topPaneHeight + feedPaneHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMargin)
			m.viewport.Style = baseStyle
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMargin
		}
		m.lastDataRender = ""

	case tickMsg:
		newRender := m.renderBitsPane()
		if m.lastDataRender != newRender {
			m.viewport.SetContent(newRender)
			m.lastDataRender = newRender
		}
		return m, tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
	}

	if m.textInput.Focused() {
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleCommand runs the template authoring commands: render evaluates a
// template against the live snapshot, preview against random values, check
// reports validation problems.
func (m *Model) handleCommand() {
	input := strings.TrimSpace(m.textInput.Value())
	defer m.textInput.SetValue("")
	if input == "" {
		return
	}
	m.log.Printf("TUI: User input: '%s'", input)

	command := input
	arg := ""
	if idx := strings.IndexByte(input, ' '); idx > 0 {
		command = input[:idx]
		arg = strings.TrimSpace(input[idx+1:])
	}

	switch strings.ToLower(command) {
	case "render", "r":
		if arg == "" {
			m.cmdResult = "Error: 'render' requires a template."
			return
		}
		snap, _, _, _, _ := m.state.View()
		m.cmdResult = fmt.Sprintf("render: %q", template.Render(arg, snap))
	case "preview", "p":
		if arg == "" {
			m.cmdResult = "Error: 'preview' requires a template."
			return
		}
		m.cmdResult = fmt.Sprintf("preview: %q", template.Render(arg, template.PreviewSnapshot()))
	case "check", "k":
		if arg == "" {
			m.cmdResult = "Error: 'check' requires a template."
			return
		}
		problems := template.Validate(arg)
		if len(problems) == 0 {
			indices := template.WordIndices(arg)
			m.cmdResult = fmt.Sprintf("check: OK, reads words %v", indices)
		} else {
			m.cmdResult = "check: " + strings.Join(problems, "; ")
		}
	default:
		m.cmdResult = fmt.Sprintf("Error: Unknown command '%s'.", command)
	}
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	topPanes := lipgloss.JoinHorizontal(lipgloss.Left,
		m.renderSignPane(),
		m.renderStatusPane(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		topPanes,
		m.renderFeedPane(),
		m.viewport.View(),
		m.renderFooter(),
	)
}

// renderSignPane shows what the LED sign is showing right now.
func (m Model) renderSignPane() string {
	_, _, out, _, _ := m.state.View()
	var content strings.Builder
	content.WriteString(titleStyle.Render("Sign Output") + "\n")

	switch {
	case out.Mode == display.ModeVideo && out.Video != nil:
		content.WriteString(videoModeStyle.Render(fmt.Sprintf("VIDEO %d/%d: %s", out.VideoIndex+1, out.VideoCount, out.Video.Name)) + "\n")
		content.WriteString(idleStyle.Render(out.Video.FilePath) + "\n")
		content.WriteString(fmt.Sprintf("Duration: %ds", out.Video.DurationSeconds))
	case out.Message != nil:
		style := lipgloss.NewStyle().Bold(out.Message.Config.FontWeight == "bold")
		if out.Message.Config.Color != "" {
			style = style.Foreground(lipgloss.Color(out.Message.Config.Color))
		}
		pos := lipgloss.Center
		switch out.Message.Config.Position {
		case "top":
			pos = lipgloss.Top
		case "bottom":
			pos = lipgloss.Bottom
		}
		content.WriteString(lipgloss.PlaceVertical(4, pos, style.Render(out.Message.Text)) + "\n")
		content.WriteString(idleStyle.Render(fmt.Sprintf("[%s] priority %d, %d active",
			out.Message.Config.Name, out.Message.Config.Priority, out.ActiveCount)))
	default:
		content.WriteString(idleStyle.Render("(blank)"))
	}

	paneWidth := m.viewport.Width / 2
	return baseStyle.Width(paneWidth).Height(8).Render(content.String())
}

func (m Model) renderStatusPane() string {
	_, cfg, out, rx, status := m.state.View()
	controlBit := "unset"
	if cfg != nil {
		controlBit = fmt.Sprintf("Word[%d].%d", cfg.ControlBit.WordIndex, cfg.ControlBit.BitIndex)
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Status"),
		statusKeyStyle.Render("Version:     ")+version.Version,
		statusKeyStyle.Render("Mode:        ")+out.Mode.String(),
		statusKeyStyle.Render("Control Bit: ")+controlBit,
		statusKeyStyle.Render("RX Count:    ")+fmt.Sprintf("%d", rx.Count),
		" ",
		statusKeyStyle.Render("Status:"),
		status,
	)
	leftPaneWidth := m.viewport.Width / 2
	rightPaneWidth := m.viewport.Width - leftPaneWidth - 3
	return baseStyle.Width(rightPaneWidth).Height(8).Render(content)
}

func (m Model) renderFeedPane() string {
	_, _, _, rx, _ := m.state.View()
	var content strings.Builder
	content.WriteString(titleStyle.Render("Last Feed Packet (Hex)") + "\n")
	content.WriteString(fmt.Sprintf("RX [%d]: [%s] %s", rx.Count, rx.Timestamp, rx.Hex) + "\n")
	if m.cmdResult != "" {
		content.WriteString(m.cmdResult)
	}
	return baseStyle.Width(m.viewport.Width - 2).Render(content.String())
}

// renderBitsPane lists every configured bit with its live state and the
// text it would show, sorted by address.
func (m Model) renderBitsPane() string {
	snap, cfg, _, _, _ := m.state.View()

	var content strings.Builder
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		colName.Render("Name"),
		colAddr.Render("Address"),
		colPriority.Render("Priority"),
		colState.Render("State"),
		colText.Render("Text"),
	)
	content.WriteString(titleStyle.Width(m.viewport.Width).Render(header) + "\n")

	if cfg == nil {
		return content.String()
	}

	active := display.Resolve(snap, cfg.Bits)
	shownKey := ""
	if len(active) > 0 {
		shownKey = fmt.Sprintf("%d/%d", active[0].Config.WordIndex, active[0].Config.BitIndex)
	}

	bits := make([]int, 0, len(cfg.Bits))
	for i := range cfg.Bits {
		bits = append(bits, i)
	}
	sort.SliceStable(bits, func(i, j int) bool {
		a, b := cfg.Bits[bits[i]], cfg.Bits[bits[j]]
		if a.WordIndex != b.WordIndex {
			return a.WordIndex < b.WordIndex
		}
		return a.BitIndex < b.BitIndex
	})

	for _, i := range bits {
		bc := cfg.Bits[i]
		raw, _ := snap.Word(bc.WordIndex)
		bitOn := words.ExtractBit(raw, bc.BitIndex)

		state := "off"
		style := lipgloss.NewStyle()
		switch {
		case !bc.Enabled:
			state = "disabled"
			style = idleStyle
		case bitOn:
			state = "ACTIVE"
			style = activeBitStyle
		}

		text := bc.Message
		if bc.UseTemplate && strings.TrimSpace(bc.MessageTemplate) != "" {
			text = template.Render(bc.MessageTemplate, snap)
		}
		name := bc.Name
		if shownKey == fmt.Sprintf("%d/%d", bc.WordIndex, bc.BitIndex) {
			name = "> " + name
		}

		line := lipgloss.JoinHorizontal(lipgloss.Left,
			colName.Render(name),
			colAddr.Render(fmt.Sprintf("%d.%d", bc.WordIndex, bc.BitIndex)),
			colPriority.Render(fmt.Sprintf("%d", bc.Priority)),
			colState.Render(state),
			colText.Render(text),
		)
		content.WriteString(style.Render(line) + "\n")
	}
	return content.String()
}

func (m Model) renderFooter() string {
	help := "Use arrow keys or mouse to scroll | (i) to input command | (q) to quit"
	if m.textInput.Focused() {
		help = "render/preview/check <template> | Esc to cancel"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.textInput.View(),
		help,
	)
}
