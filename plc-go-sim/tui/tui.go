package tui

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sign-tools/plc-go-sim/sim"
)

type Model struct {
	sim           *sim.Simulator
	log           *log.Logger
	datastore     []uint16
	prevData      []uint16
	textInput     textinput.Model
	status        string
	width, height int
}
type tickMsg time.Time

func NewModel(s *sim.Simulator, logger *log.Logger) Model {
	ti := textinput.New()
	ti.Placeholder = "set 5 3 | clear 5 3 | word 10 1234 | real 20 3.14"
	ti.Focus()
	ti.CharLimit = 156
	ti.Width = 80
	return Model{
		sim:       s,
		log:       logger,
		textInput: ti,
		status:    "Press Ctrl+C to quit.",
	}
}

func (m Model) Init() tea.Cmd {
	return doTick
}

func doTick() tea.Msg {
	time.Sleep(500 * time.Millisecond)
	return tickMsg{}
}

func (m *Model) handleCommand() {
	input := strings.TrimSpace(m.textInput.Value())
	if input == "" {
		return
	}
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])

	switch command {
	case "set", "clear":
		if len(parts) < 3 {
			m.status = "Error: 'set'/'clear' require word and bit."
			return
		}
		word, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = fmt.Sprintf("Error: Invalid word index '%s'.", parts[1])
			return
		}
		bit, err := strconv.ParseUint(parts[2], 10, 8)
		if err != nil || bit > 15 {
			m.status = fmt.Sprintf("Error: Invalid bit index '%s'.", parts[2])
			return
		}
		m.sim.CommandChan <- sim.SetBitCmd{Word: word, Bit: uint(bit), Val: command == "set"}
		m.status = fmt.Sprintf("Success: Queued %s Word[%d].%d.", command, word, bit)
	case "word", "w":
		if len(parts) < 3 {
			m.status = "Error: 'word' requires index and value."
			return
		}
		word, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = fmt.Sprintf("Error: Invalid word index '%s'.", parts[1])
			return
		}
		val, err := strconv.ParseUint(parts[2], 10, 16)
		if err != nil {
			m.status = fmt.Sprintf("Error: Invalid value '%s'.", parts[2])
			return
		}
		m.sim.CommandChan <- sim.WriteWordCmd{Word: word, Value: uint16(val)}
		m.status = fmt.Sprintf("Success: Queued write %d to Word[%d].", val, word)
	case "real", "r":
		if len(parts) < 3 {
			m.status = "Error: 'real' requires index and value."
			return
		}
		word, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = fmt.Sprintf("Error: Invalid word index '%s'.", parts[1])
			return
		}
		val, err := strconv.ParseFloat(parts[2], 32)
		if err != nil {
			m.status = fmt.Sprintf("Error: Invalid value '%s'.", parts[2])
			return
		}
		m.sim.CommandChan <- sim.WriteRealCmd{Word: word, Value: float32(val)}
		m.status = fmt.Sprintf("Success: Queued real %s to Word[%d]/Word[%d].", parts[2], word, word+1)
	default:
		m.status = fmt.Sprintf("Error: Unknown command '%s'.", command)
	}
	m.textInput.SetValue("")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.handleCommand()
			return m, nil
		}
	case tickMsg:
		m.prevData = m.datastore
		m.datastore = m.sim.GetDatastoreSnapshot()
		return m, doTick
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// View lists only non-zero registers plus their neighbours so a 256-word
// image stays readable. Pairs of words that decode to a plausible float are
// shown both ways.
func (m Model) View() string {
	var b strings.Builder
	changedStyle := lipgloss.NewStyle().Reverse(true)
	b.WriteString("--- PLC Sign Feed Simulator ---\n\n")
	b.WriteString(fmt.Sprintf("Status: %s | Packets sent: %d\n\n", m.sim.Status(), m.sim.TxCount()))

	for i, currentVal := range m.datastore {
		if currentVal == 0 {
			continue
		}
		isChanged := len(m.prevData) == len(m.datastore) && m.prevData[i] != currentVal

		line := fmt.Sprintf("Word[%3d]: %-6d 0x%04X (%016b) signed: %d",
			i, currentVal, currentVal, currentVal, int16(currentVal))
		if i+1 < len(m.datastore) {
			f := math.Float32frombits(uint32(currentVal)<<16 | uint32(m.datastore[i+1]))
			if !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0) && f != 0 {
				line += fmt.Sprintf(" real(%d,%d): %.4f", i, i+1, f)
			}
		}
		line += "\n"

		if isChanged {
			b.WriteString(changedStyle.Render(line))
		} else {
			b.WriteString(line)
		}
	}

	footer := fmt.Sprintf("\n%s\n%s", m.textInput.View(), m.status)
	return b.String() + footer
}
