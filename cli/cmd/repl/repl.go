// Package repl implements the interactive evaluation shell.
package repl

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/prestyle/log"
)

const prompt = "➜ "

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	sentinelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Config configures [Run].
type Config struct {
	File     string // module loaded at start; may be empty
	Load     Loader
	CacheDir string // holds the history file; empty disables persistence
	Logger   log.Logger

	// Input and Output override the terminal, mainly for tests.
	Input  io.Reader
	Output io.Writer
}

// Run starts the REPL and blocks until the user quits or ctx is done.
func Run(ctx context.Context, cfg Config) error {
	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("file", cfg.File),
		slog.String("cache_dir", cfg.CacheDir))

	sess, err := newSession(ctx, cfg.Load, cfg.File, cfg.Logger)
	if err != nil {
		return err
	}

	var history *History
	if cfg.CacheDir == "" {
		history = NewHistory("")
	} else {
		history = NewHistory(filepath.Join(cfg.CacheDir, baseHistory))
	}

	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.Input != nil {
		opts = append(opts, tea.WithInput(cfg.Input))
	}

	if cfg.Output != nil {
		opts = append(opts, tea.WithOutput(cfg.Output))
	}

	_, err = tea.NewProgram(newModel(ctx, sess, history), opts...).Run()

	return err
}

const defaultWidth = 80

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx     context.Context
	sess    *session
	input   textinput.Model
	history *History
	histIdx int // == history.Len() when not browsing
	comp    completion
	sugg    int  // selected candidate while tab-cycling
	tabbing bool // input holds a candidate chosen with Tab
	width   int
	quit    bool
}

func newModel(ctx context.Context, sess *session, history *History) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	return model{
		ctx:     ctx,
		sess:    sess,
		input:   ti,
		history: history,
		histIdx: history.Len(),
		width:   defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(prompt)-2, 1)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quit {
		return ""
	}

	var hint string

	switch {
	case m.histIdx < m.history.Len():
		hint = hintStyle.Render("history " + strconv.Itoa(m.histIdx+1) + "/" + strconv.Itoa(m.history.Len()))
	case strings.TrimSpace(m.input.Value()) == "":
		hint = hintStyle.Render("Type an expression, or :help for commands")
	default:
		sel := -1
		if m.tabbing {
			sel = m.sugg
		}

		hint = renderCandidateBar(m.comp.matches, sel, m.width)
	}

	return m.input.View() + "\n" + hint + "\n"
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlD:
		m.quit = true

		return m, tea.Quit

	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quit = true

			return m, tea.Quit
		}

		m.input.Reset()
		m.refresh()

		return m, nil

	case tea.KeyEnter:
		return m.execute()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.browse(-1), nil

	case tea.KeyDown:
		return m.browse(1), nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.histIdx = m.history.Len()
	m.refresh()

	return m, cmd
}

// refresh recomputes the completion candidates for the current input.
func (m *model) refresh() {
	m.tabbing = false
	m.sugg = 0
	m.comp = m.sess.complete(m.ctx, m.input.Value(), m.input.Position())
}

// cycle replaces the word at the cursor with the next (dir > 0) or
// previous candidate.
func (m model) cycle(dir int) model {
	n := len(m.comp.matches)
	if n == 0 {
		return m
	}

	if m.tabbing {
		m.sugg = (m.sugg + dir + n) % n
	} else if dir < 0 {
		m.sugg = n - 1
	}

	m.tabbing = true

	s := m.comp.matches[m.sugg].Str
	in := m.input.Value()

	m.input.SetValue(in[:m.comp.start] + s + in[m.comp.end:])
	m.input.SetCursor(m.comp.start + len(s))
	m.comp.end = m.comp.start + len(s)

	return m
}

// browse moves through the history.
func (m model) browse(dir int) model {
	i := m.histIdx + dir
	if i < 0 || i > m.history.Len() {
		return m
	}

	m.histIdx = i

	line, err := m.history.Line(i)
	if err != nil {
		line = ""
	}

	m.input.SetValue(line)
	m.input.CursorEnd()
	m.comp = completion{}

	return m
}

// execute runs the input line and prints it, with its output, above the
// prompt.
func (m model) execute() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())

	m.input.Reset()
	m.comp = completion{}
	m.tabbing = false

	if line == "" {
		return m, nil
	}

	if err := m.history.Add(line); err != nil {
		m.sess.logger.WarnContext(m.ctx, "could not save history", slog.Any("error", err))
	}

	m.histIdx = m.history.Len()

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(line))

	out, act := m.sess.run(m.ctx, line)

	switch act {
	case actionQuit:
		m.quit = true

		return m, tea.Sequence(echo, tea.Quit)
	case actionClear:
		return m, tea.Sequence(tea.ClearScreen, echo)
	}

	if out == "" {
		return m, echo
	}

	return m, tea.Sequence(echo, tea.Println(out))
}

// action is the effect of a line on the terminal.
type action int

const (
	actionPrint action = iota
	actionClear
	actionQuit
)

// run executes one input line and returns its rendered output.
func (s *session) run(ctx context.Context, line string) (string, action) {
	if !strings.HasPrefix(line, ":") {
		out, err := s.eval(ctx, line)
		if err != nil {
			return errorStyle.Render(err.Error()), actionPrint
		}

		return out, actionPrint
	}

	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	name, arg = strings.TrimSpace(name), strings.TrimSpace(arg)

	switch name {
	case "q", "quit", "exit":
		return "", actionQuit
	case "clear":
		return "", actionClear
	}

	h, ok := handlers[name]
	if !ok {
		matches := fuzzy.Find(name, commandNames())
		msg := "unknown command :" + name
		if len(matches) > 0 {
			msg += " (did you mean :" + matches[0].Str + "?)"
		}

		return errorStyle.Render(msg), actionPrint
	}

	out, err := h(s, ctx, arg)
	if err != nil {
		return errorStyle.Render(err.Error()), actionPrint
	}

	return out, actionPrint
}
