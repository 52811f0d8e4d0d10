package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/mustache"
	"github.com/ardnew/mustache/log"
	"github.com/ardnew/mustache/repo"
)

// editDataMsg is sent when data editing completes successfully.
type editDataMsg struct{ data map[string]any }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a decode
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process fails.
type editErrorMsg struct{ err error }

const (
	renderPrompt = "➜ "
	ctrlPrompt   = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help      Print this message
  data      Print the data as YAML
  keys      List data keys
  partials  List templates in the search path
  edit      Edit data in external $EDITOR
  clear     Clear screen
  quit      Exit REPL

Usage:
  Type a template to render it against the data
  Write \n for a line break
  Completions appear inside open tags as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between render and command modes
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeRender inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// echo formats the echo line of a submitted input.
func echo(mode inputMode, input string) string {
	if mode == modeCtrl {
		return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
	}

	return promptStyle.Render(renderPrompt) + inputStyle.Render(input)
}

// modeInput is the saved input of the inactive mode.
type modeInput struct {
	text   string
	cursor int
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx          context.Context
	input        textinput.Model
	repo         *repo.Repository
	data         map[string]any
	keys         []string // data key paths for completion
	partials     []string // template names for completion
	delims       mustache.Delimiters
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	width        int
	quitting     bool
	mode         inputMode
	saved        [2]modeInput
}

// Run starts the REPL. Each line is compiled with r and rendered against
// data. History is kept in cacheDir, or only in memory if cacheDir is empty.
func Run(
	ctx context.Context,
	r *repo.Repository,
	data map[string]any,
	delims mustache.Delimiters,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var historyPath string
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	m := newModel(ctx, r, data, delims, history, logger)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("keys", len(m.keys)),
		slog.Int("partials", len(m.partials)),
		slog.Int("history", history.Len()),
	)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	r *repo.Repository,
	data map[string]any,
	delims mustache.Delimiters,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(renderPrompt)
	ti.Focus()
	ti.CharLimit = 4096
	ti.Width = defaultWidth

	if data == nil {
		data = map[string]any{}
	}

	if delims.Open == "" || delims.Close == "" {
		delims = mustache.DefaultDelimiters
	}

	m := model{
		ctx:        ctx,
		input:      ti,
		repo:       r,
		data:       data,
		keys:       keyPaths(data),
		delims:     delims,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeRender,
	}

	if lister, ok := r.Loader().(repo.Lister); ok {
		names, err := lister.Names(ctx)
		if err != nil {
			logger.DebugContext(ctx, "list templates", slog.Any("error", err))
		}

		m.partials = names
	}

	return m
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
		m.input.Width = msg.Width - len(renderPrompt) - 2

		return m, nil

	case editDataMsg:
		m.data = msg.data
		m.keys = keyPaths(msg.data)
		m.logger.TraceContext(m.ctx, "repl edit complete", slog.Int("keys", len(m.keys)))

		return m, tea.Println(resultStyle.Render("✔ data updated"))

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch input := m.input.Value(); {
	case m.historyIdx < m.history.Len():
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		hint := "Type a template or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width))
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx, "repl keypress", slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refreshMatches()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			// Lock in the current candidate without executing.
			m.tabActive = false
			m.refreshMatches()

			return m, nil
		}

		return m.executeInput()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyStep(-1), nil

	case tea.KeyDown:
		return m.historyStep(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refreshMatches()

			return m, nil
		}

		if m.mode == modeRender {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeRender), nil
	}

	if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}
	} else {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches()

	return m, cmd
}

// cycle moves the candidate selection by step, replacing the word at the
// cursor. A single candidate is completed immediately.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = len(m.matches) - 1
		}
	}

	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord replaces the current word with replacement and moves the
// cursor after it.
func (m *model) replaceWord(replacement string) {
	input := m.input.Value()
	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(replacement))
	m.wordEnd = m.wordStart + len(replacement)
}

// refreshMatches recomputes the fuzzy matches for the current input.
func (m *model) refreshMatches() {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}
}

func (m model) historyStep(step int) model {
	i := m.historyIdx + step
	if i < 0 {
		return m
	}

	if i >= m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refreshMatches()

		return m
	}

	entry, err := m.history.Entry(i)
	if err != nil {
		return m
	}

	m.historyIdx = i

	if entry.Mode != m.mode {
		m = m.switchToMode(entry.Mode)
	}

	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	m.refreshMatches()

	return m
}

// switchToMode switches modes, saving the input of the current mode and
// restoring that of the target.
func (m model) switchToMode(mode inputMode) model {
	m.saved[m.mode] = modeInput{m.input.Value(), m.input.Position()}
	m.mode = mode

	if mode == modeCtrl {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	} else {
		m.input.Prompt = promptStyle.Render(renderPrompt)
	}

	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)
	m.refreshMatches()

	return m
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.saved = [2]modeInput{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.DebugContext(m.ctx, "save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	echoCmd := tea.Println(echo(m.mode, input))

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctx, "repl command", slog.String("input", input))

		next, cmd := m.executeCommand(input)

		return next, tea.Sequence(echoCmd, cmd)
	}

	m.logger.TraceContext(m.ctx, "repl render", slog.String("input", input))

	out, safe, err := m.render(input)
	if err != nil {
		return m, tea.Sequence(echoCmd, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	result := resultStyle.Render(out)
	if !safe {
		result += hintStyle.Render("  (contains unescaped content)")
	}

	return m, tea.Sequence(echoCmd, tea.Println(result))
}

// render compiles input, with each literal \n replaced by a line break, and
// renders it against the data.
func (m model) render(input string) (string, bool, error) {
	t, err := m.repo.Compile(m.ctx, strings.ReplaceAll(input, `\n`, "\n"))
	if err != nil {
		return "", false, err
	}

	return t.Render(m.ctx, m.data)
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Quit

	case "h", "help":
		return m, tea.Println(helpMessage())

	case "d", "data":
		return m, tea.Println(m.dataView())

	case "k", "keys":
		return m, tea.Println(listView(m.keys))

	case "p", "partials":
		return m, tea.Println(listView(m.partials))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, m.edit()

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + parts[0] + " (try 'help')"),
		)
	}
}

func (m model) edit() tea.Cmd {
	cmd := &editDataCommand{ctx: m.ctx, data: m.data, logger: m.logger}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.newData == nil {
			return editCancelledMsg{}
		}

		return editDataMsg{data: cmd.newData}
	})
}

func (m model) dataView() string {
	buf, err := yaml.MarshalContext(m.ctx, m.data, yaml.Indent(2))
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	return strings.TrimRight(string(buf), "\n")
}

func listView(items []string) string {
	if len(items) == 0 {
		return hintStyle.Render("  (none)")
	}

	var b strings.Builder

	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}

		b.WriteString("  ")
		b.WriteString(item)
	}

	return b.String()
}
