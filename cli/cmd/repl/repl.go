package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/yard/grammar"
	"github.com/ardnew/yard/lang/arith"
	"github.com/ardnew/yard/log"
)

// editDoneMsg is sent when the external editor exits.
type editDoneMsg struct {
	err     error
	changed bool
}

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help              Print this help
  list              List bindings
  let NAME = EXPR   Bind NAME to the value of EXPR
  edit              Edit bindings in $EDITOR
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type an expression to evaluate it; its value is bound to ` + Answer + `
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Esc to toggle between eval and command modes
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit`

// inputMode represents the current input mode.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	markStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Config configures a REPL session.
type Config struct {
	Lang    *grammar.Language[arith.Node]
	Params  *grammar.Params[arith.Node] // initial bindings
	History string                      // history file path, or "" for none
	Editor  string                      // editor command, or "" for $EDITOR
	Logger  log.Logger
}

// Run starts an interactive session and blocks until the user quits.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.Lang == nil {
		return ErrNoLanguage
	}

	history := NewHistory(cfg.History)
	if err := history.Load(); err != nil {
		cfg.Logger.WarnContext(ctx, "could not load history",
			slog.String("path", cfg.History),
			slog.Any("error", err),
		)
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("history", cfg.History),
		slog.Int("history_len", history.Len()),
		slog.Int("bindings", cfg.Params.Len()),
	)

	m := newModel(ctx, NewSession(cfg.Lang, cfg.Params, cfg.Logger), history, cfg)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	session    *Session
	history    *History
	logger     log.Logger
	editor     string
	matches    fuzzy.Matches
	historyIdx int
	wordStart  int // byte offset of current word start
	wordEnd    int // byte offset of current word end
	suggIdx    int // selected candidate while cycling
	width      int
	preTabText string // input before cycling began
	preTabPos  int
	stash      [2]string // input of the inactive mode
	mode       inputMode
	cycling    bool
	quitting   bool
}

func newModel(ctx context.Context, session *Session, history *History, cfg Config) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.CharLimit = 1024
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    session,
		history:    history,
		logger:     cfg.Logger,
		editor:     cfg.Editor,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
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
		m.input.Width = msg.Width - len(evalPrompt) - 2

		return m, nil

	case editDoneMsg:
		switch {
		case errors.Is(msg.err, ErrEditDeclined):
			return m, tea.Println(hintStyle.Render("edit discarded"))
		case msg.err != nil:
			return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
		case !msg.changed:
			return m, tea.Println(hintStyle.Render("edit cancelled"))
		}

		return m, tea.Println(resultStyle.Render(
			fmt.Sprintf("%d bindings loaded", len(m.session.Names()))))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hintLine() + "\n"
}

// hintLine renders the line below the input: the history position, a usage
// hint, the signature of the enclosing call, or the completion candidates.
func (m model) hintLine() string {
	input := m.input.Value()

	if m.historyIdx < m.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		if m.mode == modeEval {
			return hintStyle.Render("Type an expression or press Esc for commands")
		}

		return hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")
	}

	if len(m.matches) == 0 || !m.cycling {
		call := detectFunctionCall(input, m.input.Position())
		if hint := renderSignatureHint(call.name, call.argIndex); call.inCall && hint != "" {
			return hint
		}
	}

	return renderCandidateBar(m.matches, m.suggIdx, m.cycling, m.width)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress", slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.cycling = false
		m.historyIdx = m.history.Len()
		m.refreshMatches(false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.cycling && len(m.matches) > 0 {
			m.cycling = false
			m.refreshMatches(true)

			return m, nil
		}

		return m.execute()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(m.historyIdx - 1), nil

	case tea.KeyDown:
		return m.recall(m.historyIdx + 1), nil

	case tea.KeyEsc:
		if m.cycling {
			m.cycling = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabPos)
			m.refreshMatches(false)

			return m, nil
		}

		return m.switchMode(1 - m.mode), nil
	}

	// Any other key keeps the selected candidate.
	typed := msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace
	m.cycling = false

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refreshMatches(typed)

	return m, cmd
}

// cycle selects the next (step 1) or previous (step -1) candidate and
// substitutes it for the word under the cursor. A sole candidate is
// accepted immediately.
func (m model) cycle(step int) model {
	if len(m.matches) == 0 {
		return m
	}

	if len(m.matches) == 1 {
		m.replaceWord(m.matches[0].Str)
		m.cycling = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if !m.cycling {
		m.cycling = true
		m.preTabText = m.input.Value()
		m.preTabPos = m.input.Position()
		m.suggIdx = -1

		if step < 0 {
			m.suggIdx = 0
		}
	}

	m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

// replaceWord substitutes s for the word under the cursor.
func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// refreshMatches recomputes the candidates for the word under the cursor.
// While typing (autoConfirm), a word that already equals its sole candidate
// is accepted so the bar disappears.
func (m *model) refreshMatches(autoConfirm bool) {
	if m.cycling {
		return
	}

	m.matches, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	if autoConfirm && len(m.matches) == 1 &&
		m.input.Value()[m.wordStart:m.wordEnd] == m.matches[0].Str {
		m.matches = nil
	}
}

// recall shows history entry i, switching to its mode. Moving past the
// newest entry clears the input.
func (m model) recall(i int) model {
	if i < 0 || m.history.Len() == 0 {
		return m
	}

	m.cycling = false

	entry, err := m.history.Entry(i)
	if err != nil {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		m.refreshMatches(false)

		return m
	}

	if entry.Mode != m.mode {
		m = m.switchMode(entry.Mode)
	}

	m.historyIdx = i
	m.input.SetValue(entry.Line)
	m.input.SetCursor(len(entry.Line))
	m.refreshMatches(false)

	return m
}

// switchMode changes the input mode, keeping the input of each mode.
func (m model) switchMode(mode inputMode) model {
	if mode == m.mode {
		return m
	}

	m.stash[m.mode] = m.input.Value()
	m.mode = mode

	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(m.stash[mode])
	m.input.SetCursor(len(m.stash[mode]))
	m.cycling = false
	m.refreshMatches(false)

	return m
}

func (m model) execute() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.stash[m.mode] = ""
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "could not save history", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.command(input)
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(input))

	v, err := m.session.Eval(m.ctxFunc(), input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(renderError(err)))
	}

	m.logger.TraceContext(m.ctxFunc(), "repl eval",
		slog.String("input", input),
		slog.Float64("value", v),
	)

	return m, tea.Sequence(echo, tea.Println(resultStyle.Render(formatValue(v))))
}

func (m model) command(input string) (model, tea.Cmd) {
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input))

	name, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	m.logger.TraceContext(m.ctxFunc(), "repl command",
		slog.String("command", name),
		slog.String("args", args),
	)

	switch name {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listBindings()))

	case "let":
		binding, text, ok := strings.Cut(args, "=")
		if !ok {
			return m, tea.Sequence(echo, tea.Println(renderError(ErrBinding)))
		}

		binding = strings.TrimSpace(binding)

		v, err := m.session.Let(m.ctxFunc(), binding, text)
		if err != nil {
			return m, tea.Sequence(echo, tea.Println(renderError(err)))
		}

		return m, tea.Sequence(echo, tea.Println(resultStyle.Render(binding+" = "+formatValue(v))))

	case "c", "clear":
		return m, tea.Sequence(echo, tea.ClearScreen)

	case "e", "edit":
		cmd := &editCommand{session: m.session, ctxFunc: m.ctxFunc, editor: m.editor}

		return m, tea.Sequence(echo, tea.Exec(cmd, func(err error) tea.Msg {
			return editDoneMsg{err: err, changed: cmd.changed}
		}))
	}

	return m, tea.Sequence(echo, tea.Println(
		errorStyle.Render("unknown command: "+name+" (try 'help')")))
}

// listBindings renders each binding and its canonical expression.
func (m model) listBindings() string {
	names := m.session.Names()
	if len(names) == 0 {
		return hintStyle.Render("  (no bindings)")
	}

	var b strings.Builder

	for i, name := range names {
		if i > 0 {
			b.WriteByte('\n')
		}

		text, _ := m.session.Binding(name)
		b.WriteString("  " + name + " " + hintStyle.Render("= "+text))
	}

	return b.String()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// renderError renders err followed by the marked source of a parse error.
func renderError(err error) string {
	return errorStyle.Render("error: "+err.Error()) + "\n" + snippet(err)
}

// snippet returns the source snippet of a parse error with the marker line
// emphasized, or "" if err has no location.
func snippet(err error) string {
	var gerr *grammar.Error
	if !errors.As(err, &gerr) {
		return ""
	}

	lines := strings.Split(strings.TrimSuffix(gerr.Snippet(), "\n"), "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) != "" && strings.Trim(line, " ^") == "" {
			lines[i] = markStyle.Render(line)
		}
	}

	return strings.Join(lines, "\n")
}
