package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell/v2"
	"github.com/abiosoft/readline"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"github.com/A-SunsetMkt-Forks/clink/internal/alias"
	"github.com/A-SunsetMkt-Forks/clink/internal/bind"
	"github.com/A-SunsetMkt-Forks/clink/internal/history"
	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

// ErrUnknownInspector is returned for an inspector command that does not exist.
var ErrUnknownInspector = errors.New("unknown command")

// DefaultPrompt is used when no prompt is configured.
const DefaultPrompt = "clink> "

type inspector struct {
	name string
	help string
	run  func(h *Host, w io.Writer, args []string) error
}

// ishell drives its own readline fork, whose interfaces match the ones Engine
// implements.
var (
	_ readline.AutoCompleter = (*Engine)(nil)
	_ readline.Listener      = (*Engine)(nil)
	_ readline.Painter       = (*Engine)(nil)
)

// InspectorPrefix starts the name of every inspector command.
const InspectorPrefix = ":"

func builtinInspectors() []inspector {
	return []inspector{
		{name: ":matches", help: "list completions for the end of a line", run: (*Host).listMatches},
		{name: ":words", help: "show the words and classes of a line", run: (*Host).showWords},
		{name: ":history", help: "list history, optionally only the last N entries", run: (*Host).listHistory},
		{name: ":aliases", help: "list doskey aliases", run: (*Host).listAliases},
		{name: ":bindings", help: "list key bindings of a bind group", run: (*Host).listBindings},
		{name: ":cache", help: "show command word cache statistics", run: (*Host).showCache},
		{name: ":help", help: "list these commands", run: (*Host).showHelp},
	}
}

// Host runs the interactive shell. Accepted lines are recorded in history and
// echoed as the engine sees them. Inspector commands report engine state.
type Host struct {
	engine     *Engine
	inspectors []inspector
	history    *history.History
	aliases    *alias.Table
	prompt     string
	prompts    clinktypes.PromptFilter
	quote      byte
	logger     *log.Logger
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHistory records accepted lines in h and preloads readline with it.
func WithHistory(h *history.History) HostOption {
	return func(host *Host) {
		host.history = h
	}
}

// WithAliases lists t in :aliases.
func WithAliases(t *alias.Table) HostOption {
	return func(host *Host) {
		host.aliases = t
	}
}

// WithPrompt sets the prompt.
func WithPrompt(prompt string) HostOption {
	return func(host *Host) {
		if prompt != "" {
			host.prompt = prompt
		}
	}
}

// WithPromptFilter rewrites the prompt before each line.
func WithPromptFilter(f clinktypes.PromptFilter) HostOption {
	return func(host *Host) {
		host.prompts = f
	}
}

// NewHost creates a host over engine.
func NewHost(engine *Engine, options ...HostOption) *Host {
	h := &Host{
		engine: engine,
		prompt: DefaultPrompt,
		quote:  engine.Editor().Config().QuotePair[0],
		logger: logger.NewStyledLogger("Host"),
	}
	h.inspectors = builtinInspectors()
	for _, opt := range options {
		opt(h)
	}
	return h
}

// LinePrompt returns the prompt for the next line.
func (h *Host) LinePrompt() string {
	if h.prompts == nil {
		return h.prompt
	}
	return h.prompts.FilterPrompt(context.Background(), h.prompt)
}

// readlineConfig hands completion, suggestions and painting to the engine.
func (h *Host) readlineConfig(prompt string) *readline.Config {
	return &readline.Config{
		Prompt:       prompt,
		AutoComplete: h.engine,
		Listener:     h.engine,
		Painter:      h.engine,
	}
}

// Run starts the interactive loop and returns when the user exits.
func (h *Host) Run() error {
	prompt := h.LinePrompt()
	rl, err := readline.NewEx(h.readlineConfig(prompt))
	if err != nil {
		return fmt.Errorf("starting readline: %w", err)
	}
	if h.history != nil {
		for _, entry := range h.history.Entries() {
			_ = rl.SaveHistory(entry)
		}
	}

	sh := ishell.NewWithReadline(rl)
	sh.SetPrompt(prompt)
	sh.CustomCompleter(h.engine)

	// Replace built-ins so plain words reach the engine.
	sh.DeleteCmd("exit")
	sh.DeleteCmd("help")
	sh.DeleteCmd("clear")

	for _, in := range h.inspectors {
		sh.AddCmd(&ishell.Cmd{
			Name: in.name,
			Help: in.help,
			Func: func(c *ishell.Context) {
				h.engine.Accept()
				if err := in.run(h, contextWriter{c}, c.Args); err != nil {
					c.Printf("Error: %s\n", err.Error())
				}
				c.SetPrompt(h.LinePrompt())
			},
		})
	}
	sh.AddCmd(&ishell.Cmd{
		Name: ":exit",
		Help: "leave the shell",
		Func: func(c *ishell.Context) {
			h.engine.Accept()
			c.Stop()
		},
	})
	sh.NotFound(func(c *ishell.Context) {
		h.engine.Accept()
		line := JoinArgs(c.RawArgs, h.quote)
		if err := h.Execute(contextWriter{c}, line); err != nil {
			h.logger.Error("Line failed", "line", line, "error", err)
			c.Printf("Error: %s\n", err.Error())
		}
		c.SetPrompt(h.LinePrompt())
	})
	sh.Interrupt(func(c *ishell.Context, count int, _ string) {
		h.engine.Accept()
		if count >= 2 {
			c.Stop()
			return
		}
		c.Println("Input interrupted. Press Ctrl-C again or type :exit to quit.")
	})
	sh.EOF(func(c *ishell.Context) {
		h.engine.Accept()
		c.Stop()
	})

	sh.Println("Type :help for inspector commands or :exit to quit.")
	sh.Run()
	sh.Close()
	return nil
}

// Execute handles an accepted line: it goes to history and the words of each
// of its commands are printed with their classes.
func (h *Host) Execute(w io.Writer, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, InspectorPrefix) {
		fields := strings.Fields(line)
		return h.Inspect(w, fields[0], fields[1:])
	}

	if h.history != nil {
		if err := h.history.Add(line); err != nil {
			h.logger.Warn("Failed to save history", "error", err)
		}
	}
	h.engine.Accept()
	h.printWords(w, line)
	return nil
}

// Inspect runs the inspector command name.
func (h *Host) Inspect(w io.Writer, name string, args []string) error {
	for _, in := range h.inspectors {
		if in.name == name {
			return in.run(h, w, args)
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownInspector, name)
}

func (h *Host) listMatches(w io.Writer, args []string) error {
	found, needle := h.engine.Complete(JoinArgs(args, h.quote))
	h.engine.Accept()
	if len(found) == 0 {
		fmt.Fprintf(w, "No matches for %q\n", needle)
		return nil
	}
	rows := make([][]string, 0, len(found))
	for _, m := range found {
		rows = append(rows, []string{m.Text, m.Type.String()})
	}
	fmt.Fprintln(w, renderTable([]string{"match", "type"}, rows))
	return nil
}

func (h *Host) showWords(w io.Writer, args []string) error {
	h.printWords(w, JoinArgs(args, h.quote))
	return nil
}

func (h *Host) printWords(w io.Writer, line string) {
	lines, classes := h.engine.Inspect(line)
	h.engine.Accept()
	fmt.Fprintln(w, FormatStates(lines, classes))
}

func (h *Host) listHistory(w io.Writer, args []string) error {
	if h.history == nil {
		fmt.Fprintln(w, "History is disabled")
		return nil
	}
	entries := h.history.Entries()
	first := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid entry count %q", args[0])
		}
		first = max(len(entries)-n, 0)
	}
	for i := first; i < len(entries); i++ {
		fmt.Fprintf(w, "%5d  %s\n", i+1, entries[i])
	}
	return nil
}

func (h *Host) listAliases(w io.Writer, _ []string) error {
	if h.aliases == nil || h.aliases.Len() == 0 {
		fmt.Fprintln(w, "No aliases defined")
		return nil
	}
	for _, name := range h.aliases.Names() {
		expansion, _ := h.aliases.Lookup(name)
		fmt.Fprintf(w, "%s=%s\n", name, expansion)
	}
	return nil
}

func (h *Host) listBindings(w io.Writer, args []string) error {
	binder := h.engine.Editor().Binder()
	name := bind.DefaultGroup
	if len(args) > 0 {
		name = args[0]
	}
	id, err := binder.GroupID(name)
	if err != nil {
		return err
	}

	list := binder.Bindings(id)
	sort.Slice(list, func(i, j int) bool {
		return list[i].Sequence < list[j].Sequence
	})
	rows := make([][]string, 0, len(list)+1)
	for _, b := range list {
		rows = append(rows, []string{bind.Describe(b.Sequence), b.Name})
	}
	if def, ok := binder.Default(id); ok {
		rows = append(rows, []string{"(default)", def.Name})
	}
	fmt.Fprintln(w, renderTable([]string{"keys", "action"}, rows))
	return nil
}

func (h *Host) showCache(w io.Writer, _ []string) error {
	stats := h.engine.Editor().CommandCacheStats()
	fmt.Fprintf(w, "size %d/%d, pinned %d, hits %d, misses %d\n",
		stats.Size, stats.MaxSize, stats.PinnedCount, stats.Hits, stats.Misses)
	return nil
}

func (h *Host) showHelp(w io.Writer, _ []string) error {
	rows := make([][]string, 0, len(h.inspectors)+1)
	for _, in := range h.inspectors {
		rows = append(rows, []string{in.name, in.help})
	}
	rows = append(rows, []string{":exit", "leave the shell"})
	fmt.Fprintln(w, renderTable([]string{"command", "description"}, rows))
	return nil
}

// FormatStates renders each command of lines as a table of its words.
func FormatStates(lines clinktypes.CommandLineStates, classes clinktypes.Classifications) string {
	var b strings.Builder
	for i, state := range lines.States {
		marker := ""
		if i == lines.Active {
			marker = " (active)"
		}
		fmt.Fprintf(&b, "command %d at %d%s\n", i+1, state.CommandOffset, marker)

		rows := make([][]string, 0, state.WordCount())
		for j, word := range state.Words {
			var notes []string
			if j == state.CommandWordIndex {
				notes = append(notes, "command word")
			}
			if word.Quoted {
				notes = append(notes, "quoted")
			}
			if word.IsAlias {
				notes = append(notes, "alias")
			}
			if word.IsRedirArg {
				notes = append(notes, "redirection")
			}
			rows = append(rows, []string{
				strconv.Itoa(j),
				state.GetWord(j),
				strconv.Itoa(word.Offset),
				classes.ClassAt(word.Offset).String(),
				strings.Join(notes, ", "),
			})
		}
		b.WriteString(renderTable([]string{"#", "word", "offset", "class", "notes"}, rows))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

var headerStyle = lipgloss.NewStyle().Bold(true)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// JoinArgs rebuilds a line from arguments split by the shell, quoting those
// that would otherwise split.
func JoinArgs(args []string, quote byte) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		if arg == "" || strings.ContainsAny(arg, " \t") {
			arg = string(quote) + arg + string(quote)
		}
		parts[i] = arg
	}
	return strings.Join(parts, " ")
}

// contextWriter sends output through an ishell context.
type contextWriter struct {
	c *ishell.Context
}

func (w contextWriter) Write(p []byte) (int, error) {
	w.c.Print(string(p))
	return len(p), nil
}
