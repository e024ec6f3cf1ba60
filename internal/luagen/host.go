// Package luagen runs match generators, word classifiers, hinters and prompt
// filters written in Lua. Scripts register them through the global clink table:
//
//	local g = clink.generator(10)
//	function g:generate(line_state, builder)
//	    builder:addmatch("status", "word")
//	    return true
//	end
package luagen

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
	lua "github.com/yuin/gopher-lua"

	"github.com/A-SunsetMkt-Forks/clink/internal/logger"
	"github.com/A-SunsetMkt-Forks/clink/internal/version"
)

// ErrClosed is returned when using a host after Close.
var ErrClosed = errors.New("lua host closed")

type kind int

const (
	kindGenerator kind = iota
	kindClassifier
	kindHinter
	kindPromptFilter
)

var kindNames = map[kind]string{
	kindGenerator:    "generator",
	kindClassifier:   "classifier",
	kindHinter:       "hinter",
	kindPromptFilter: "promptfilter",
}

// registration is an object a script created with clink.generator and the
// like. Its methods are looked up when called so scripts may define them
// after registering.
type registration struct {
	kind     kind
	priority int
	seq      int
	self     *lua.LTable
}

// Host owns one Lua state. gopher-lua states are single threaded, so every
// call into Lua holds the host's lock.
type Host struct {
	mu     sync.Mutex
	L      *lua.LState
	regs   []registration
	seq    int
	output io.Writer
	closed bool

	logger *log.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithOutput redirects the print function.
func WithOutput(w io.Writer) Option {
	return func(h *Host) {
		h.output = w
	}
}

// New creates a host with only the base, table, string and math libraries.
func New(opts ...Option) *Host {
	h := &Host{
		output: io.Discard,
		logger: logger.NewStyledLogger("Lua"),
	}
	for _, opt := range opts {
		opt(h)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(h.print))

	registerLineState(L)
	registerBuilder(L)
	registerClassifications(L)
	h.registerClink(L)

	h.L = L
	return h
}

// Close releases the Lua state.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.closed {
		h.L.Close()
		h.closed = true
	}
}

// LoadString runs a chunk of Lua named name.
func (h *Host) LoadString(name, code string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}

	fn, err := h.L.Load(strings.NewReader(code), name)
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	h.L.Push(fn)
	if err := h.L.PCall(0, lua.MultRet, nil); err != nil {
		return fmt.Errorf("running %s: %w", name, err)
	}
	return nil
}

// LoadFile runs a Lua file.
func (h *Host) LoadFile(path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("loading script: %w", err)
	}
	return h.LoadString(filepath.Base(path), string(code))
}

// LoadDir runs every .lua file in dir in name order. A failing script does
// not stop the others; the failures are returned together.
func (h *Host) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("loading scripts: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".lua") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var errs *multierror.Error
	for _, name := range names {
		if err := h.LoadFile(filepath.Join(dir, name)); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		h.logger.Debug("Loaded script", "file", name)
	}
	return errs.ErrorOrNil()
}

// Count returns how many objects of each kind scripts registered.
func (h *Host) Count() (generators, classifiers, hinters, promptFilters int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, r := range h.regs {
		switch r.kind {
		case kindGenerator:
			generators++
		case kindClassifier:
			classifiers++
		case kindHinter:
			hinters++
		case kindPromptFilter:
			promptFilters++
		}
	}
	return generators, classifiers, hinters, promptFilters
}

func (h *Host) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	fmt.Fprintln(h.output, strings.Join(parts, "\t"))
	return 0
}

func (h *Host) registerClink(L *lua.LState) {
	clink := L.NewTable()
	for k, name := range kindNames {
		L.SetField(clink, name, L.NewFunction(h.registrar(k)))
	}
	if sv, err := version.Parse(); err == nil {
		L.SetField(clink, "version_encoded", lua.LNumber(version.Encode(sv)))
		L.SetField(clink, "version_major", lua.LNumber(sv.Major()))
		L.SetField(clink, "version_minor", lua.LNumber(sv.Minor()))
		L.SetField(clink, "version_patch", lua.LNumber(sv.Patch()))
	}
	L.SetField(clink, "version_satisfies", L.NewFunction(func(L *lua.LState) int {
		ok, err := version.Satisfies(L.CheckString(1))
		if err != nil {
			L.ArgError(1, err.Error())
			return 0
		}
		L.Push(lua.LBool(ok))
		return 1
	}))
	L.SetGlobal("clink", clink)
}

// registrar returns clink.<kind>(priority), which creates and registers a
// new object. Lower priorities run first.
func (h *Host) registrar(k kind) lua.LGFunction {
	return func(L *lua.LState) int {
		priority := L.OptInt(1, 999)
		self := L.NewTable()
		h.seq++
		h.regs = append(h.regs, registration{kind: k, priority: priority, seq: h.seq, self: self})
		sort.SliceStable(h.regs, func(i, j int) bool {
			if h.regs[i].priority != h.regs[j].priority {
				return h.regs[i].priority < h.regs[j].priority
			}
			return h.regs[i].seq < h.regs[j].seq
		})
		L.Push(self)
		return 1
	}
}

// call invokes method on self with args and returns its first result.
// A missing method yields LNil.
func (h *Host) call(self *lua.LTable, method string, args ...lua.LValue) (lua.LValue, error) {
	rets, err := h.callN(self, method, 1, args...)
	return rets[0], err
}

// callN is call for methods returning n results. Missing results are LNil.
func (h *Host) callN(self *lua.LTable, method string, n int, args ...lua.LValue) ([]lua.LValue, error) {
	rets := make([]lua.LValue, n)
	for i := range rets {
		rets[i] = lua.LNil
	}
	fn, ok := h.L.GetField(self, method).(*lua.LFunction)
	if !ok {
		return rets, nil
	}
	all := append([]lua.LValue{self}, args...)
	if err := h.L.CallByParam(lua.P{Fn: fn, NRet: n, Protect: true}, all...); err != nil {
		return rets, err
	}
	for i := range rets {
		rets[i] = h.L.Get(-n + i)
	}
	h.L.Pop(n)
	return rets, nil
}

func (h *Host) registrations(k kind) []registration {
	var out []registration
	for _, r := range h.regs {
		if r.kind == k {
			out = append(out, r)
		}
	}
	return out
}
