package luagen

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/A-SunsetMkt-Forks/clink/pkg/clinktypes"
)

const (
	lineStateType       = "line_state"
	builderType         = "builder"
	classificationsType = "classifications"
)

func registerType(L *lua.LState, name string, methods map[string]lua.LGFunction) {
	mt := L.NewTypeMetatable(name)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), methods))
}

func newObject(L *lua.LState, name string, value any) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = value
	L.SetMetatable(ud, L.GetTypeMetatable(name))
	return ud
}

func registerLineState(L *lua.LState) {
	registerType(L, lineStateType, map[string]lua.LGFunction{
		"getline":             lsGetLine,
		"getcursor":           lsGetCursor,
		"getcommandoffset":    lsGetCommandOffset,
		"getcommandwordindex": lsGetCommandWordIndex,
		"getwordcount":        lsGetWordCount,
		"getwordinfo":         lsGetWordInfo,
		"getword":             lsGetWord,
		"getendword":          lsGetEndWord,
	})
}

func checkLineState(L *lua.LState) clinktypes.LineState {
	ud := L.CheckUserData(1)
	if ls, ok := ud.Value.(clinktypes.LineState); ok {
		return ls
	}
	L.ArgError(1, "line_state expected")
	return clinktypes.LineState{}
}

func lsGetLine(L *lua.LState) int {
	L.Push(lua.LString(checkLineState(L).Line))
	return 1
}

func lsGetCursor(L *lua.LState) int {
	L.Push(lua.LNumber(checkLineState(L).Cursor + 1))
	return 1
}

func lsGetCommandOffset(L *lua.LState) int {
	L.Push(lua.LNumber(checkLineState(L).CommandOffset + 1))
	return 1
}

func lsGetCommandWordIndex(L *lua.LState) int {
	L.Push(lua.LNumber(checkLineState(L).CommandWordIndex + 1))
	return 1
}

func lsGetWordCount(L *lua.LState) int {
	L.Push(lua.LNumber(checkLineState(L).WordCount()))
	return 1
}

func lsGetWordInfo(L *lua.LState) int {
	ls := checkLineState(L)
	n, ok := L.Get(2).(lua.LNumber)
	if !ok {
		return 0
	}
	i := int(n) - 1
	if i < 0 || i >= ls.WordCount() {
		return 0
	}
	w := ls.Words[i]

	t := L.NewTable()
	t.RawSetString("offset", lua.LNumber(w.Offset+1))
	t.RawSetString("length", lua.LNumber(w.Length))
	t.RawSetString("quoted", lua.LBool(w.Quoted))
	delim := ""
	if w.Delim != 0 {
		delim = string([]byte{w.Delim})
	}
	t.RawSetString("delim", lua.LString(delim))
	if w.IsAlias {
		t.RawSetString("alias", lua.LTrue)
	}
	if w.IsRedirArg {
		t.RawSetString("redir", lua.LTrue)
	}
	L.Push(t)
	return 1
}

func lsGetWord(L *lua.LState) int {
	ls := checkLineState(L)
	n, ok := L.Get(2).(lua.LNumber)
	if !ok {
		return 0
	}
	L.Push(lua.LString(ls.GetWord(int(n) - 1)))
	return 1
}

func lsGetEndWord(L *lua.LState) int {
	L.Push(lua.LString(checkLineState(L).GetEndWord()))
	return 1
}

func registerBuilder(L *lua.LState) {
	registerType(L, builderType, map[string]lua.LGFunction{
		"addmatch":          bAddMatch,
		"addmatches":        bAddMatches,
		"setprefixincluded": bSetPrefixIncluded,
	})
}

func checkBuilder(L *lua.LState) clinktypes.MatchBuilder {
	ud := L.CheckUserData(1)
	if b, ok := ud.Value.(clinktypes.MatchBuilder); ok {
		return b
	}
	L.ArgError(1, "builder expected")
	return nil
}

// optType reads an optional type string argument; absent means none.
func optType(L *lua.LState, n int) clinktypes.MatchType {
	if s, ok := L.Get(n).(lua.LString); ok {
		return clinktypes.ParseMatchType(string(s))
	}
	return clinktypes.MatchNone
}

func bAddMatch(L *lua.LState) int {
	b := checkBuilder(L)
	ok := false
	if L.GetTop() > 1 {
		ok = addMatch(b, L.Get(2), optType(L, 3))
	}
	L.Push(lua.LBool(ok))
	return 1
}

func bAddMatches(L *lua.LState) int {
	b := checkBuilder(L)
	t, isTable := L.Get(2).(*lua.LTable)
	if !isTable {
		L.Push(lua.LNumber(0))
		L.Push(lua.LFalse)
		return 2
	}

	def := optType(L, 3)
	total := t.Len()
	count := 0
	for i := 1; i <= total; i++ {
		if addMatch(b, t.RawGetInt(i), def) {
			count++
		}
	}
	L.Push(lua.LNumber(count))
	L.Push(lua.LBool(count == total))
	return 2
}

// addMatch adds a string, or a {match=, type=, suffix=} table.
func addMatch(b clinktypes.MatchBuilder, v lua.LValue, def clinktypes.MatchType) bool {
	switch v := v.(type) {
	case lua.LString:
		return b.AddMatch(string(v), def)
	case lua.LNumber:
		return b.AddMatch(v.String(), def)
	case *lua.LTable:
		text, ok := v.RawGetString("match").(lua.LString)
		if !ok {
			return false
		}
		desc := clinktypes.MatchDesc{Text: string(text), Type: def}
		if s, ok := v.RawGetString("type").(lua.LString); ok {
			desc.Type = clinktypes.ParseMatchType(string(s))
		}
		if s, ok := v.RawGetString("suffix").(lua.LString); ok && len(s) > 0 {
			desc.Suffix = s[0]
		}
		return b.AddMatchDesc(desc)
	}
	return false
}

func bSetPrefixIncluded(L *lua.LState) int {
	b := checkBuilder(L)
	included := true
	if L.GetTop() > 1 {
		included = lua.LVAsBool(L.Get(2))
	}
	b.SetPrefixIncluded(included)
	return 0
}

// classifications gives scripts write access to the classes of one command.
type classifications struct {
	out []clinktypes.WordClass
}

func registerClassifications(L *lua.LState) {
	registerType(L, classificationsType, map[string]lua.LGFunction{
		"classifyword": cClassifyWord,
	})
}

// cClassifyWord implements classifications:classifyword(index, class) where
// class is one letter, e.g. "c" or "f".
func cClassifyWord(L *lua.LState) int {
	ud := L.CheckUserData(1)
	c, ok := ud.Value.(*classifications)
	if !ok {
		L.ArgError(1, "classifications expected")
		return 0
	}
	i := L.CheckInt(2) - 1
	class := L.CheckString(3)
	if i < 0 || i >= len(c.out) || class == "" {
		L.Push(lua.LFalse)
		return 1
	}
	c.out[i] = clinktypes.WordClass(class[0])
	L.Push(lua.LTrue)
	return 1
}
