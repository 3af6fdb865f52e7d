package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/markstate/internal/engine/buffer"
	"github.com/dshills/markstate/internal/engine/cursor"
	"github.com/dshills/markstate/internal/engine/cursor/markup"
)

// MarkupModule implements the markup API module.
//
// States cross into Lua as tables:
//
//	{ content = "foobar", regions = { { anchor = 3, head = 6 }, ... } }
//
// Offsets are 0-based byte offsets. A region without head is a caret.
type MarkupModule struct {
	parser *markup.Parser
}

// NewMarkupModule creates a markup module that parses with parser.
// A nil parser uses the default parser.
func NewMarkupModule(parser *markup.Parser) *MarkupModule {
	if parser == nil {
		parser = markup.NewParser()
	}
	return &MarkupModule{parser: parser}
}

// Name returns the module name.
func (m *MarkupModule) Name() string {
	return "markup"
}

// Register registers the module into the Lua state.
func (m *MarkupModule) Register(L *lua.LState) error {
	mod := L.NewTable()

	L.SetField(mod, "parse", L.NewFunction(m.parse))
	L.SetField(mod, "render", L.NewFunction(m.render))
	L.SetField(mod, "insert", L.NewFunction(m.insert))
	L.SetField(mod, "delete", L.NewFunction(m.delete))
	L.SetField(mod, "replace", L.NewFunction(m.replace))
	L.SetField(mod, "type", L.NewFunction(m.typeText))
	L.SetField(mod, "count", L.NewFunction(m.count))
	L.SetField(mod, "caret", L.NewFunction(m.caret))
	L.SetField(mod, "range", L.NewFunction(m.rangeRegion))

	L.SetGlobal(m.Name(), mod)
	return nil
}

// parse(text) -> state
func (m *MarkupModule) parse(L *lua.LState) int {
	text := L.CheckString(1)

	state, err := m.parser.Parse(text)
	if err != nil {
		L.RaiseError("parse: %v", err)
		return 0
	}

	L.Push(StateToTable(L, state))
	return 1
}

// render(state) -> text
func (m *MarkupModule) render(L *lua.LState) int {
	state := m.checkState(L, 1)
	L.Push(lua.LString(state.String()))
	return 1
}

// insert(state, offset, text) -> state
func (m *MarkupModule) insert(L *lua.LState) int {
	state := m.checkState(L, 1)
	offset := checkOffset(L, 2)
	text := L.CheckString(3)

	return m.applyEdit(L, "insert", state, buffer.NewInsert(offset, text))
}

// delete(state, start, end) -> state
func (m *MarkupModule) delete(L *lua.LState) int {
	state := m.checkState(L, 1)
	start := checkOffset(L, 2)
	end := checkOffset(L, 3)

	return m.applyEdit(L, "delete", state, buffer.NewDelete(start, end))
}

// replace(state, start, end, text) -> state
func (m *MarkupModule) replace(L *lua.LState) int {
	state := m.checkState(L, 1)
	start := checkOffset(L, 2)
	end := checkOffset(L, 3)
	text := L.CheckString(4)

	return m.applyEdit(L, "replace", state, buffer.NewEdit(buffer.NewRange(start, end), text))
}

func (m *MarkupModule) applyEdit(L *lua.LState, op string, state markup.State, edit buffer.Edit) int {
	next, err := state.Apply(edit)
	if err != nil {
		L.RaiseError("%s: %v", op, err)
		return 0
	}
	L.Push(StateToTable(L, next))
	return 1
}

// type(state, text) -> state
// Replaces every region with text and leaves a caret after each insertion.
func (m *MarkupModule) typeText(L *lua.LState) int {
	state := m.checkState(L, 1)
	text := L.CheckString(2)

	L.Push(StateToTable(L, state.InsertAtCursors(text)))
	return 1
}

// count(state) -> number of regions after overlapping ones merge
func (m *MarkupModule) count(L *lua.LState) int {
	state := m.checkState(L, 1)
	L.Push(lua.LNumber(state.Selection.Count()))
	return 1
}

// caret(offset) -> region
func (m *MarkupModule) caret(L *lua.LState) int {
	offset := checkOffset(L, 1)
	L.Push(regionToTable(L, cursor.NewCursorSelection(offset)))
	return 1
}

// range(anchor, head) -> region
func (m *MarkupModule) rangeRegion(L *lua.LState) int {
	anchor := checkOffset(L, 1)
	head := checkOffset(L, 2)
	L.Push(regionToTable(L, cursor.NewSelection(anchor, head)))
	return 1
}

func (m *MarkupModule) checkState(L *lua.LState, n int) markup.State {
	tbl := L.CheckTable(n)
	state, err := TableToState(tbl)
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return state
}

func checkOffset(L *lua.LState, n int) buffer.ByteOffset {
	offset := L.CheckInt64(n)
	if offset < 0 {
		L.ArgError(n, "offset must be non-negative")
	}
	return offset
}

// StateToTable converts a state into its Lua table form.
func StateToTable(L *lua.LState, state markup.State) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("content", lua.LString(state.Content))

	regions := L.NewTable()
	if state.Selection != nil {
		state.Selection.ForEach(func(i int, sel cursor.Selection) {
			regions.RawSetInt(i+1, regionToTable(L, sel))
		})
	}
	tbl.RawSetString("regions", regions)
	return tbl
}

func regionToTable(L *lua.LState, sel cursor.Selection) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("anchor", lua.LNumber(sel.Anchor))
	tbl.RawSetString("head", lua.LNumber(sel.Head))
	return tbl
}

// TableToState converts a Lua table back into a state.
// Regions are normalized by the selection set, so overlapping regions
// merge and the order of the regions table does not matter. Offsets past
// the end of content are rejected.
func TableToState(tbl *lua.LTable) (markup.State, error) {
	content, ok := tbl.RawGetString("content").(lua.LString)
	if !ok {
		return markup.State{}, fmt.Errorf("%w: content must be a string", ErrInvalidState)
	}

	var sels []cursor.Selection
	switch regions := tbl.RawGetString("regions").(type) {
	case *lua.LTable:
		for i := 1; i <= regions.Len(); i++ {
			region, ok := regions.RawGetInt(i).(*lua.LTable)
			if !ok {
				return markup.State{}, fmt.Errorf("%w: region %d must be a table", ErrInvalidState, i)
			}
			sel, err := tableToRegion(region)
			if err != nil {
				return markup.State{}, fmt.Errorf("%w: region %d: %v", ErrInvalidState, i, err)
			}
			if sel.End() > buffer.ByteOffset(len(content)) {
				return markup.State{}, fmt.Errorf("%w: region %d: offset %d past end of content (%d bytes)",
					ErrInvalidState, i, sel.End(), len(content))
			}
			sels = append(sels, sel)
		}
	case *lua.LNilType:
	default:
		return markup.State{}, fmt.Errorf("%w: regions must be a table", ErrInvalidState)
	}

	return markup.NewState(string(content), sels...), nil
}

func tableToRegion(tbl *lua.LTable) (cursor.Selection, error) {
	anchor, err := tableOffset(tbl, "anchor")
	if err != nil {
		return cursor.Selection{}, err
	}
	if tbl.RawGetString("head") == lua.LNil {
		return cursor.NewCursorSelection(anchor), nil
	}
	head, err := tableOffset(tbl, "head")
	if err != nil {
		return cursor.Selection{}, err
	}
	return cursor.NewSelection(anchor, head), nil
}

func tableOffset(tbl *lua.LTable, key string) (buffer.ByteOffset, error) {
	n, ok := tbl.RawGetString(key).(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	offset := buffer.ByteOffset(n)
	if lua.LNumber(offset) != n || offset < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %v", key, n)
	}
	return offset, nil
}
