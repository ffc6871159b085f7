// Package luadef loads settings tree definitions written as Lua scripts.
//
// A definition script returns one table describing a group, in the same
// shape setting.GroupFromDescription accepts:
//
//	return {
//	  name = "main",
//	  settings = {
//	    { type = "string", name = "layer_filename_pattern", default = "[layer name]" },
//	  },
//	  groups = {
//	    { name = "gui", settings = { ... } },
//	  },
//	}
//
// Scripts run in a restricted state: only the base, table, string and math
// libraries are opened, so a definition cannot touch the file system or
// spawn processes.
package luadef

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/layerport/layerport/internal/setting"
)

// ErrNoDefinition indicates the script did not return a table.
var ErrNoDefinition = errors.New("lua definition did not return a table")

// LoadFile runs the Lua script at path and returns the group description
// it produces.
func LoadFile(path string) (setting.Description, error) {
	return load(func(L *lua.LState) error { return L.DoFile(path) })
}

// Load runs the given Lua code and returns the group description it
// produces.
func Load(code string) (setting.Description, error) {
	return load(func(L *lua.LState) error { return L.DoString(code) })
}

func load(run func(L *lua.LState) error) (setting.Description, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibraries(L)

	if err := run(L); err != nil {
		return nil, fmt.Errorf("running lua definition: %w", err)
	}

	ret := L.Get(-1)
	table, ok := ret.(*lua.LTable)
	if !ok {
		return nil, ErrNoDefinition
	}

	value := tableToGo(table, make(map[*lua.LTable]bool))
	desc, ok := value.(map[string]any)
	if !ok {
		return nil, ErrNoDefinition
	}
	return setting.Description(desc), nil
}

// openSafeLibraries opens only the Lua standard libraries a definition
// script legitimately needs. io, os, debug and package stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

func toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		return tableToGo(v, visited)
	default:
		return nil
	}
}

// tableToGo converts a table to a []any when its keys form the contiguous
// sequence 1..n, and to a map[string]any otherwise.
func tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	isArray := true
	maxN := 0
	count := 0
	t.ForEach(func(k, _ lua.LValue) {
		count++
		if kn, ok := k.(lua.LNumber); ok {
			n := int(kn)
			if float64(n) == float64(kn) && n > 0 {
				if n > maxN {
					maxN = n
				}
				return
			}
		}
		isArray = false
	})

	if isArray && maxN > 0 && count == maxN {
		arr := make([]any, maxN)
		for i := 1; i <= maxN; i++ {
			arr[i-1] = toGoValue(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = kv.String()
		default:
			return
		}
		m[key] = toGoValue(v, visited)
	})
	return m
}
