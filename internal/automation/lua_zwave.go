//go:build !no_automation

package automation

import (
	"time"

	lua "github.com/yuin/gopher-lua"

	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

// registerZWaveModule registers the `zwave` global table in a Lua state.
// Functions that touch the network return true on success, or nil and an
// error message.
func registerZWaveModule(L *lua.LState, vm *scriptVM, e *Engine) {
	mod := L.NewTable()

	mod.RawSetString("on", L.NewFunction(func(L *lua.LState) int {
		return zwaveOn(L, vm)
	}))

	mod.RawSetString("set_value", L.NewFunction(func(L *lua.LState) int {
		return zwaveSetValue(L, e)
	}))

	mod.RawSetString("get_value", L.NewFunction(func(L *lua.LState) int {
		return zwaveGetValue(L, e)
	}))

	mod.RawSetString("nodes", L.NewFunction(func(L *lua.LState) int {
		return zwaveNodes(L, e)
	}))

	mod.RawSetString("scenes", L.NewFunction(func(L *lua.LState) int {
		return zwaveScenes(L, e)
	}))

	mod.RawSetString("activate_scene", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		if id < 1 || id > 255 {
			L.ArgError(1, "scene id must be 1-255")
			return 0
		}
		return result(L, e.coord.ActivateScene(uint8(id)))
	}))

	mod.RawSetString("controller_command", L.NewFunction(func(L *lua.LState) int {
		return zwaveControllerCommand(L, e)
	}))

	mod.RawSetString("cancel_command", L.NewFunction(func(L *lua.LState) int {
		return result(L, e.coord.CancelControllerCommand())
	}))

	mod.RawSetString("after", L.NewFunction(func(L *lua.LState) int {
		return zwaveAfter(L, vm, e)
	}))

	mod.RawSetString("log", L.NewFunction(func(L *lua.LState) int {
		msg := L.CheckString(1)
		e.logger.Info("script log", "msg", msg)
		return 0
	}))

	L.SetGlobal("zwave", mod)
}

const maxHandlersPerScript = 100

// result pushes true, or nil and the error message.
func result(L *lua.LState, err error) int {
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// zwave.on(type, [filter], callback)
func zwaveOn(L *lua.LState, vm *scriptVM) int {
	h := luaEventHandler{eventType: L.CheckString(1)}

	switch arg := L.Get(2).(type) {
	case *lua.LFunction:
		h.fn = arg
	case *lua.LTable:
		h.fn = L.CheckFunction(3)
		arg.ForEach(func(k, v lua.LValue) {
			if h.filter == nil {
				h.filter = make(map[string]string)
			}
			h.filter[k.String()] = v.String()
		})
	default:
		L.ArgError(2, "filter table or callback expected")
		return 0
	}

	vm.mu.Lock()
	if len(vm.handlers) >= maxHandlersPerScript {
		vm.mu.Unlock()
		L.RaiseError("too many handlers (max %d)", maxHandlersPerScript)
		return 0
	}
	vm.handlers = append(vm.handlers, h)
	vm.mu.Unlock()

	return 0
}

// checkValueKey reads a value key from a "n-c-i-x" string or a table with
// node_id, class_id, instance and index.
func checkValueKey(L *lua.LState, n int) (ozw.ValueKey, bool) {
	var (
		k   ozw.ValueKey
		err error
	)
	switch arg := L.Get(n).(type) {
	case lua.LString:
		k, err = value.ParseValueID(string(arg))
	case *lua.LTable:
		fields, _ := luaToGo(arg).(map[string]any)
		k, err = value.KeyFromFields(fields)
	default:
		L.ArgError(n, "value id string or table expected")
		return k, false
	}
	if err != nil {
		L.ArgError(n, err.Error())
		return k, false
	}
	return k, true
}

// zwave.set_value(id, value)
func zwaveSetValue(L *lua.LState, e *Engine) int {
	k, ok := checkValueKey(L, 1)
	if !ok {
		return 0
	}
	input := luaToGo(L.CheckAny(2))
	err := e.coord.SetValue(k, input)
	if err != nil {
		e.logger.Warn("script set value", "value", k.String(), "err", err)
	}
	return result(L, err)
}

// zwave.get_value(id) returns the value and its record table.
func zwaveGetValue(L *lua.LState, e *Engine) int {
	k, ok := checkValueKey(L, 1)
	if !ok {
		return 0
	}
	rec, err := e.coord.GetValue(k)
	if err != nil {
		return result(L, err)
	}
	fields := rec.Fields()
	L.Push(goToLua(L, fields["value"]))
	L.Push(goToLua(L, fields))
	return 2
}

// zwave.nodes() returns a table of all cached nodes.
func zwaveNodes(L *lua.LState, e *Engine) int {
	tbl := L.NewTable()
	for i, n := range e.coord.Nodes() {
		d := L.NewTable()
		d.RawSetString("node_id", lua.LNumber(n.NodeID))
		d.RawSetString("name", lua.LString(n.Info.Name))
		d.RawSetString("location", lua.LString(n.Info.Location))
		d.RawSetString("manufacturer", lua.LString(n.Info.Manufacturer))
		d.RawSetString("product", lua.LString(n.Info.Product))
		d.RawSetString("type", lua.LString(n.Info.Type))
		d.RawSetString("polled", lua.LBool(n.Polled))

		values := L.NewTable()
		for j, r := range n.Values {
			if r != nil {
				values.RawSetInt(j+1, goToLua(L, r.Fields()))
			}
		}
		d.RawSetString("values", values)
		tbl.RawSetInt(i+1, d)
	}
	L.Push(tbl)
	return 1
}

// zwave.scenes() returns a table of {sceneid, label}.
func zwaveScenes(L *lua.LState, e *Engine) int {
	tbl := L.NewTable()
	for i, s := range e.coord.GetScenes() {
		d := L.NewTable()
		d.RawSetString("sceneid", lua.LNumber(s.SceneID))
		d.RawSetString("label", lua.LString(s.Label))
		tbl.RawSetInt(i+1, d)
	}
	L.Push(tbl)
	return 1
}

// zwave.controller_command(name, [{node_id=, arg=, high_power=}])
func zwaveControllerCommand(L *lua.LState, e *Engine) int {
	name := L.CheckString(1)
	var (
		nodeID, arg uint8
		highPower   bool
	)
	if opts, ok := L.Get(2).(*lua.LTable); ok {
		if v, ok := opts.RawGetString("node_id").(lua.LNumber); ok {
			nodeID = uint8(v)
		}
		if v, ok := opts.RawGetString("arg").(lua.LNumber); ok {
			arg = uint8(v)
		}
		highPower = lua.LVAsBool(opts.RawGetString("high_power"))
	}
	return result(L, e.coord.BeginControllerCommandByName(name, highPower, nodeID, arg))
}

// zwave.after(seconds, callback) runs callback on the script VM later.
func zwaveAfter(L *lua.LState, vm *scriptVM, e *Engine) int {
	seconds := L.CheckNumber(1)
	fn := L.CheckFunction(2)

	go func() {
		timer := time.NewTimer(time.Duration(float64(seconds) * float64(time.Second)))
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-vm.ctx.Done():
			return
		}

		select {
		case vm.commands <- func(L *lua.LState) {
			if err := L.CallByParam(lua.P{
				Fn:      fn,
				NRet:    0,
				Protect: true,
			}); err != nil {
				e.logger.Error("after callback error", "err", err)
			}
		}:
		default:
			e.logger.Warn("after: command channel full")
		}
	}()

	return 0
}
