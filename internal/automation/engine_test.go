//go:build !no_automation

package automation

import (
	"context"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"zwave-go-home/internal/coordinator"
	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/value"
)

func TestGoToLua(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	tests := []struct {
		name string
		val  interface{}
		want lua.LValueType
	}{
		{"nil", nil, lua.LTNil},
		{"bool", true, lua.LTBool},
		{"string", "hello", lua.LTString},
		{"int", 42, lua.LTNumber},
		{"uint8", uint8(255), lua.LTNumber},
		{"int16", int16(-10), lua.LTNumber},
		{"uint32", uint32(100000), lua.LTNumber},
		{"map", map[string]interface{}{"a": 1}, lua.LTTable},
		{"slice", []interface{}{1, 2, 3}, lua.LTTable},
		{"list items", []string{"Off", "Heat"}, lua.LTTable},
		{"raw", []byte{0x31, 0x32}, lua.LTTable},
		{"unknown", struct{}{}, lua.LTString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := goToLua(L, tt.val).Type(); got != tt.want {
				t.Errorf("goToLua(%v) type = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}

func TestGoToLuaMap(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	tbl, ok := goToLua(L, map[string]interface{}{"key": "value", "num": 10}).(*lua.LTable)
	if !ok {
		t.Fatal("expected LTable")
	}
	if s, ok := tbl.RawGetString("key").(lua.LString); !ok || string(s) != "value" {
		t.Errorf("map[key] = %v, want value", tbl.RawGetString("key"))
	}
	if n, ok := tbl.RawGetString("num").(lua.LNumber); !ok || float64(n) != 10 {
		t.Errorf("map[num] = %v, want 10", tbl.RawGetString("num"))
	}
}

func TestLuaToGo(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(`arr = {49, 50}; obj = {node_id = 4, label = "x"}`); err != nil {
		t.Fatal(err)
	}

	arr, ok := luaToGo(L.GetGlobal("arr")).([]any)
	if !ok || len(arr) != 2 || arr[0] != float64(49) {
		t.Errorf("array = %#v", arr)
	}
	obj, ok := luaToGo(L.GetGlobal("obj")).(map[string]any)
	if !ok || obj["node_id"] != float64(4) || obj["label"] != "x" {
		t.Errorf("object = %#v", obj)
	}
	if luaToGo(lua.LTrue) != true || luaToGo(lua.LString("Heat")) != "Heat" || luaToGo(lua.LNil) != nil {
		t.Error("scalar conversion")
	}
}

func TestMatchesHandler(t *testing.T) {
	valueFields := map[string]any{
		"node_id":  uint8(4),
		"class_id": uint8(49),
		"value":    map[string]any{"value_id": "4-49-1-1", "index": uint8(1), "label": "Temperature"},
	}

	tests := []struct {
		name    string
		handler luaEventHandler
		evType  string
		want    bool
	}{
		{"exact match", luaEventHandler{eventType: "value changed", filter: map[string]string{"node_id": "4", "class_id": "49"}}, "value changed", true},
		{"wrong event type", luaEventHandler{eventType: "value added"}, "value changed", false},
		{"wildcard type", luaEventHandler{eventType: "*"}, "value changed", true},
		{"node mismatch", luaEventHandler{eventType: "value changed", filter: map[string]string{"node_id": "5"}}, "value changed", false},
		{"nested record field", luaEventHandler{eventType: "value changed", filter: map[string]string{"label": "Temperature", "index": "1"}}, "value changed", true},
		{"nested mismatch", luaEventHandler{eventType: "value changed", filter: map[string]string{"value_id": "4-49-1-5"}}, "value changed", false},
		{"missing field", luaEventHandler{eventType: "value changed", filter: map[string]string{"scene_id": "1"}}, "value changed", false},
		{"no filters match any", luaEventHandler{eventType: "value changed"}, "value changed", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesHandler(tt.handler, tt.evType, valueFields); got != tt.want {
				t.Errorf("matchesHandler() = %v, want %v", got, tt.want)
			}
		})
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var (
	switchKey      = ozw.ValueKey{NodeID: 2, CommandClass: ozw.ClassSwitchBinary, Instance: 1, Index: 0}
	temperatureKey = ozw.ValueKey{NodeID: 4, CommandClass: ozw.ClassSensorMultilevel, Instance: 1, Index: 1}
)

// startNetwork runs a coordinator over the demo sim network and waits for
// the last demo node to be cached.
func startNetwork(t *testing.T) (*coordinator.Coordinator, *ozw.Sim) {
	t.Helper()
	logger := testLogger()
	sim := ozw.NewSim(0x3039, logger, ozw.DemoNetwork()...)
	coord := coordinator.New(sim, nil, coordinator.NewEventBus(logger), coordinator.Config{}, coordinator.DriverConfig{Type: "sim"}, logger)
	if err := coord.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		coord.Stop()
		sim.Close()
	})
	if err := coord.Connect(context.Background(), "/dev/ttyACM0"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "demo network", func() bool {
		_, err := coord.GetValue(ozw.ValueKey{NodeID: 5, CommandClass: 0x75, Instance: 1, Index: 0})
		return err == nil
	})
	return coord, sim
}

func TestEngineRunsScriptOnValueChange(t *testing.T) {
	coord, sim := startNetwork(t)
	mgr := newTestManager(t)
	if _, err := mgr.Save(&Script{
		Meta: ScriptMeta{Name: "heat switch", Enabled: true},
		LuaCode: `
zwave.on("value changed", {node_id = 4, class_id = 49, index = 1}, function(event)
  if tonumber(event.value.value) > 25 then
    zwave.set_value("2-37-1-0", true)
  end
end)`,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Save(&Script{Meta: ScriptMeta{Name: "disabled"}, LuaCode: `error("must not run")`}); err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(coord, mgr, testLogger())
	eng.Start()
	t.Cleanup(eng.Stop)

	if err := sim.Report(temperatureKey, "27.25"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "switch on", func() bool {
		rec, err := coord.GetValue(switchKey)
		return err == nil && rec.Value == value.Bool(true)
	})
}

func TestEngineStopScript(t *testing.T) {
	coord, sim := startNetwork(t)
	mgr := newTestManager(t)
	s, err := mgr.Save(&Script{
		Meta:    ScriptMeta{Name: "toggle", Enabled: true},
		LuaCode: `zwave.on("value changed", {node_id = 4}, function() zwave.set_value("2-37-1-0", true) end)`,
	})
	if err != nil {
		t.Fatal(err)
	}

	eng := NewEngine(coord, mgr, testLogger())
	eng.Start()
	t.Cleanup(eng.Stop)
	eng.StopScript(s.ID)

	if err := sim.Report(temperatureKey, "30.00"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "temperature change", func() bool {
		rec, err := coord.GetValue(temperatureKey)
		return err == nil && rec.Value == value.Decimal("30.00")
	})
	time.Sleep(50 * time.Millisecond)
	if rec, _ := coord.GetValue(switchKey); rec.Value == value.Bool(true) {
		t.Error("stopped script still ran")
	}
}

func TestRunLuaCode(t *testing.T) {
	coord, _ := startNetwork(t)
	eng := NewEngine(coord, newTestManager(t), testLogger())

	res := eng.RunLuaCode(`
local v, rec = zwave.get_value("4-49-1-1")
zwave.log("temp " .. v .. " " .. rec.units)
zwave.log("nodes " .. #zwave.nodes())
local ok, err = zwave.set_value({node_id = 2, class_id = 37, instance = 1, index = 0}, "nope")
zwave.log("bad set " .. tostring(ok) .. " " .. tostring(err ~= nil))
local ok2, err2 = zwave.controller_command("NotACommand")
zwave.log("bad command " .. tostring(ok2))
zwave.on("node event", {node_id = 3}, function(event)
  zwave.log("handler node " .. event.node_id)
end)
`)
	if !res.OK {
		t.Fatalf("run failed: %s", res.Error)
	}
	want := []string{"temp 21.50 C", "nodes 5", "bad set nil true", "bad command nil", "handler node 3"}
	if strings.Join(res.Logs, "|") != strings.Join(want, "|") {
		t.Errorf("logs = %q, want %q", res.Logs, want)
	}
}

func TestRunLuaCodeErrors(t *testing.T) {
	coord, _ := startNetwork(t)
	eng := NewEngine(coord, newTestManager(t), testLogger())

	if res := eng.RunLuaCode(`zwave.set_value("not-an-id", 1)`); res.OK || !strings.Contains(res.Error, "invalid value id") {
		t.Errorf("bad id result = %+v", res)
	}
	for _, code := range []string{
		`zwave.set_value({node_id = true, class_id = 37, instance = 1, index = 0}, true)`,
		`zwave.set_value({node_id = 2.5, class_id = 37, instance = 1, index = 0}, true)`,
		`zwave.set_value({node_id = "", class_id = 37, instance = 1, index = 0}, true)`,
		`zwave.get_value({node_id = 2, class_id = 37, instance = 1})`,
	} {
		if res := eng.RunLuaCode(code); res.OK || !strings.Contains(res.Error, "invalid value id") {
			t.Errorf("%s: result = %+v", code, res)
		}
	}
	if res := eng.RunLuaCode(`os.exit(1)`); res.OK {
		t.Error("sandboxed os should be nil")
	}
}
