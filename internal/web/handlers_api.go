package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"zwave-go-home/internal/coordinator"
	"zwave-go-home/internal/ozw"
	"zwave-go-home/internal/store"
)

type networkInfo struct {
	Connected      bool                `json:"connected"`
	DriverPath     string              `json:"driver_path,omitempty"`
	HomeID         string              `json:"home_id,omitempty"`
	LibraryVersion string              `json:"library_version"`
	NodeCount      int                 `json:"node_count"`
	QueueDepth     int                 `json:"queue_depth"`
	PollInterval   string              `json:"poll_interval"`
	Controller     *ozw.ControllerInfo `json:"controller,omitempty"`
}

func (s *Server) handleAPINetworkInfo(w http.ResponseWriter, r *http.Request) {
	info := networkInfo{
		DriverPath:     s.coord.DriverPath(),
		LibraryVersion: s.coord.LibraryVersion(),
		NodeCount:      s.coord.Registry().NodeCount(),
		QueueDepth:     s.coord.QueueLen(),
		PollInterval:   s.coord.PollInterval().String(),
	}
	info.Connected = info.DriverPath != ""
	if home := s.coord.HomeID(); home != 0 {
		info.HomeID = formatHomeID(home)
	}
	if ci, err := s.coord.ControllerInfo(); err == nil {
		info.Controller = &ci
	}
	s.writeJSON(w, http.StatusOK, info)
}

func formatHomeID(h uint32) string {
	return fmt.Sprintf("0x%08x", h)
}

func (s *Server) handleAPIDriverStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.coord.DriverStatistics()
	if err != nil {
		s.fail(w, "driver statistics", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

type connectRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleAPIConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := s.coord.Connect(ctx, req.Path); err != nil {
		s.fail(w, "connect", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": req.Path})
}

func (s *Server) handleAPIDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.Disconnect(); err != nil {
		s.fail(w, "disconnect", err)
		return
	}
	s.writeOK(w)
}

type resetRequest struct {
	Hard bool `json:"hard"`
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	var err error
	if req.Hard {
		err = s.coord.HardReset()
	} else {
		err = s.coord.SoftReset()
	}
	if err != nil {
		s.fail(w, "reset controller", err)
		return
	}
	s.writeOK(w)
}

type healRequest struct {
	NodeID       *uint8 `json:"node_id,omitempty"`
	ReturnRoutes bool   `json:"return_routes"`
}

func (s *Server) handleAPIHealNetwork(w http.ResponseWriter, r *http.Request) {
	var req healRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	var err error
	if req.NodeID != nil {
		err = s.coord.HealNetworkNode(*req.NodeID, req.ReturnRoutes)
	} else {
		err = s.coord.HealNetwork(req.ReturnRoutes)
	}
	if err != nil {
		s.fail(w, "heal network", err)
		return
	}
	s.writeOK(w)
}

type switchAllRequest struct {
	On bool `json:"on"`
}

func (s *Server) handleAPISwitchAll(w http.ResponseWriter, r *http.Request) {
	var req switchAllRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	var err error
	if req.On {
		err = s.coord.SwitchAllOn()
	} else {
		err = s.coord.SwitchAllOff()
	}
	if err != nil {
		s.fail(w, "switch all", err)
		return
	}
	s.writeOK(w)
}

type pollIntervalRequest struct {
	Interval string `json:"interval"`
	Between  bool   `json:"between"`
}

func (s *Server) handleAPISetPollInterval(w http.ResponseWriter, r *http.Request) {
	var req pollIntervalRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	d, err := time.ParseDuration(req.Interval)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid interval")
		return
	}
	if err := s.coord.SetPollInterval(d, req.Between); err != nil {
		s.fail(w, "set poll interval", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "interval": d.String()})
}

func (s *Server) handleAPIListPorts(w http.ResponseWriter, r *http.Request) {
	ports, err := ozw.ListPorts()
	if err != nil {
		s.fail(w, "list ports", err)
		return
	}
	if ports == nil {
		ports = []string{}
	}
	s.writeJSON(w, http.StatusOK, ports)
}

// Nodes

func (s *Server) handleAPIListNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.coord.Nodes()
	if nodes == nil {
		nodes = []coordinator.NodeSnapshot{}
	}
	s.writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleAPIGetNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	n, err := s.coord.Node(id)
	if err != nil {
		s.fail(w, "get node", err)
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

type updateNodeRequest struct {
	Name         *string `json:"name,omitempty"`
	Location     *string `json:"location,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	Product      *string `json:"product,omitempty"`
}

func (s *Server) handleAPIUpdateNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	var req updateNodeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	updates := []struct {
		v   *string
		set func(uint8, string) error
	}{
		{req.Name, s.coord.SetNodeName},
		{req.Location, s.coord.SetNodeLocation},
		{req.Manufacturer, s.coord.SetNodeManufacturerName},
		{req.Product, s.coord.SetNodeProductName},
	}
	for _, u := range updates {
		if u.v == nil {
			continue
		}
		if err := u.set(id, *u.v); err != nil {
			s.fail(w, "update node", err)
			return
		}
	}
	s.writeOK(w)
}

func (s *Server) handleAPINodeNeighbors(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	neighbors, err := s.coord.NodeNeighbors(id)
	if err != nil {
		s.fail(w, "node neighbors", err)
		return
	}
	s.writeJSON(w, http.StatusOK, byteInts(neighbors))
}

func (s *Server) handleAPINodeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	stats, err := s.coord.NodeStatistics(id)
	if err != nil {
		s.fail(w, "node statistics", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAPINodeMetaData(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	md, err := s.coord.AllNodeMetaData(id)
	if err != nil {
		s.fail(w, "node metadata", err)
		return
	}
	s.writeJSON(w, http.StatusOK, md)
}

func (s *Server) handleAPINodeMetaDataField(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	field := r.PathValue("field")
	text, err := s.coord.NodeMetaData(id, field)
	if err != nil {
		s.fail(w, "node metadata", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"field": field, "value": text})
}

func (s *Server) handleAPINodeChangeLog(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	rev, ok := s.pathByte(w, r, "revision")
	if !ok {
		return
	}
	entry, err := s.coord.NodeChangeLog(id, rev)
	if err != nil {
		s.fail(w, "node change log", err)
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

type refreshNodeRequest struct {
	What string `json:"what"` // "info" (default), "state" or "dynamic"
}

func (s *Server) handleAPIRefreshNode(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	var req refreshNodeRequest
	if r.ContentLength != 0 && !s.decodeBody(w, r, &req) {
		return
	}
	var err error
	switch req.What {
	case "", "info":
		err = s.coord.RefreshNodeInfo(id)
	case "state":
		err = s.coord.RequestNodeState(id)
	case "dynamic":
		err = s.coord.RequestNodeDynamic(id)
	default:
		s.writeError(w, http.StatusBadRequest, "what must be info, state or dynamic")
		return
	}
	if err != nil {
		s.fail(w, "refresh node", err)
		return
	}
	s.writeOK(w)
}

type nodeLevelRequest struct {
	On    *bool  `json:"on,omitempty"`
	Level *uint8 `json:"level,omitempty"`
}

func (s *Server) handleAPINodeLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	var req nodeLevelRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	var err error
	switch {
	case req.Level != nil:
		err = s.coord.SetNodeLevel(id, *req.Level)
	case req.On != nil && *req.On:
		err = s.coord.SetNodeOn(id)
	case req.On != nil:
		err = s.coord.SetNodeOff(id)
	default:
		s.writeError(w, http.StatusBadRequest, "on or level is required")
		return
	}
	if err != nil {
		s.fail(w, "set node level", err)
		return
	}
	s.writeOK(w)
}

type configParamRequest struct {
	Param uint8  `json:"param"`
	Value *int32 `json:"value,omitempty"`
	Size  uint8  `json:"size"`
}

// handleAPISetConfigParam sets a parameter when value is given and
// requests it from the device otherwise.
func (s *Server) handleAPISetConfigParam(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	var req configParamRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	var err error
	if req.Value != nil {
		err = s.coord.SetConfigParam(id, req.Param, *req.Value, req.Size)
	} else {
		err = s.coord.RequestConfigParam(id, req.Param)
	}
	if err != nil {
		s.fail(w, "config param", err)
		return
	}
	s.writeOK(w)
}

type nodePollRequest struct {
	ClassID   uint8 `json:"class_id"`
	Enabled   bool  `json:"enabled"`
	Intensity uint8 `json:"intensity"`
}

func (s *Server) handleAPINodePoll(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	var req nodePollRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	var err error
	if req.Enabled {
		err = s.coord.EnablePoll(id, req.ClassID, req.Intensity)
	} else {
		err = s.coord.DisablePoll(id, req.ClassID)
	}
	if err != nil {
		s.fail(w, "node poll", err)
		return
	}
	s.writeOK(w)
}

// groupView is GroupInfo with members as numbers; []uint8 encodes as base64.
type groupView struct {
	Index   uint8  `json:"index"`
	Label   string `json:"label"`
	Max     uint8  `json:"max"`
	Members []int  `json:"members"`
}

func byteInts(b []uint8) []int {
	out := make([]int, len(b))
	for i, n := range b {
		out[i] = int(n)
	}
	return out
}

func (s *Server) handleAPINodeGroups(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	groups, err := s.coord.Groups(id)
	if err != nil {
		s.fail(w, "node groups", err)
		return
	}
	out := make([]groupView, len(groups))
	for i, g := range groups {
		out[i] = groupView{Index: g.Index, Label: g.Label, Max: g.Max, Members: byteInts(g.Members)}
	}
	s.writeJSON(w, http.StatusOK, out)
}

type associationRequest struct {
	Target uint8 `json:"target"`
}

func (s *Server) handleAPIAddAssociation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	group, ok := s.pathByte(w, r, "group")
	if !ok {
		return
	}
	var req associationRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.coord.AddAssociation(id, group, req.Target); err != nil {
		s.fail(w, "add association", err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleAPIRemoveAssociation(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "node")
	if !ok {
		return
	}
	group, ok := s.pathByte(w, r, "group")
	if !ok {
		return
	}
	target, ok := s.pathByte(w, r, "target")
	if !ok {
		return
	}
	if err := s.coord.RemoveAssociation(id, group, target); err != nil {
		s.fail(w, "remove association", err)
		return
	}
	s.writeOK(w)
}

// Values

func (s *Server) handleAPIGetValue(w http.ResponseWriter, r *http.Request) {
	k, ok := s.pathValueKey(w, r)
	if !ok {
		return
	}
	rec, err := s.coord.GetValue(k)
	if err != nil {
		s.fail(w, "get value", err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

type setValueRequest struct {
	Value any `json:"value"`
}

func (s *Server) handleAPISetValue(w http.ResponseWriter, r *http.Request) {
	k, ok := s.pathValueKey(w, r)
	if !ok {
		return
	}
	var req setValueRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Value == nil {
		s.writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	if err := s.coord.SetValue(k, req.Value); err != nil {
		s.fail(w, "set value", err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleAPIRefreshValue(w http.ResponseWriter, r *http.Request) {
	k, ok := s.pathValueKey(w, r)
	if !ok {
		return
	}
	if err := s.coord.RefreshValue(k); err != nil {
		s.fail(w, "refresh value", err)
		return
	}
	s.writeOK(w)
}

// Scenes

func (s *Server) handleAPIListScenes(w http.ResponseWriter, r *http.Request) {
	scenes := s.coord.GetScenes()
	if scenes == nil {
		scenes = []coordinator.SceneInfo{}
	}
	s.writeJSON(w, http.StatusOK, scenes)
}

type sceneRequest struct {
	Label string `json:"label"`
}

func (s *Server) handleAPICreateScene(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	id, err := s.coord.CreateScene(req.Label)
	if err != nil {
		s.fail(w, "create scene", err)
		return
	}
	s.writeJSON(w, http.StatusCreated, coordinator.SceneInfo{SceneID: id, Label: req.Label})
}

func (s *Server) handleAPIGetScene(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "scene")
	if !ok {
		return
	}
	values, err := s.coord.SceneGetValues(id)
	if err != nil {
		s.fail(w, "scene values", err)
		return
	}
	label := ""
	for _, sc := range s.coord.GetScenes() {
		if sc.SceneID == id {
			label = sc.Label
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"sceneid": id,
		"label":   label,
		"values":  values,
	})
}

func (s *Server) handleAPIRenameScene(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "scene")
	if !ok {
		return
	}
	var req sceneRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.coord.SetSceneLabel(id, req.Label); err != nil {
		s.fail(w, "rename scene", err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleAPIDeleteScene(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "scene")
	if !ok {
		return
	}
	if err := s.coord.RemoveScene(id); err != nil {
		s.fail(w, "remove scene", err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleAPIActivateScene(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "scene")
	if !ok {
		return
	}
	if err := s.coord.ActivateScene(id); err != nil {
		s.fail(w, "activate scene", err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleAPISetSceneValue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "scene")
	if !ok {
		return
	}
	k, ok := s.pathValueKey(w, r)
	if !ok {
		return
	}
	var req setValueRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Value == nil {
		s.writeError(w, http.StatusBadRequest, "value is required")
		return
	}
	if err := s.coord.AddSceneValue(id, k, req.Value); err != nil {
		s.fail(w, "add scene value", err)
		return
	}
	s.writeOK(w)
}

func (s *Server) handleAPIRemoveSceneValue(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathByte(w, r, "scene")
	if !ok {
		return
	}
	k, ok := s.pathValueKey(w, r)
	if !ok {
		return
	}
	if err := s.coord.RemoveSceneValue(id, k); err != nil {
		s.fail(w, "remove scene value", err)
		return
	}
	s.writeOK(w)
}

// Controller commands

type controllerCommandRequest struct {
	Command   string `json:"command"`
	NodeID    uint8  `json:"node_id"`
	Arg       uint8  `json:"arg"`
	HighPower bool   `json:"high_power"`
}

func (s *Server) handleAPIControllerCommand(w http.ResponseWriter, r *http.Request) {
	var req controllerCommandRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := s.coord.BeginControllerCommandByName(req.Command, req.HighPower, req.NodeID, req.Arg); err != nil {
		s.fail(w, "controller command", err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "started", "command": req.Command})
}

func (s *Server) handleAPICancelCommand(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.CancelControllerCommand(); err != nil {
		s.fail(w, "cancel controller command", err)
		return
	}
	s.writeOK(w)
}

// Persisted snapshots

func (s *Server) handleAPIStoredNodes(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "store not configured")
		return
	}
	nodes, err := s.store.ListNodes()
	if err != nil {
		s.fail(w, "list stored nodes", err)
		return
	}
	if nodes == nil {
		nodes = []*store.Node{}
	}
	s.writeJSON(w, http.StatusOK, nodes)
}

func (s *Server) handleAPIStoredNetwork(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusNotFound, "store not configured")
		return
	}
	state, err := s.store.GetNetworkState()
	if err != nil {
		s.fail(w, "stored network state", err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}
