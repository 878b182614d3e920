package server

import (
	"encoding/json"
	"net/http"
)

// HandleMetrics 输出运行指标与当前在线情况
// GET /metrics
func (s *Server) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	payload := s.metrics.Snapshot()
	online, free := s.world.Stats()
	payload["players_online"] = online
	payload["colors_free"] = free
	payload["pending_detonations"] = s.sched.Pending()
	writeJSON(w, payload)
}

// HandleAdminConfig 返回生效中的配置（只读，世界参数启动后固定）
// GET /admin/config
func (s *Server) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.cfg)
}

// HandleAdminWorld 以 JSON 返回当前世界快照，便于调试
// GET /admin/world
func (s *Server) HandleAdminWorld(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.world.Snapshot())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log.Warnf("write json: %v", err)
	}
}
