package server

import (
	"context"
	"net/http"
	"time"

	"github.com/MrEthical07/goHash/internal/server/handler"
)

type healthResponse struct {
	Status      string `json:"status"`
	AdmittedKiB int64  `json:"admitted_kib"`
	Redis       string `json:"redis,omitempty"`
}

func (s *Server) health(r *http.Request) (*handler.Response, error) {
	resp := healthResponse{
		Status:      "ok",
		AdmittedKiB: s.engine.AdmittedMemory(),
	}
	status := http.StatusOK

	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()
		if err := s.redis.Ping(ctx).Err(); err != nil {
			resp.Status = "degraded"
			resp.Redis = "down"
			status = http.StatusServiceUnavailable
		} else {
			resp.Redis = "up"
		}
	}

	return &handler.Response{Status: status, Body: resp}, nil
}
