package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

func logStart(r *http.Request, model string, batch int) {
	if zlog == nil {
		log.Printf("embed start path=%s model=%s batch=%d", r.URL.Path, model, batch)
		return
	}
	z := zlog.Info().Str("path", r.URL.Path).Str("model", model).Int("batch", batch)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("embed start")
}

func logEnd(r *http.Request, model string, status int, dur time.Duration) {
	if zlog == nil {
		log.Printf("embed end path=%s model=%s status=%d dur=%s", r.URL.Path, model, status, dur)
		return
	}
	z := zlog.Info().Str("path", r.URL.Path).Str("model", model).Int("status", status).Dur("dur", dur)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("embed end")
}
