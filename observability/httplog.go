package observability

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/gitpal-dev/gitpal/idgen"
	"github.com/gitpal-dev/gitpal/kit"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLog returns middleware that records each request in the
// http_request_logs table. Best-effort: insert failures are logged and
// the response is never affected.
func RequestLog(db *sql.DB) func(http.Handler) http.Handler {
	newID := idgen.Prefixed("hrl_", idgen.Default)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			userID := kit.GetUserID(r.Context())
			_, err := db.Exec(`
				INSERT INTO http_request_logs (
					log_id, method, path, status_code, duration_ms,
					user_id, ip_address, user_agent, created_at
				) VALUES (?,?,?,?,?,?,?,?,?)`,
				newID(), r.Method, r.URL.Path, rec.status,
				time.Since(start).Milliseconds(),
				userID, r.RemoteAddr, r.UserAgent(), time.Now().Unix())
			if err != nil {
				slog.Warn("http request log failed", "error", err)
			}
		})
	}
}
