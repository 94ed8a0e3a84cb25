package backend

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/campusmaps/studyspot/core/logger"
)

// Health is the liveness report of the service.
type Health struct {
	Status        string    `json:"status"`
	StatusMessage string    `json:"status_message"`
	Timestamp     time.Time `json:"timestamp"`
	IPAddress     string    `json:"ip_address"`
	Echo          string    `json:"echo,omitempty"`
	PathEcho      string    `json:"path_echo,omitempty"`
}

func (b *Backend) handleHealthRoutes(router *mux.Router) {
	welcome := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"message":"Welcome to the StudySpot API"}`))
	}

	health := func(w http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Debugln("called route for", r.URL, r.Method)

		report := Health{
			Status:        "OK",
			StatusMessage: "Healthy",
			Timestamp:     time.Now().UTC(),
			IPAddress:     requestAddress(r),
			Echo:          r.URL.Query().Get("echo"),
			PathEcho:      mux.Vars(r)["path_echo"],
		}
		writeJSON(w, http.StatusOK, report)
	}

	router.HandleFunc("/", welcome).Methods(http.MethodOptions, http.MethodGet)
	router.HandleFunc("/health", health).Methods(http.MethodOptions, http.MethodGet)
	router.HandleFunc("/health/{path_echo}", health).Methods(http.MethodOptions, http.MethodGet)
}

// requestAddress returns the caller's address without the port.
func requestAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
