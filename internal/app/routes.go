package app

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes registers all endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Calendar page
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/calendar", http.StatusFound)
	}).Methods("GET")
	r.HandleFunc("/calendar", deps.CalendarHandler.Page).Methods("GET", "POST")

	// Calendar API
	r.HandleFunc("/api/calendar/dates", deps.CalendarHandler.GetDates).Methods("GET")
	r.HandleFunc("/api/calendar/dates.ics", deps.CalendarHandler.GetCalendarFile).Methods("GET")
	r.HandleFunc("/api/niches", deps.CalendarHandler.ListNiches).Methods("GET")
	r.HandleFunc("/api/notifications", deps.CalendarHandler.DrainNotifications).Methods("GET")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")
}
