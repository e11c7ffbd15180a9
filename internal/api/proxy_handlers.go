package api

import (
	"net/http"
)

func placesHandler(proxy PlacesProxy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		if query == "" {
			writeError(w, http.StatusBadRequest, "missing_query", "query parameter is required")
			return
		}

		body, err := proxy.Autocomplete(r.Context(), query)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Server error"})
			return
		}

		writeRawJSON(w, http.StatusOK, body)
	}
}

func distanceHandler(proxy PlacesProxy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		if query == "" {
			writeError(w, http.StatusBadRequest, "missing_query", "query parameter is required")
			return
		}

		body, err := proxy.Distance(r.Context(), query)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Most likely cause being distance not yet set"})
			return
		}

		writeRawJSON(w, http.StatusOK, body)
	}
}
