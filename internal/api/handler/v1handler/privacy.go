package v1handler

import (
	"net/http"
)

// Privacy returns the cached privacy verdict. When no verdict is cached the
// response is 202 Accepted with no body: a background probe has been
// scheduled and a later read will find its result. The handler never probes
// inline with the request.
func (h *Handler) Privacy(w http.ResponseWriter, r *http.Request) {
	verdict, err := h.deps.Prober.LastChecked(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	if verdict == nil {
		w.WriteHeader(http.StatusAccepted)

		return
	}

	writeJSON(w, r, http.StatusOK, verdict)
}
