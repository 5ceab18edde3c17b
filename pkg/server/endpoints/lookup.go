package endpoints

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/doodlesbykumbi/inscricao/pkg/server"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

// RegisterSchoolLookupEndpoint registers POST /pegar-escola, which feeds the
// school select of the forms
func RegisterSchoolLookupEndpoint(s *server.Server) {
	s.Router.HandleFunc("/pegar-escola", handleSchoolLookup(s.ReferenceStore)).Methods("POST")
}

func handleSchoolLookup(ref store.ReferenceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.PostFormValue("city"))
		if raw == "" {
			// No city picked yet: empty body, not an empty list
			w.WriteHeader(http.StatusOK)
			return
		}

		cityID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "city must be an integer")
			return
		}

		schools, err := ref.ListSchoolsByCity(r.Context(), cityID)
		if err != nil {
			log.Printf("listing schools of city %d: %v", cityID, err)
			respondWithError(w, http.StatusInternalServerError, "failed to list schools")
			return
		}

		response := make([]schoolOption, 0, len(schools))
		for _, s := range schools {
			response = append(response, schoolOption{ID: s.ID, Name: s.Name})
		}
		respondWithJSON(w, http.StatusOK, response)
	}
}
