package endpoints

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/doodlesbykumbi/inscricao/pkg/registration"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// redirectToLogin sends an anonymous user to /login; next is where the
// login flow returns to.
func redirectToLogin(w http.ResponseWriter, r *http.Request, next string) {
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

// formSchoolID reads the school form field. A missing or malformed value is
// 0, which the registration service rejects as an invalid school.
func formSchoolID(r *http.Request) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("school")), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// respondWithRegistrationError turns a registration error into a response.
// loginNext is the page to come back to when the user is not logged in.
func respondWithRegistrationError(w http.ResponseWriter, r *http.Request, err error, supportEmail, loginNext string) {
	switch registration.KindOf(err) {
	case registration.KindUnauthenticated:
		redirectToLogin(w, r, loginNext)
	case registration.KindInvalidSchool:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`Escola inválida. <a href="` + loginNext + `">Voltar</a>`))
	default:
		log.Printf("registration failed: %v", err)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(registration.Diagnostic(err, supportEmail)))
	}
}
