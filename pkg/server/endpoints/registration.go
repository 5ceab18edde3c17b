package endpoints

import (
	"context"
	"errors"
	"net/http"

	"github.com/doodlesbykumbi/inscricao/pkg/identity"
	"github.com/doodlesbykumbi/inscricao/pkg/registration"
	"github.com/doodlesbykumbi/inscricao/pkg/server"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

// RegisterRegistrationEndpoints registers the pages that create, change and
// remove a registration
func RegisterRegistrationEndpoints(s *server.Server) {
	svc := s.Service
	ref := s.ReferenceStore
	support := s.Config.SupportEmail

	s.Router.HandleFunc("/", handleHome(svc, support)).Methods("GET")

	s.Router.HandleFunc("/inscricao", handleSubscriptionForm(ref, support)).Methods("GET")
	s.Router.HandleFunc("/inscricao", handleSubscribe(svc, support)).Methods("POST")

	s.Router.HandleFunc("/atualizar-cadastro", handleUpdateForm(svc, ref, support)).Methods("GET")
	s.Router.HandleFunc("/atualizar-cadastro", handleUpdate(svc, support)).Methods("POST")

	s.Router.HandleFunc("/deletar_cadastro", handleDelete(svc, support)).Methods("POST")
}

func handleHome(svc *registration.Service, support string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := identity.Username(r.Context())

		reg, err := svc.Lookup(r.Context(), username)
		if err != nil {
			respondWithRegistrationError(w, r, err, support, "/")
			return
		}

		render(w, "home.html", pageData{
			Title:      "Inscrição",
			Path:       r.URL.Path,
			Username:   username,
			Registered: reg != nil,
		})
	}
}

func handleSubscriptionForm(ref store.ReferenceStore, support string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := identity.Username(r.Context())
		if username == "" {
			redirectToLogin(w, r, "/inscricao")
			return
		}

		cities, err := cityOptions(r.Context(), ref, 0)
		if err != nil {
			respondWithRegistrationError(w, r, err, support, "/inscricao")
			return
		}

		render(w, "subscription.html", pageData{
			Title:    "Inscrição",
			Path:     r.URL.Path,
			Username: username,
			Terms:    consentTerms,
			Cities:   cities,
		})
	}
}

func handleSubscribe(svc *registration.Service, support string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := svc.Register(r.Context(), identity.Username(r.Context()), formSchoolID(r))
		if err != nil {
			respondWithRegistrationError(w, r, err, support, "/inscricao")
			return
		}
		// Registered and AlreadyRegistered both land on the home page
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func handleUpdateForm(svc *registration.Service, ref store.ReferenceStore, support string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := identity.Username(r.Context())
		if username == "" {
			redirectToLogin(w, r, "/atualizar-cadastro")
			return
		}

		profile, err := svc.Profile(r.Context(), username)
		if err != nil {
			if errors.Is(err, registration.ErrNotRegistered) {
				http.Redirect(w, r, "/inscricao", http.StatusFound)
				return
			}
			respondWithRegistrationError(w, r, err, support, "/atualizar-cadastro")
			return
		}

		var cityID int64
		if profile.City != nil {
			cityID = profile.City.ID
		}
		cities, err := cityOptions(r.Context(), ref, cityID)
		if err != nil {
			respondWithRegistrationError(w, r, err, support, "/atualizar-cadastro")
			return
		}

		render(w, "update_user.html", pageData{
			Title:          "Atualizar inscrição",
			Path:           r.URL.Path,
			Username:       username,
			Registered:     true,
			Cities:         cities,
			Profile:        profile,
			SelectedSchool: profile.Registration.SchoolID,
		})
	}
}

func handleUpdate(svc *registration.Service, support string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := svc.UpdateSchool(r.Context(), identity.Username(r.Context()), formSchoolID(r))
		if err != nil {
			if errors.Is(err, registration.ErrNotRegistered) {
				http.Redirect(w, r, "/", http.StatusFound)
				return
			}
			respondWithRegistrationError(w, r, err, support, "/atualizar-cadastro")
			return
		}
		http.Redirect(w, r, "/atualizar-cadastro", http.StatusFound)
	}
}

func handleDelete(svc *registration.Service, support string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		confirm := r.PostFormValue("delete") != ""

		outcome, err := svc.Unregister(r.Context(), identity.Username(r.Context()), confirm)
		if err != nil {
			respondWithRegistrationError(w, r, err, support, "/atualizar-cadastro")
			return
		}
		if outcome == registration.OutcomeNotConfirmed {
			http.Redirect(w, r, "/atualizar-cadastro", http.StatusFound)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// cityOptions lists every city, marking selected.
func cityOptions(ctx context.Context, ref store.ReferenceStore, selected int64) ([]cityOption, error) {
	cities, err := ref.ListCities(ctx)
	if err != nil {
		return nil, &registration.Error{Kind: registration.KindPersistence, Op: "list_cities", Err: err}
	}
	options := make([]cityOption, 0, len(cities))
	for _, c := range cities {
		options = append(options, cityOption{ID: c.ID, Name: c.Name, Selected: c.ID == selected})
	}
	return options, nil
}
