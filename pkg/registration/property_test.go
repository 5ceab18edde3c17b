package registration

import (
	"context"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store/memory"
)

// The service is checked against a map from name to school. Schools 1..5
// exist in the reference data; 0 and 6 do not.
func TestServiceMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()

		ref := memory.NewReferenceStore()
		var schools []store.School
		for id := int64(1); id <= 5; id++ {
			schools = append(schools, store.School{ID: id, Name: "Escola", City: 1})
		}
		if err := ref.SeedReference(ctx, []store.City{{ID: 1, Name: "Salvador", State: "BA"}}, schools); err != nil {
			t.Fatal(err)
		}

		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		registrations := memory.NewRegistrationStore()
		svc := NewService(ref, registrations, WithClock(func() time.Time {
			now = now.Add(time.Second)
			return now
		}))

		model := map[string]int64{}
		consent := map[string]time.Time{}
		names := rapid.SampledFrom([]string{"alice", "bob", "carol"})
		school := rapid.Int64Range(0, 6)

		t.Repeat(map[string]func(*rapid.T){
			"register": func(t *rapid.T) {
				name, id := names.Draw(t, "name"), school.Draw(t, "school")
				outcome, err := svc.Register(ctx, name, id)
				_, exists := model[name]
				switch {
				case exists:
					if err != nil || outcome != OutcomeAlreadyRegistered {
						t.Fatalf("register existing %s: %v %v", name, outcome, err)
					}
				case id < 1 || id > 5:
					if KindOf(err) != KindInvalidSchool {
						t.Fatalf("register %s at %d: want INVALID_SCHOOL, got %v", name, id, err)
					}
				default:
					if err != nil || outcome != OutcomeRegistered {
						t.Fatalf("register %s: %v %v", name, outcome, err)
					}
					model[name] = id
					r, _ := svc.Lookup(ctx, name)
					consent[name] = r.DateConsent
				}
			},
			"update": func(t *rapid.T) {
				name, id := names.Draw(t, "name"), school.Draw(t, "school")
				_, err := svc.UpdateSchool(ctx, name, id)
				_, exists := model[name]
				switch {
				case !exists:
					if KindOf(err) != KindNotRegistered {
						t.Fatalf("update %s: want NOT_REGISTERED, got %v", name, err)
					}
				case id <= 0:
					if KindOf(err) != KindInvalidSchool {
						t.Fatalf("update %s to %d: want INVALID_SCHOOL, got %v", name, id, err)
					}
				default:
					if err != nil {
						t.Fatalf("update %s: %v", name, err)
					}
					model[name] = id
				}
			},
			"unregister": func(t *rapid.T) {
				name, confirm := names.Draw(t, "name"), rapid.Bool().Draw(t, "confirm")
				outcome, err := svc.Unregister(ctx, name, confirm)
				if err != nil {
					t.Fatalf("unregister %s: %v", name, err)
				}
				_, exists := model[name]
				want := OutcomeUnregistered
				switch {
				case !confirm:
					want = OutcomeNotConfirmed
				case !exists:
					want = OutcomeNothingToDelete
				}
				if outcome != want {
					t.Fatalf("unregister %s: want %s, got %s", name, want, outcome)
				}
				if confirm {
					delete(model, name)
					delete(consent, name)
				}
			},
			"": func(t *rapid.T) {
				if registrations.Len() != len(model) {
					t.Fatalf("store has %d rows, model has %d", registrations.Len(), len(model))
				}
				for name, id := range model {
					r, err := svc.Lookup(ctx, name)
					if err != nil || r == nil {
						t.Fatalf("lookup %s: %v %v", name, r, err)
					}
					if r.SchoolID != id {
						t.Fatalf("%s: school %d, want %d", name, r.SchoolID, id)
					}
					if !r.DateConsent.Equal(consent[name]) {
						t.Fatalf("%s: date_consent changed", name)
					}
				}
			},
		})
	})
}
