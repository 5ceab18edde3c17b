package audit

import (
	"context"

	"github.com/doodlesbykumbi/inscricao/pkg/identity"
	"github.com/doodlesbykumbi/inscricao/pkg/registration"
	"github.com/doodlesbykumbi/inscricao/pkg/server/middleware"
)

var _ registration.Observer = (*Auditor)(nil)

// Observe turns a registration event into an audit line.
func (a *Auditor) Observe(ctx context.Context, ev registration.Event) {
	event := RegistrationEvent{
		Username:  ev.Username,
		RequestID: middleware.RequestID(ctx),
		Operation: ev.Op,
		SchoolID:  ev.SchoolID,
		Success:   !ev.Failed(),
	}
	if id, ok := identity.Get(ctx); ok && id.RemoteIP != nil {
		event.ClientIP = id.RemoteIP.String()
	}
	if ev.Failed() {
		event.ErrorKind = registration.KindOf(ev.Err).String()
		if registration.KindOf(ev.Err) == registration.KindPersistence {
			event.ErrorMessage = ev.Err.Error()
		}
	} else {
		event.Outcome = ev.Outcome.String()
	}
	a.Log(ctx, event)
}
