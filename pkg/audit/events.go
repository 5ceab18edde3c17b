package audit

import (
	"fmt"
	"strconv"
)

// LoginEvent records the end of an OAuth handshake with the wiki
type LoginEvent struct {
	Username     string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e LoginEvent) MessageID() string {
	return "login"
}

func (e LoginEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s logged in with the wiki", e.Username)
	}
	msg := "wiki login failed"
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e LoginEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e LoginEvent) Facility() int {
	return FacilityAuthPriv
}

func (e LoginEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"authenticator": "wiki-oauth",
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
	if e.Username != "" {
		sd[SDIDAuth]["user"] = e.Username
	}
	return sd
}

// LogoutEvent records a cleared session
type LogoutEvent struct {
	Username string
	ClientIP string
}

func (e LogoutEvent) MessageID() string {
	return "logout"
}

func (e LogoutEvent) Message() string {
	return fmt.Sprintf("%s logged out", e.Username)
}

func (e LogoutEvent) Severity() Severity {
	return SeverityInfo
}

func (e LogoutEvent) Facility() int {
	return FacilityAuthPriv
}

func (e LogoutEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDAuth:   {"user": e.Username},
		SDIDClient: {"ip": e.ClientIP},
	}
}

// RegistrationEvent records a register, update_school or unregister call
type RegistrationEvent struct {
	Username     string
	ClientIP     string
	RequestID    string
	Operation    string
	SchoolID     int64
	Outcome      string
	ErrorKind    string
	Success      bool
	ErrorMessage string
}

func (e RegistrationEvent) MessageID() string {
	return "registration"
}

func (e RegistrationEvent) Message() string {
	user := e.Username
	if user == "" {
		user = "anonymous"
	}
	if e.Success {
		return fmt.Sprintf("%s %s: %s", user, e.Operation, e.Outcome)
	}
	msg := fmt.Sprintf("%s failed to %s: %s", user, e.Operation, e.ErrorKind)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

// Severity is Error for failed writes so storage problems stand out from
// ordinary rejections.
func (e RegistrationEvent) Severity() Severity {
	switch {
	case e.Success:
		return SeverityNotice
	case e.ErrorKind == "PERSISTENCE_ERROR":
		return SeverityError
	default:
		return SeverityWarning
	}
}

func (e RegistrationEvent) Facility() int {
	return FacilityAuth
}

func (e RegistrationEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDSubject: {
			"user": e.Username,
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    resultOf(e.Success),
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
	}
	if e.SchoolID != 0 {
		sd[SDIDSubject]["school"] = strconv.FormatInt(e.SchoolID, 10)
	}
	if e.Outcome != "" {
		sd[SDIDAction]["outcome"] = e.Outcome
	}
	if e.ErrorKind != "" {
		sd[SDIDAction]["error"] = e.ErrorKind
	}
	if e.RequestID != "" {
		sd[SDIDClient]["request"] = e.RequestID
	}
	return sd
}

func resultOf(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
