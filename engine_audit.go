package goTOTP

const (
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventLoginCodeRequested = "login_code_requested"
	auditEventEnrollStarted      = "enrollment_started"
	auditEventEnrollConfirmed    = "enrollment_confirmed"
	auditEventEnrollFailure      = "enrollment_failure"
	auditEventLogout             = "logout"
)
