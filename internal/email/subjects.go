package email

const (
	subjectTenantWelcomeFmt = "Welcome to %s on Admin Console"
	subjectAdminInvite      = "Your Admin Console account"
	subjectPasswordReset    = "Reset your password"
)
