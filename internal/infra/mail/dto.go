package mail

type CallSummaryData struct {
	LeadName string
	LeadID   string
	Phone    string
	Email    string
	CallSID  string
	Notes    string
	Duration int
	EndedAt  string
}

type EmailSender struct {
	From   string
	To     string
	dialer dialer
}
