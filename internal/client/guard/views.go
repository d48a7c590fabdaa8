package guard

// View names a screen of the client.
type View string

const (
	ViewHome               View = "home"
	ViewRegister           View = "register"
	ViewLogin              View = "login"
	ViewRecipientLogin     View = "recipient-login"
	ViewRecipientRegister  View = "recipient-register"
	ViewBloodBankLogin     View = "bloodbank-login"
	ViewBloodBankRegister  View = "bloodbank-register"
	ViewUnauthorized       View = "unauthorized"
	ViewNotFound           View = "not-found"
	ViewDonorDashboard     View = "donor-dashboard"
	ViewRecipientDashboard View = "recipient-dashboard"
	ViewBloodBankDashboard View = "bloodbank-dashboard"
	ViewDonorProfile       View = "donor-profile"
	ViewRecipientProfile   View = "recipient-profile"
	ViewBloodBankProfile   View = "bloodbank-profile"
	ViewRequestBlood       View = "request-blood"
	ViewBloodBankResults   View = "blood-bank-results"
)

// Title is the heading printed above a view.
func (v View) Title() string {
	switch v {
	case ViewHome:
		return "Home"
	case ViewRegister:
		return "Donor Registration"
	case ViewLogin:
		return "Login"
	case ViewRecipientLogin:
		return "Recipient Login"
	case ViewRecipientRegister:
		return "Recipient Registration"
	case ViewBloodBankLogin:
		return "Blood Bank Login"
	case ViewBloodBankRegister:
		return "Blood Bank Registration"
	case ViewUnauthorized:
		return "Unauthorized"
	case ViewNotFound:
		return "Page Not Found"
	case ViewDonorDashboard:
		return "Donor Dashboard"
	case ViewRecipientDashboard:
		return "Recipient Dashboard"
	case ViewBloodBankDashboard:
		return "Blood Bank Dashboard"
	case ViewDonorProfile:
		return "Donor Profile"
	case ViewRecipientProfile:
		return "Recipient Profile"
	case ViewBloodBankProfile:
		return "Blood Bank Profile"
	case ViewRequestBlood:
		return "Request Blood"
	case ViewBloodBankResults:
		return "Blood Bank Results"
	}
	return string(v)
}
