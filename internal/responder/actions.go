package responder

// QuickAction is a shortcut that injects a canonical phrase as if typed.
type QuickAction struct {
	// Token is passed to the session unchanged.
	Token string `json:"token"`
	// Label is what the host shows on the button.
	Label string `json:"label"`
}

// QuickActions is the fixed shortcut vocabulary, in display order.
var QuickActions = []QuickAction{
	{Token: "Available CBT Programs", Label: "📝 Available CBT Programs"},
	{Token: "Requirements", Label: "📦 Requirements"},
	{Token: "Register", Label: "📝 Register"},
}

// IsQuickAction reports whether token belongs to the shortcut vocabulary.
func IsQuickAction(token string) bool {
	for _, a := range QuickActions {
		if a.Token == token {
			return true
		}
	}
	return false
}
