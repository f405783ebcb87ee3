package validation

// RegisterRules validates account sign-up payloads.
func RegisterRules() []Rule {
	return []Rule{
		Email("email"),
		Password("password"),
		Name("name"),
		Phone("phone"),
	}
}

// LoginRules only requires a password; strength is checked at registration.
func LoginRules() []Rule {
	required := Required("password")
	required.Sensitive = true
	return []Rule{
		Email("email"),
		required,
	}
}

func PasswordResetRules() []Rule {
	return []Rule{
		Email("email"),
	}
}
