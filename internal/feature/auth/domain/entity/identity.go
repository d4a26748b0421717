package entity

// Subject is the identity encoded in every issued token.
type Subject struct {
	UserID string
	Email  string
}

// SubjectOf returns the token subject for the given user.
func SubjectOf(u *User) Subject {
	return Subject{UserID: u.ID, Email: u.Email}
}

// TokenPair is a freshly issued access/refresh token pair. It is never persisted.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// FederatedIdentity holds the verified claims of a federation provider's identity token.
type FederatedIdentity struct {
	// Subject is the provider's stable, unique identifier for the account.
	Subject string
	Email   string
	Name    string
}
