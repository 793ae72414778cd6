// Package models holds the GORM persistence models, the anti-corruption
// layer between the domain and the database.
package models

// All lists every model owned by the service, in creation order.
func All() []any {
	return []any{
		&AccountModel{},
		&SocialLinkModel{},
		&VerificationTokenModel{},
		&BlacklistedTokenModel{},
	}
}
