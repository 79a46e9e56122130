package models

// Account is a gateway login. Accounts exist only on the gateway side:
// they map an authenticated API user to the ledger address the gateway
// queries and submits on behalf of. The ledger itself knows nothing
// about them.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	// Email is the login identifier (unique).
	Email string

	// DisplayName is the human-readable name.
	DisplayName string

	// Address is the ledger address this account acts as.
	Address string

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string

	// CreatedAt is the Unix timestamp the account was created.
	CreatedAt int64
}
