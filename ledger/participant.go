package ledger

// ParticipantKey identifies a counterparty across expenses and settlements.
//
// Today the key is the display name, compared exactly (case and whitespace included).
// Contacts are not resolved. Every comparison of participant identity goes through
// this type, so moving to stable identifiers only changes KeyFor.
type ParticipantKey string

// KeyFor returns the key for a participant display name.
func KeyFor(name string) ParticipantKey {
	return ParticipantKey(name)
}

// Name returns the display name the key was built from.
func (k ParticipantKey) Name() string {
	return string(k)
}

// Matches reports whether a display name belongs to this key.
func (k ParticipantKey) Matches(name string) bool {
	return KeyFor(name) == k
}
