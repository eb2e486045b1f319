package repository

import "github.com/atinyakov/GophTasks/internal/models"

// CredentialTable is the static email to account mapping used for logins.
// It is never mutated after construction and is safe for concurrent reads.
type CredentialTable struct {
	records map[string]models.CredentialRecord
	tokens  map[string]struct{}
}

// NewCredentialTable copies records into a new table.
func NewCredentialTable(records map[string]models.CredentialRecord) *CredentialTable {
	t := &CredentialTable{
		records: make(map[string]models.CredentialRecord, len(records)),
		tokens:  make(map[string]struct{}, len(records)),
	}
	for email, rec := range records {
		t.records[email] = rec
		if rec.Token != "" {
			t.tokens[rec.Token] = struct{}{}
		}
	}
	return t
}

// Lookup returns the record registered for email. Matching is exact.
func (t *CredentialTable) Lookup(email string) (models.CredentialRecord, bool) {
	rec, ok := t.records[email]
	return rec, ok
}

// HasToken reports whether token was issued to any account in the table.
func (t *CredentialTable) HasToken(token string) bool {
	_, ok := t.tokens[token]
	return ok
}

// Len returns the number of accounts.
func (t *CredentialTable) Len() int {
	return len(t.records)
}
