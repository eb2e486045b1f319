package repository

import (
	"testing"

	"github.com/atinyakov/GophTasks/internal/models"
)

func TestCredentialTable(t *testing.T) {
	src := map[string]models.CredentialRecord{
		"alice@example.com": {Password: "pw", Token: "tok-a", User: models.User{ID: "u1", Name: "Alice"}},
	}
	table := NewCredentialTable(src)
	delete(src, "alice@example.com")

	rec, ok := table.Lookup("alice@example.com")
	if !ok || rec.User.ID != "u1" {
		t.Fatalf("Lookup() = %+v, %v", rec, ok)
	}
	if _, ok := table.Lookup("Alice@example.com"); ok {
		t.Error("lookup must be an exact match")
	}
	if !table.HasToken("tok-a") || table.HasToken("") || table.HasToken("other") {
		t.Error("unexpected HasToken result")
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d; want 1", table.Len())
	}
}
