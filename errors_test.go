package backoffice

import "testing"

func TestNormalizeRegisterError(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantKind    ErrorKind
	}{
		{
			name:        "flat error with type",
			body:        `{"error":"email already registered","type":"email_exists"}`,
			wantMessage: "email already registered",
			wantKind:    KindEmailExists,
		},
		{
			name:        "message field",
			body:        `{"message":"something went wrong"}`,
			wantMessage: "something went wrong",
			wantKind:    KindGeneral,
		},
		{
			name:        "detail field",
			body:        `{"detail":"not allowed"}`,
			wantMessage: "not allowed",
			wantKind:    KindGeneral,
		},
		{
			name:        "field map takes first message",
			body:        `{"password":["Too short","Too weak"]}`,
			wantMessage: "Too short",
			wantKind:    KindPasswordMismatch,
		},
		{
			name:        "field map honors document order",
			body:        `{"email":["Already taken"],"password":["Too short"]}`,
			wantMessage: "Already taken",
			wantKind:    KindEmailExists,
		},
		{
			name:        "field map with unknown field",
			body:        `{"username":["Required"]}`,
			wantMessage: "Required",
			wantKind:    KindGeneral,
		},
		{
			name:        "explicit type wins over field inference",
			body:        `{"type":"email_exists","password":["Too short"]}`,
			wantMessage: "Too short",
			wantKind:    KindEmailExists,
		},
		{
			name:        "unparsable body",
			body:        `<html>gateway timeout</html>`,
			wantMessage: "registration failed",
			wantKind:    KindGeneral,
		},
		{
			name:        "empty object",
			body:        `{}`,
			wantMessage: "registration failed",
			wantKind:    KindGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			message, kind := normalizeRegisterError([]byte(tt.body))
			if message != tt.wantMessage {
				t.Errorf("message = %q, want %q", message, tt.wantMessage)
			}
			if kind != tt.wantKind {
				t.Errorf("kind = %q, want %q", kind, tt.wantKind)
			}
		})
	}
}

func TestFirstFieldError(t *testing.T) {
	field, message, ok := firstFieldError([]byte(`{"a":"string","b":["first","second"]}`))
	if !ok {
		t.Fatal("Should find the first array-valued field")
	}
	if field != "b" || message != "first" {
		t.Errorf("Got %q/%q, want b/first", field, message)
	}

	if _, _, ok := firstFieldError([]byte(`["not","an","object"]`)); ok {
		t.Error("Arrays are not field maps")
	}
	if _, _, ok := firstFieldError([]byte(`{"a":"x"}`)); ok {
		t.Error("Objects without array values are not field maps")
	}
}
