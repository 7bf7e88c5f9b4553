package module

import (
	"encoding/base64"
	"testing"
)

func jwt(payload string) string {
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{"alg":"none"}`)) + "." + enc([]byte(payload)) + ".sig"
}

func TestSubject(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"jwt with sub", jwt(`{"sub":"user-42","name":"Dana"}`), "user-42", false},
		{"jwt without sub", jwt(`{"name":"Dana"}`), "", false},
		{"opaque token", "abc123", "", false},
		{"bad base64", "a.!!!.c", "", true},
		{"bad json", jwt(`not json`), "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := subject(tc.token)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("subject = %q, want %q", got, tc.want)
			}
		})
	}
}
