package rediscache

import (
	"testing"

	pkglog "github.com/alekus2/portifolioalek/pkg/log"
)

func TestPendingKeyNormalization(t *testing.T) {
	cases := map[string]string{
		"a@x.com":       "pending:a@x.com",
		"  A@X.com  ":   "pending:a@x.com",
		"Ana@Email.COM": "pending:ana@email.com",
	}
	for in, want := range cases {
		if got := pendingKey(in); got != want {
			t.Fatalf("pendingKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDecodePending(t *testing.T) {
	reg := decodePending([]byte(`{"email":"a@x.com","nome":"Ana","data_nascimento":"1990-04-12"}`), pkglog.Nop())
	if reg == nil || reg.Email != "a@x.com" {
		t.Fatalf("decode failed: %+v", reg)
	}
	if reg.Nome == nil || *reg.Nome != "Ana" {
		t.Fatalf("nome not decoded: %+v", reg)
	}
	if reg.DataNascimento == nil || *reg.DataNascimento != "1990-04-12" {
		t.Fatalf("data_nascimento not decoded: %+v", reg)
	}
}

func TestDecodePendingCorruptIsAbsence(t *testing.T) {
	if reg := decodePending([]byte("{broken"), pkglog.Nop()); reg != nil {
		t.Fatalf("corrupt payload decoded: %+v", reg)
	}
}
