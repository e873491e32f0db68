package oauth

import "testing"

func TestStateSignVerify(t *testing.T) {
	s := NewStateSigner("secret")
	signed := s.Sign("nonce-1")
	if !s.Verify(signed) {
		t.Fatal("signed state must verify")
	}
}

func TestStateRejectsTampering(t *testing.T) {
	s := NewStateSigner("secret")
	signed := s.Sign("nonce-1")

	if s.Verify("nonce-2" + signed[len("nonce-1"):]) {
		t.Fatal("altered payload must not verify")
	}
	if s.Verify(signed[:len(signed)-2]) {
		t.Fatal("truncated signature must not verify")
	}
	if s.Verify("no-separator") {
		t.Fatal("state without a signature must not verify")
	}
	if NewStateSigner("other").Verify(signed) {
		t.Fatal("state signed with another key must not verify")
	}
}
