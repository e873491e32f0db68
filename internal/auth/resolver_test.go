package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveUnsupportedProvider(t *testing.T) {
	svc, store, _ := newTestService(t)

	_, _, err := svc.Resolve(context.Background(), Identity{
		Provider: "myspace", ExternalID: "42",
	})
	require.ErrorIs(t, err, ErrUnsupportedProvider)
	require.Equal(t, 0, store.AccountCount())
}

func TestResolveNewAccount(t *testing.T) {
	svc, store, _ := newTestService(t)

	account, isNew, err := svc.Resolve(context.Background(), Identity{
		Provider:   "google",
		ExternalID: "sub-123",
		Email:      "fresh@x.com",
		Name:       "Fresh",
		Picture:    "https://img.example/p.png",
	})
	require.NoError(t, err)
	require.True(t, isNew)
	require.Equal(t, "Fresh", account.DisplayName)
	require.Len(t, account.ShortCode, 4)
	require.True(t, account.Online)
	require.Equal(t, "https://img.example/p.png", account.ProfileImage)
	require.Equal(t, 1, store.LinkCount())
}

func TestResolveIdempotent(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	id := Identity{Provider: "kakao", ExternalID: "999", Email: "k@x.com", Name: "K"}
	first, isNew, err := svc.Resolve(ctx, id)
	require.NoError(t, err)
	require.True(t, isNew)

	second, isNew, err := svc.Resolve(ctx, id)
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, store.LinkCount(), "no duplicate link on re-login")
	require.Equal(t, 1, store.AccountCount())
}

func TestResolveLinksByEmail(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	code := issueCode(t, svc, mailer, "a@x.com")
	local, err := svc.Register(ctx, "nova", "a@x.com", "validuser01", "Str0ngPass!", code)
	require.NoError(t, err)

	account, isNew, err := svc.Resolve(ctx, Identity{
		Provider: "naver", ExternalID: "naver-7", Email: "a@x.com", Name: "Nova N",
	})
	require.NoError(t, err)
	require.False(t, isNew, "email match must link, not create")
	require.Equal(t, local.ID, account.ID)
	require.Equal(t, 1, store.LinkCount())
	require.Equal(t, 1, store.AccountCount())
}

func TestResolveNoEmailCreatesAccount(t *testing.T) {
	svc, store, mailer := newTestService(t)
	ctx := context.Background()

	code := issueCode(t, svc, mailer, "a@x.com")
	_, err := svc.Register(ctx, "nova", "a@x.com", "validuser01", "Str0ngPass!", code)
	require.NoError(t, err)

	// Provider withheld the email: no merge is possible, a new account is made.
	account, isNew, err := svc.Resolve(ctx, Identity{
		Provider: "kakao", ExternalID: "k-1", Name: "Nova",
	})
	require.NoError(t, err)
	require.True(t, isNew)
	require.Empty(t, account.Email)
	require.Equal(t, 2, store.AccountCount())
}
