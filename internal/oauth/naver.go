package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/taskhive/auth-service/internal/domain"
)

var naverEndpoint = oauth2.Endpoint{
	AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
	TokenURL: "https://nid.naver.com/oauth2.0/token",
}

const naverUserInfoURL = "https://openapi.naver.com/v1/nid/me"

type Naver struct {
	cfg *oauth2.Config
}

func NewNaver(clientID, clientSecret, redirectURI string) *Naver {
	return &Naver{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Endpoint:     naverEndpoint,
		},
	}
}

func (n *Naver) Name() string { return domain.ProviderNaver }

func (n *Naver) AuthURL(state string) string {
	return n.cfg.AuthCodeURL(state)
}

// Exchange fetches /v1/nid/me; naver nests the user record under "response".
func (n *Naver) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	tok, err := n.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	resp, err := n.cfg.Client(ctx, tok).Get(naverUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("naver userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("naver userinfo: status %d", resp.StatusCode)
	}

	var body struct {
		Response struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			Email        string `json:"email"`
			ProfileImage string `json:"profile_image"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode naver userinfo: %w", err)
	}
	if body.Response.ID == "" {
		return nil, errors.New("naver userinfo missing id")
	}

	return &UserInfo{
		Provider:   domain.ProviderNaver,
		ExternalID: body.Response.ID,
		Email:      body.Response.Email,
		Name:       body.Response.Name,
		Picture:    body.Response.ProfileImage,
	}, nil
}
