package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/taskhive/auth-service/internal/domain"
)

var kakaoEndpoint = oauth2.Endpoint{
	AuthURL:  "https://kauth.kakao.com/oauth/authorize",
	TokenURL: "https://kauth.kakao.com/oauth/token",
}

const kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

type Kakao struct {
	cfg *oauth2.Config
}

func NewKakao(clientID, clientSecret, redirectURI string) *Kakao {
	return &Kakao{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"profile_nickname", "profile_image", "account_email"},
			Endpoint:     kakaoEndpoint,
		},
	}
}

func (k *Kakao) Name() string { return domain.ProviderKakao }

func (k *Kakao) AuthURL(state string) string {
	return k.cfg.AuthCodeURL(state)
}

// Exchange trades the code for a token and fetches /v2/user/me. The numeric
// top-level id is the stable external id; nickname, email, and picture live
// under kakao_account.
func (k *Kakao) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	tok, err := k.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	resp, err := k.cfg.Client(ctx, tok).Get(kakaoUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("kakao userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao userinfo: status %d", resp.StatusCode)
	}

	var body struct {
		ID           int64 `json:"id"`
		KakaoAccount struct {
			Email   string `json:"email"`
			Profile struct {
				Nickname        string `json:"nickname"`
				ProfileImageURL string `json:"profile_image_url"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode kakao userinfo: %w", err)
	}
	if body.ID == 0 {
		return nil, errors.New("kakao userinfo missing id")
	}

	return &UserInfo{
		Provider:   domain.ProviderKakao,
		ExternalID: strconv.FormatInt(body.ID, 10),
		Email:      body.KakaoAccount.Email,
		Name:       body.KakaoAccount.Profile.Nickname,
		Picture:    body.KakaoAccount.Profile.ProfileImageURL,
	}, nil
}
