package github

import (
	"fmt"

	"github.com/xErr0Ropx876/UniResources/social"
)

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func mapProfile(user *githubUser, email string, emailVerified bool) *social.SocialProfile {
	if user == nil {
		return nil
	}

	return &social.SocialProfile{
		ProviderUserID: fmt.Sprintf("%d", user.ID),
		Provider:       "github",
		Email:          email,
		EmailVerified:  emailVerified,
		Name:           user.Name,
		Username:       user.Login,
		AvatarURL:      user.AvatarURL,
		Raw: map[string]any{
			"id":         user.ID,
			"login":      user.Login,
			"name":       user.Name,
			"email":      email,
			"avatar_url": user.AvatarURL,
		},
	}
}
