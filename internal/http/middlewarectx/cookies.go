package middlewarectx

import (
	"net/http"
	"time"

	"github.com/magabrotheeeer/planner/internal/models"
)

const (
	// AccessCookie имя cookie с access-токеном.
	AccessCookie = "planner-access-token"
	// RefreshCookie имя cookie с refresh-токеном.
	RefreshCookie = "planner-refresh-token"
)

// CookieConfig параметры cookie сессии.
type CookieConfig struct {
	Secure     bool
	RefreshTTL time.Duration
}

// SetSessionCookies записывает оба токена сессии в cookie ответа.
func SetSessionCookies(w http.ResponseWriter, s *models.Session, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    s.AccessToken,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    s.RefreshToken,
		Path:     "/",
		MaxAge:   int(cfg.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookies удаляет cookie сессии.
func ClearSessionCookies(w http.ResponseWriter, cfg CookieConfig) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
